package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/natak-game/natak-server-go/internal/game"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Rules   RulesConfig   `mapstructure:"rules"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	HTTP            HTTPConfig    `mapstructure:"http"`
	GRPC            GRPCConfig    `mapstructure:"grpc"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig configures the JSON API and the event feed.
type HTTPConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// GRPCConfig configures the health service listener. An empty address
// disables it.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Storage drivers.
const (
	StorageNone     = "none"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// StorageConfig selects where saved games go.
type StorageConfig struct {
	Driver   string         `mapstructure:"driver"`
	File     FileConfig     `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// FileConfig configures file storage.
type FileConfig struct {
	Directory string `mapstructure:"directory"`
}

// PostgresConfig configures PostgreSQL storage.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// AuthConfig configures seat tokens. An empty signing key disables them.
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether seat tokens are required.
func (a AuthConfig) Enabled() bool {
	return a.SigningKey != ""
}

// RulesConfig holds the tunable game rules.
type RulesConfig struct {
	PointsToWin          int  `mapstructure:"points_to_win"`
	DiscardLimit         int  `mapstructure:"discard_limit"`
	OneGrowthCardPerTurn bool `mapstructure:"one_growth_card_per_turn"`
}

// RuleSet converts the rules section for the engine.
func (r RulesConfig) RuleSet() game.RuleSet {
	return game.RuleSet{
		PointsToWin:          r.PointsToWin,
		DiscardLimit:         r.DiscardLimit,
		OneGrowthCardPerTurn: r.OneGrowthCardPerTurn,
	}
}

func setDefaults(v *viper.Viper) {
	rules := game.DefaultRuleSet()

	v.SetDefault("server.http.address", ":8080")
	v.SetDefault("server.http.read_timeout", 15*time.Second)
	v.SetDefault("server.http.write_timeout", 15*time.Second)
	v.SetDefault("server.http.allowed_origins", []string{"*"})
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.driver", StorageNone)
	v.SetDefault("storage.file.directory", "data/saves")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.postgres.max_conns", 10)
	v.SetDefault("storage.postgres.min_conns", 1)
	v.SetDefault("storage.postgres.max_conn_lifetime", time.Hour)

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("rules.points_to_win", rules.PointsToWin)
	v.SetDefault("rules.discard_limit", rules.DiscardLimit)
	v.SetDefault("rules.one_growth_card_per_turn", rules.OneGrowthCardPerTurn)
}

// Load reads the YAML file at path, when it exists, and overlays environment
// variables prefixed with NATAK_ (NATAK_SERVER_HTTP_ADDRESS, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NATAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.HTTP.Address == "" {
		return fmt.Errorf("server.http.address is required")
	}
	if c.Server.GRPC.MaxConcurrentStreams < 0 {
		return fmt.Errorf("server.grpc.max_concurrent_streams must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}

	switch c.Storage.Driver {
	case StorageNone:
	case StorageFile:
		if c.Storage.File.Directory == "" {
			return fmt.Errorf("storage.file.directory is required for the file driver")
		}
	case StoragePostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for the postgres driver")
		}
		if c.Storage.Postgres.MaxConns < 1 {
			return fmt.Errorf("storage.postgres.max_conns must be at least 1")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Auth.Enabled() && c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive when auth is enabled")
	}

	if c.Rules.PointsToWin < 3 {
		return fmt.Errorf("rules.points_to_win must be at least 3, got %d", c.Rules.PointsToWin)
	}
	if c.Rules.DiscardLimit < 1 {
		return fmt.Errorf("rules.discard_limit must be at least 1, got %d", c.Rules.DiscardLimit)
	}
	return nil
}
