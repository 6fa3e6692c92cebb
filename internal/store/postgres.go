package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS natak_games (
	id          TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL,
	players     INTEGER NOT NULL,
	turn        INTEGER NOT NULL,
	state       TEXT NOT NULL,
	data        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStorage keeps sealed snapshots in a PostgreSQL table.
type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStorage connects, verifies the connection and creates the table
// if it does not exist.
func NewPostgresStorage(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ps := &PostgresStorage{pool: pool, logger: logger}
	if err := ps.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	stats := pool.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
		zap.Int32("max_conns", stats.MaxConns()),
	)
	return ps, nil
}

func (ps *PostgresStorage) migrate(ctx context.Context) error {
	if _, err := ps.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create natak_games table: %w", err)
	}
	return nil
}

// Save inserts or replaces the game's snapshot.
func (ps *PostgresStorage) Save(ctx context.Context, s *game.Snapshot) error {
	data, err := game.EncodeSnapshot(s)
	if err != nil {
		return err
	}
	sum, err := s.Checksum()
	if err != nil {
		return err
	}
	state := ""
	if len(s.Stack) > 0 {
		state = s.Stack[len(s.Stack)-1].String()
	}

	start := time.Now()
	_, err = ps.pool.Exec(ctx, `
		INSERT INTO natak_games (id, checksum, players, turn, state, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			checksum = EXCLUDED.checksum,
			players = EXCLUDED.players,
			turn = EXCLUDED.turn,
			state = EXCLUDED.state,
			data = EXCLUDED.data,
			updated_at = now()`,
		s.ID, sum, len(s.Players), s.Turn, state, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", s.ID, err)
	}

	ps.logger.Debug("snapshot saved",
		zap.String("game_id", s.ID),
		zap.String("checksum", sum),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Load reads and verifies a saved snapshot.
func (ps *PostgresStorage) Load(ctx context.Context, id string) (*game.Snapshot, error) {
	var data []byte
	err := ps.pool.QueryRow(ctx, `SELECT data FROM natak_games WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no save for %s", game.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	return game.DecodeSnapshot(data)
}

// SavedGame summarises one stored game.
type SavedGame struct {
	ID        string    `json:"id"`
	Players   int       `json:"players"`
	Turn      int       `json:"turn"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns the most recently updated saves first.
func (ps *PostgresStorage) List(ctx context.Context, limit int) ([]SavedGame, error) {
	rows, err := ps.pool.Query(ctx, `
		SELECT id, players, turn, state, updated_at
		FROM natak_games
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []SavedGame
	for rows.Next() {
		var g SavedGame
		if err := rows.Scan(&g.ID, &g.Players, &g.Turn, &g.State, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Stats returns connection pool statistics.
func (ps *PostgresStorage) Stats() *pgxpool.Stat {
	return ps.pool.Stat()
}

// Close releases the connection pool.
func (ps *PostgresStorage) Close() {
	ps.pool.Close()
}
