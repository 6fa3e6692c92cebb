package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
	"github.com/natak-game/natak-server-go/internal/server"
	"github.com/natak-game/natak-server-go/internal/store"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Natak server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize save storage
	storage, closeStorage, err := store.NewStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to initialize game storage", zap.Error(err))
	}
	defer closeStorage()

	// Initialize engine
	games := store.NewMemoryStore(logger)
	engine := game.NewEngine(games, logger)
	engine.SetRuleSet(cfg.Rules.RuleSet())
	if storage != nil {
		engine.SetStorage(storage)
	}
	logger.Info("game engine initialized",
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("points_to_win", cfg.Rules.PointsToWin),
	)

	tokens := server.NewTokenIssuer(cfg.Auth.SigningKey, cfg.Auth.TokenTTL)
	if tokens == nil {
		logger.Warn("signing key not configured; seat routes are unauthenticated")
	}

	// Start HTTP server
	api := server.NewServer(engine, tokens, cfg.Server.HTTP, logger)
	go api.Run(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTP.Address,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	// Start gRPC health server
	var grpcServer *grpc.Server
	if cfg.Server.GRPC.Address != "" {
		var healthServer *health.Server
		grpcServer, healthServer = server.NewGRPCServer(cfg.Server.GRPC, logger)
		defer healthServer.Shutdown()

		lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			logger.Fatal("failed to listen", zap.Error(err))
		}
		go func() {
			logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
			if serveErr := grpcServer.Serve(lis); serveErr != nil {
				logger.Error("gRPC server error", zap.Error(serveErr))
			}
		}()
	}

	logger.Info("Natak server initialized",
		zap.String("version", version),
		zap.String("http_address", cfg.Server.HTTP.Address),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.Bool("auth", cfg.Auth.Enabled()),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	// Persist active games before storage closes
	if storage != nil {
		for _, id := range games.IDs() {
			if err := engine.CloseGame(shutdownCtx, id); err != nil {
				logger.Warn("game not saved on shutdown", zap.String("game_id", id), zap.Error(err))
			}
		}
	}

	logger.Info("Natak server stopped", zap.Int("games_in_memory", games.Count()))
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
