package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
)

// NewStorage builds the durable storage selected by cfg. The none driver
// returns a nil storage; the returned close function is always safe to call.
func NewStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (game.SnapshotStorage, func(), error) {
	switch cfg.Driver {
	case config.StorageNone, "":
		return nil, func() {}, nil
	case config.StorageFile:
		fs, err := NewFileStorage(cfg.File.Directory, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case config.StoragePostgres:
		ps, err := NewPostgresStorage(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
