package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
)

func newPostgresStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	dsn := os.Getenv("NATAK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NATAK_TEST_POSTGRES_DSN not set")
	}
	ps, err := NewPostgresStorage(context.Background(), config.PostgresConfig{DSN: dsn, MaxConns: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(ps.Close)
	return ps
}

func TestPostgresStorage_SaveLoad(t *testing.T) {
	ps := newPostgresStorage(t)
	ctx := context.Background()

	g := newGame(t, "pg-test-game")
	t.Cleanup(func() {
		_, _ = ps.pool.Exec(context.Background(), `DELETE FROM natak_games WHERE id = $1`, g.ID())
	})

	s := snapshotOf(t, g)
	require.NoError(t, ps.Save(ctx, s))
	require.NoError(t, ps.Save(ctx, s), "saving twice updates in place")

	loaded, err := ps.Load(ctx, g.ID())
	require.NoError(t, err)
	want, _ := s.Checksum()
	got, _ := loaded.Checksum()
	assert.Equal(t, want, got)

	saves, err := ps.List(ctx, 100)
	require.NoError(t, err)
	found := false
	for _, sg := range saves {
		if sg.ID == g.ID() {
			found = true
			assert.Equal(t, 3, sg.Players)
		}
	}
	assert.True(t, found)
}

func TestPostgresStorage_Missing(t *testing.T) {
	ps := newPostgresStorage(t)
	_, err := ps.Load(context.Background(), "pg-missing-game")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}
