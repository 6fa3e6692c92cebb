package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
)

func snapshotOf(t *testing.T, g *game.Game) *game.Snapshot {
	t.Helper()
	s, err := g.Snapshot()
	require.NoError(t, err)
	return s
}

func TestFileStorage_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	g := newGame(t, "game-1")
	s := snapshotOf(t, g)
	require.NoError(t, fs.Save(ctx, s))

	loaded, err := fs.Load(ctx, "game-1")
	require.NoError(t, err)
	want, _ := s.Checksum()
	got, _ := loaded.Checksum()
	assert.Equal(t, want, got)

	require.NoError(t, fs.Save(ctx, snapshotOf(t, newGame(t, "game-0"))))
	ids, err := fs.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"game-0", "game-1"}, ids)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestFileStorage_Missing(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = fs.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	_, err = fs.Load(context.Background(), "../escape")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestFileStorage_Corrupted(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+fileSuffix), []byte("plain text"), 0o600))
	_, err = fs.Load(context.Background(), "bad")
	assert.Error(t, err)
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := NewStorage(ctx, config.StorageConfig{Driver: config.StorageNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, s)
	closeFn()

	s, closeFn, err = NewStorage(ctx, config.StorageConfig{
		Driver: config.StorageFile,
		File:   config.FileConfig{Directory: t.TempDir()},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)
	closeFn()

	_, _, err = NewStorage(ctx, config.StorageConfig{Driver: "s3"}, nil)
	assert.Error(t, err)
}
