package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game"
)

const fileSuffix = ".json.gz"

// FileStorage writes sealed snapshots as gzip-compressed JSON files, one per
// game, in a single directory.
type FileStorage struct {
	dir    string
	logger *zap.Logger
}

// NewFileStorage creates the directory if needed.
func NewFileStorage(dir string, logger *zap.Logger) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("file storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStorage{dir: dir, logger: logger}, nil
}

func (fs *FileStorage) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: invalid game id %q", game.ErrGameNotFound, id)
	}
	return filepath.Join(fs.dir, id+fileSuffix), nil
}

// Save writes the snapshot atomically: the data goes to a temporary file that
// is renamed over the previous save.
func (fs *FileStorage) Save(ctx context.Context, s *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := fs.path(s.ID)
	if err != nil {
		return err
	}
	data, err := game.EncodeSnapshot(s)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Name = s.ID
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, s.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	fs.logger.Debug("snapshot written",
		zap.String("game_id", s.ID),
		zap.String("path", target),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}

// Load reads and verifies a saved snapshot.
func (fs *FileStorage) Load(ctx context.Context, id string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := fs.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no save for %s", game.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// ReadSnapshot decodes one gzip-compressed sealed snapshot.
func ReadSnapshot(r io.Reader) (*game.Snapshot, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed snapshot: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return game.DecodeSnapshot(data)
}

// List returns the ids of every saved game in sorted order.
func (fs *FileStorage) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", fs.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), fileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Dir returns the storage directory.
func (fs *FileStorage) Dir() string {
	return fs.dir
}
