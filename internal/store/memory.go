package store

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game"
)

// MemoryStore keeps active games in process memory. Stored games are treated
// as immutable: the engine replaces them on every commit, so readers may use a
// game returned by Get without holding its lock.
type MemoryStore struct {
	mu     sync.RWMutex
	games  map[string]*game.Game
	locks  map[string]chan struct{}
	logger *zap.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		games:  make(map[string]*game.Game),
		locks:  make(map[string]chan struct{}),
		logger: logger,
	}
}

// Get returns the active game with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return g, nil
}

// Upsert stores g under its id, replacing any previous version.
func (s *MemoryStore) Upsert(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[g.ID()]; !exists {
		s.logger.Debug("game added to store", zap.String("game_id", g.ID()))
	}
	s.games[g.ID()] = g
	return nil
}

// Delete removes a game. Deleting an unknown id is not an error. The game's
// lock entry is kept, so a holder of the lock and anyone waiting on it still
// exclude each other.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; ok {
		s.logger.Debug("game removed from store", zap.String("game_id", id))
	}
	delete(s.games, id)
	return nil
}

// Lock waits for exclusive access to one game id. Commands for different
// games never wait on each other.
func (s *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}

// IDs returns the ids of all active games in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of active games.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
