package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/natak-game/natak-server-go/internal/game"
)

func newGame(t *testing.T, id string) *game.Game {
	t.Helper()
	g, err := game.NewGame(id, 3, 7, game.DefaultRuleSet())
	require.NoError(t, err)
	return g
}

func TestMemoryStore_GetUpsertDelete(t *testing.T) {
	s := NewMemoryStore(zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := s.Get(ctx, "g1")
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	g := newGame(t, "g1")
	require.NoError(t, s.Upsert(ctx, g))
	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Same(t, g, got)

	replacement := newGame(t, "g1")
	require.NoError(t, s.Upsert(ctx, replacement))
	got, _ = s.Get(ctx, "g1")
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.Upsert(ctx, newGame(t, "g0")))
	assert.Equal(t, []string{"g0", "g1"}, s.IDs())

	require.NoError(t, s.Delete(ctx, "g1"))
	_, err = s.Get(ctx, "g1")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "g1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Upsert(ctx, newGame(t, "g1")), context.Canceled)
}

func TestMemoryStore_LockSerialisesOneGame(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	unlock, err := s.Lock(ctx, "g1")
	require.NoError(t, err)

	// a different game is not blocked
	other, err := s.Lock(ctx, "g2")
	require.NoError(t, err)
	other()

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = s.Lock(timeout, "g1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op

	again, err := s.Lock(ctx, "g1")
	require.NoError(t, err)
	again()
}

func TestMemoryStore_LockIsExclusive(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := s.Lock(ctx, "g1")
			if err != nil {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestMemoryStore_DeleteKeepsLockHeld(t *testing.T) {
	s := NewMemoryStore(zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, newGame(t, "g1")))

	unlock, err := s.Lock(ctx, "g1")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "g1"))

	timeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = s.Lock(timeout, "g1")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "second Lock acquired while the first holder still held it")

	unlock()
	again, err := s.Lock(ctx, "g1")
	require.NoError(t, err)
	again()
}
