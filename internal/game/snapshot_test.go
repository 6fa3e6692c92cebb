package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natak-game/natak-server-go/internal/game/rules"
)

func playedGame(t *testing.T) *Game {
	t.Helper()
	g := newTestGame(t, 3)
	completeSetup(t, g)
	playTurns(t, g, 12)
	g.DrainEvents()
	return g
}

func checksum(t *testing.T, g *Game) string {
	t.Helper()
	s, err := g.Snapshot()
	require.NoError(t, err)
	sum, err := s.Checksum()
	require.NoError(t, err)
	return sum
}

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	g := playedGame(t)
	s, err := g.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(s)
	require.NoError(t, err)
	assert.Equal(t, checksum(t, g), checksum(t, restored))
	assert.Equal(t, g.State(), restored.State())
	assert.Equal(t, g.CurrentPlayer(), restored.CurrentPlayer())
	assert.Equal(t, g.Log(), restored.Log())
}

func TestSnapshot_RandomContinues(t *testing.T) {
	g := playedGame(t)
	require.Equal(t, rules.StateBeforeRoll, g.State())

	copied, err := g.Clone()
	require.NoError(t, err)

	c := g.CurrentPlayer()
	require.NoError(t, g.Apply(Command{Action: rules.ActionRollDice, Player: c}))
	require.NoError(t, copied.Apply(Command{Action: rules.ActionRollDice, Player: c}))
	assert.Equal(t, g.Dice(), copied.Dice())
	assert.Equal(t, checksum(t, g), checksum(t, copied))
}

func TestClone_IsIndependent(t *testing.T) {
	g := playedGame(t)
	before := checksum(t, g)

	copied, err := g.Clone()
	require.NoError(t, err)
	require.NoError(t, copied.Apply(Command{Action: rules.ActionRollDice, Player: copied.CurrentPlayer()}))

	assert.Equal(t, before, checksum(t, g))
	assert.Equal(t, rules.StateBeforeRoll, g.State())
	assert.Empty(t, g.DrainEvents())
}

func TestEncodeDecodeSnapshot(t *testing.T) {
	g := playedGame(t)
	s, err := g.Snapshot()
	require.NoError(t, err)

	data, err := EncodeSnapshot(s)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	want, err := s.Checksum()
	require.NoError(t, err)
	got, err := decoded.Checksum()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	restored, err := Restore(decoded)
	require.NoError(t, err)
	assert.Equal(t, checksum(t, g), checksum(t, restored))
}

func TestDecodeSnapshot_DetectsTampering(t *testing.T) {
	g := playedGame(t)
	s, err := g.Snapshot()
	require.NoError(t, err)
	data, err := EncodeSnapshot(s)
	require.NoError(t, err)

	var sealed SealedSnapshot
	require.NoError(t, json.Unmarshal(data, &sealed))
	sealed.Snapshot.Bank["ORE"] += 5
	tampered, err := json.Marshal(sealed)
	require.NoError(t, err)

	_, err = DecodeSnapshot(tampered)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = DecodeSnapshot([]byte("not json"))
	assert.Error(t, err)
}

func TestRestore_RejectsMalformed(t *testing.T) {
	g := playedGame(t)

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = 99 }},
		{"no board", func(s *Snapshot) { s.Board = nil }},
		{"current out of range", func(s *Snapshot) { s.Current = 7 }},
		{"empty stack", func(s *Snapshot) { s.Stack = nil }},
		{"bad random state", func(s *Snapshot) { s.Random = []byte{1, 2} }},
		{"seat order", func(s *Snapshot) { s.Players[0], s.Players[1] = s.Players[1], s.Players[0] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := g.Snapshot()
			require.NoError(t, err)
			tt.mutate(s)
			_, err = Restore(s)
			assert.Error(t, err)
		})
	}

	_, err := Restore(nil)
	assert.Error(t, err)
}

func TestReplay_RebuildsGame(t *testing.T) {
	g := playedGame(t)

	replayed, err := Replay(g.ID(), g.PlayerCount(), g.Seed(), g.RuleSet(), g.Log())
	require.NoError(t, err)
	assert.Equal(t, checksum(t, g), checksum(t, replayed))
}

func TestReplayer_StepByStep(t *testing.T) {
	g := playedGame(t)
	s, err := g.Snapshot()
	require.NoError(t, err)

	r, err := NewReplayerFromSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, len(s.Log), r.Size())
	assert.Equal(t, rules.StateSetupSettlement, r.Game().State())

	require.NoError(t, r.Skip(2))
	assert.Equal(t, 2, r.Position())
	assert.Equal(t, rules.StateSetupSettlement, r.Game().State())
	assert.Equal(t, ColorBlue, r.Game().CurrentPlayer())

	for {
		more, err := r.Next()
		require.NoError(t, err)
		if !more {
			break
		}
	}
	assert.Equal(t, r.Size(), r.Position())
	assert.Equal(t, checksum(t, g), checksum(t, r.Game()))

	require.NoError(t, r.Start())
	assert.Zero(t, r.Position())
}

func TestReplay_DivergentLog(t *testing.T) {
	log := []Command{{Action: rules.ActionRollDice, Player: ColorRed}}
	_, err := Replay("bad", 2, testSeed, DefaultRuleSet(), log)
	assert.ErrorIs(t, err, ErrInvalidAction)
}
