package game

import (
	"fmt"
)

// Replayer re-applies a command log to a fresh game one command at a time.
// Because every random draw comes from the game's seeded generator, the
// replayed game matches the original exactly.
type Replayer struct {
	id          string
	playerCount int
	seed        uint64
	ruleSet     RuleSet
	log         []Command
	game        *Game
	position    int
}

// NewReplayer prepares a replay of log for a game created with the given
// parameters.
func NewReplayer(id string, playerCount int, seed uint64, rs RuleSet, log []Command) (*Replayer, error) {
	r := &Replayer{
		id:          id,
		playerCount: playerCount,
		seed:        seed,
		ruleSet:     rs,
		log:         append([]Command(nil), log...),
	}
	if err := r.Start(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewReplayerFromSnapshot prepares a replay of a saved game's history.
func NewReplayerFromSnapshot(s *Snapshot) (*Replayer, error) {
	return NewReplayer(s.ID, len(s.Players), s.Seed, s.RuleSet, s.Log)
}

// Start resets the replay to the freshly created game.
func (r *Replayer) Start() error {
	g, err := NewGame(r.id, r.playerCount, r.seed, r.ruleSet)
	if err != nil {
		return err
	}
	r.game = g
	r.position = 0
	return nil
}

// Next applies the next command. It returns false once the log is exhausted.
func (r *Replayer) Next() (bool, error) {
	if r.position >= len(r.log) {
		return false, nil
	}
	cmd := r.log[r.position]
	if err := r.game.Apply(cmd); err != nil {
		return false, fmt.Errorf("replay diverged at command %d (%s by %s): %w", r.position, cmd.Action, cmd.Player, err)
	}
	r.position++
	return true, nil
}

// Skip applies up to count commands.
func (r *Replayer) Skip(count int) error {
	for i := 0; i < count; i++ {
		more, err := r.Next()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// Size returns the number of commands in the log.
func (r *Replayer) Size() int {
	return len(r.log)
}

// Position returns how many commands have been applied.
func (r *Replayer) Position() int {
	return r.position
}

// Game returns the replayed game at the current position.
func (r *Replayer) Game() *Game {
	return r.game
}

// Replay rebuilds a game from its creation parameters and full command log.
func Replay(id string, playerCount int, seed uint64, rs RuleSet, log []Command) (*Game, error) {
	r, err := NewReplayer(id, playerCount, seed, rs, log)
	if err != nil {
		return nil, err
	}
	if err := r.Skip(r.Size()); err != nil {
		return nil, err
	}
	g := r.Game()
	g.DrainEvents()
	return g, nil
}
