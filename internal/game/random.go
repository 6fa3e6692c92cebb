package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Random is the per-game generator behind dice, steals and shuffles. Its
// state is part of every snapshot so a restored game continues the same
// sequence.
type Random struct {
	src *rand.PCGSource
	rng *rand.Rand
}

// NewRandom creates a generator seeded with seed.
func NewRandom(seed uint64) *Random {
	src := &rand.PCGSource{}
	src.Seed(seed)
	return &Random{src: src, rng: rand.New(src)}
}

// RestoreRandom rebuilds a generator from State output.
func RestoreRandom(state []byte) (*Random, error) {
	src := &rand.PCGSource{}
	if err := src.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("failed to restore random state: %w", err)
	}
	return &Random{src: src, rng: rand.New(src)}, nil
}

// State returns the generator's current state.
func (r *Random) State() ([]byte, error) {
	return r.src.MarshalBinary()
}

// Intn returns a value in [0, n).
func (r *Random) Intn(n int) int {
	return r.rng.Intn(n)
}

// RollDie returns a value in [1, 6].
func (r *Random) RollDie() int {
	return r.rng.Intn(6) + 1
}

// Shuffle randomises the order of n elements.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}
