package game

import (
	"fmt"

	"github.com/natak-game/natak-server-go/internal/game/rules"
)

func (g *Game) moveThief(c Color, hex int) error {
	if err := g.require(rules.ActionMoveThief); err != nil {
		return err
	}
	if _, err := g.requireTurn(c); err != nil {
		return err
	}
	if err := g.board.MoveRobber(hex); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	g.emit(rules.NewEventWithAmount(rules.EventThiefMoved, int(c), hex))
	if err := g.moveState(rules.ActionMoveThief); err != nil {
		return err
	}
	if len(g.StealCandidates()) == 0 {
		return g.moveState(rules.ActionNoStealTarget)
	}
	return nil
}

// StealCandidates lists the opponents with a building on the thief's hex who
// hold at least one card.
func (g *Game) StealCandidates() []Color {
	current := g.CurrentPlayer()
	var victims []Color
	for _, owner := range g.board.BuildingOwners(g.board.Robber) {
		c := Color(owner)
		if c == current {
			continue
		}
		if p, err := g.player(c); err == nil && !p.Hand.IsEmpty() {
			victims = append(victims, c)
		}
	}
	return victims
}

func (g *Game) stealResource(c Color, victim Color) error {
	if err := g.require(rules.ActionStealResource); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	if victim == c {
		return fmt.Errorf("%w: cannot steal from yourself", ErrInvalidTarget)
	}
	eligible := false
	for _, candidate := range g.StealCandidates() {
		if candidate == victim {
			eligible = true
			break
		}
	}
	if !eligible {
		return fmt.Errorf("%w: %s has nothing to steal next to the thief", ErrInvalidTarget, victim)
	}

	target, _ := g.player(victim)
	cards := target.Hand.Cards()
	kind := cards[g.rng.Intn(len(cards))]
	target.Hand.Remove(kind, 1)
	p.Hand.Add(kind, 1)

	evt := rules.NewEventWithAmount(rules.EventResourceStolen, int(c), 1)
	evt.Target = int(victim)
	g.emit(evt)
	return g.moveState(rules.ActionStealResource)
}
