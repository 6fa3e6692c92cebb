package game

import (
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

func (g *Game) endTurn(c Color) error {
	if err := g.require(rules.ActionEndTurn); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}

	p.promoteCards()
	g.cardPlayed = false
	g.dice = Dice{}
	if g.offer != nil {
		evt := rules.NewEvent(rules.EventTradeCancelled, int(g.offer.Proposer))
		evt.Data = "turn ended"
		g.emit(evt)
		g.offer = nil
	}

	if err := g.moveState(rules.ActionEndTurn); err != nil {
		return err
	}
	g.current = (g.current + 1) % len(g.players)
	g.turn++
	g.emit(rules.NewEventWithAmount(rules.EventTurnEnded, int(c), g.turn))
	return nil
}
