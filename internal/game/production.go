package game

import (
	"fmt"
	"sort"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// thiefRoll is the dice total that triggers the thief instead of production.
const thiefRoll = 7

func (g *Game) rollDice(c Color) error {
	if err := g.require(rules.ActionRollDice); err != nil {
		return err
	}
	if _, err := g.requireTurn(c); err != nil {
		return err
	}

	g.dice = Dice{g.rng.RollDie(), g.rng.RollDie()}
	evt := rules.NewEventWithAmount(rules.EventDiceRolled, int(c), g.dice.Total())
	evt.Data = fmt.Sprintf("%d+%d", g.dice[0], g.dice[1])
	g.emit(evt)

	if err := g.moveState(rules.ActionRollDice); err != nil {
		return err
	}
	if g.dice.Total() == thiefRoll {
		return g.startThief()
	}
	g.produce(g.dice.Total())
	return nil
}

// produce pays out a roll. A resource kind whose total demand exceeds the
// bank's stock is paid to nobody.
func (g *Game) produce(roll int) {
	grants := g.board.Production(roll)

	demand := resources.NewCollection()
	for _, grant := range grants {
		demand.Add(grant.Kind, grant.Amount)
	}

	blocked := make(map[resources.Kind]bool)
	for _, kind := range resources.Kinds {
		if n := demand.Get(kind); n > 0 && n > g.bank.Get(kind) {
			blocked[kind] = true
			evt := rules.NewEventWithAmount(rules.EventProductionBlocked, int(ColorNone), n)
			evt.Data = string(kind)
			g.emit(evt)
		}
	}

	earned := make(map[Color]resources.Collection)
	for _, grant := range grants {
		if blocked[grant.Kind] {
			continue
		}
		p, err := g.player(Color(grant.Owner))
		if err != nil {
			continue
		}
		g.bank.Remove(grant.Kind, grant.Amount)
		p.Hand.Add(grant.Kind, grant.Amount)
		if earned[p.Color] == nil {
			earned[p.Color] = resources.NewCollection()
		}
		earned[p.Color].Add(grant.Kind, grant.Amount)
	}

	colors := make([]int, 0, len(earned))
	for c := range earned {
		colors = append(colors, int(c))
	}
	sort.Ints(colors)
	for _, c := range colors {
		g.emit(rules.NewEventWithResources(rules.EventResourcesProduced, c, earned[Color(c)]))
	}
}

// startThief begins the seven sequence: the thief must move, after every
// player over the discard limit has discarded half their hand.
func (g *Game) startThief() error {
	if err := g.moveState(rules.ActionRollSeven); err != nil {
		return err
	}

	g.discards = make(map[Color]int)
	for _, p := range g.players {
		if total := p.Hand.Total(); total > g.ruleSet.DiscardLimit {
			g.discards[p.Color] = total / 2
		}
	}
	if len(g.discards) == 0 {
		return nil
	}
	return g.moveState(rules.ActionRequireDiscard)
}

// PendingDiscards returns how many cards each player still has to discard.
func (g *Game) PendingDiscards() map[Color]int {
	cpy := make(map[Color]int, len(g.discards))
	for c, n := range g.discards {
		cpy[c] = n
	}
	return cpy
}

func (g *Game) discardResources(c Color, cards resources.Collection) error {
	if err := g.require(rules.ActionDiscardResources); err != nil {
		return err
	}
	p, err := g.player(c)
	if err != nil {
		return err
	}
	owed, ok := g.discards[c]
	if !ok {
		return fmt.Errorf("%w: %s has nothing to discard", ErrInvalidDiscard, c)
	}
	if err := cards.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDiscard, err)
	}
	if cards.Total() != owed {
		return fmt.Errorf("%w: %s must discard %d cards, got %d", ErrInvalidDiscard, c, owed, cards.Total())
	}
	if !resources.Transfer(p.Hand, g.bank, cards) {
		return fmt.Errorf("%w: hand %s does not hold %s", ErrInsufficientResources, p.Hand, cards)
	}

	delete(g.discards, c)
	g.emit(rules.NewEventWithResources(rules.EventResourcesDiscarded, int(c), cards))

	if err := g.moveState(rules.ActionDiscardResources); err != nil {
		return err
	}
	if len(g.discards) > 0 {
		return nil
	}
	return g.moveState(rules.ActionDiscardComplete)
}
