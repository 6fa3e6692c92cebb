package game

import (
	"fmt"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// deckComposition is the growth card deck of the base game.
var deckComposition = []struct {
	card  GrowthCard
	count int
}{
	{CardSoldier, 14},
	{CardVictoryPoint, 5},
	{CardRoaming, 2},
	{CardWealth, 2},
	{CardGatherer, 2},
}

// Bonus thresholds.
const (
	MinLargestArmy = 3
	MinLongestRoad = 5
	BonusPoints    = 2
)

// roamingRoads is the number of free roads a roaming card grants.
const roamingRoads = 2

func newDeck(rng *Random) []GrowthCard {
	var deck []GrowthCard
	for _, entry := range deckComposition {
		for i := 0; i < entry.count; i++ {
			deck = append(deck, entry.card)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

func (g *Game) buyGrowthCard(c Color) error {
	if err := g.require(rules.ActionBuyGrowthCard); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	if len(g.deck) == 0 {
		return fmt.Errorf("%w: growth card deck is empty", ErrInsufficientStock)
	}
	if !resources.Transfer(p.Hand, g.bank, resources.GrowthCardCost) {
		return fmt.Errorf("%w: growth card costs %s", ErrInsufficientResources, resources.GrowthCardCost)
	}

	card := g.deck[0]
	g.deck = g.deck[1:]
	if card == CardVictoryPoint {
		p.Cards[card]++
	} else {
		p.NewCards[card]++
	}

	g.emit(rules.NewEvent(rules.EventGrowthCardBought, int(c)))
	return g.moveState(rules.ActionBuyGrowthCard)
}

// checkPlayable validates that p may play card now.
func (g *Game) checkPlayable(p *Player, card GrowthCard) error {
	if g.ruleSet.OneGrowthCardPerTurn && g.cardPlayed {
		return fmt.Errorf("%w: a growth card was already played this turn", ErrCardNotPlayable)
	}
	if p.Cards[card] > 0 {
		return nil
	}
	if p.NewCards[card] > 0 {
		return fmt.Errorf("%w: %s was bought this turn", ErrCardNotPlayable, card)
	}
	return fmt.Errorf("%w: no %s card held", ErrCardNotPlayable, card)
}

func (g *Game) consumeCard(p *Player, card GrowthCard) {
	p.Cards[card]--
	if p.Cards[card] == 0 {
		delete(p.Cards, card)
	}
	g.cardPlayed = true
	evt := rules.NewEvent(rules.EventGrowthCardPlayed, int(p.Color))
	evt.Data = string(card)
	g.emit(evt)
}

// startCard runs the shared checks for playing a card.
func (g *Game) startCard(c Color, action rules.ActionType, card GrowthCard) (*Player, error) {
	if err := g.require(action); err != nil {
		return nil, err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return nil, err
	}
	if err := g.checkPlayable(p, card); err != nil {
		return nil, err
	}
	return p, nil
}

func (g *Game) playSoldier(c Color) error {
	p, err := g.startCard(c, rules.ActionPlaySoldier, CardSoldier)
	if err != nil {
		return err
	}

	g.consumeCard(p, CardSoldier)
	p.PlayedSoldiers++
	g.updateLargestArmy(p)
	return g.moveState(rules.ActionPlaySoldier)
}

func (g *Game) playRoaming(c Color) error {
	p, err := g.startCard(c, rules.ActionPlayRoaming, CardRoaming)
	if err != nil {
		return err
	}
	if p.Stock.Roads == 0 {
		return fmt.Errorf("%w: no roads left", ErrInsufficientStock)
	}
	if len(g.board.AvailableRoads(int(c), -1)) == 0 {
		return fmt.Errorf("%w: nowhere to build a road", ErrInvalidPlacement)
	}

	g.consumeCard(p, CardRoaming)
	g.roamingLeft = min(roamingRoads, p.Stock.Roads)
	return g.moveState(rules.ActionPlayRoaming)
}

func (g *Game) playWealth(c Color, take resources.Collection) error {
	p, err := g.startCard(c, rules.ActionPlayWealth, CardWealth)
	if err != nil {
		return err
	}
	if err := take.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if take.Total() != 2 {
		return fmt.Errorf("%w: wealth takes exactly 2 resources, got %d", ErrInvalidTarget, take.Total())
	}
	if !g.bank.Contains(take) {
		return fmt.Errorf("%w: bank holds %s", ErrBankExhausted, g.bank)
	}

	g.consumeCard(p, CardWealth)
	resources.Transfer(g.bank, p.Hand, take)
	return g.moveState(rules.ActionPlayWealth)
}

func (g *Game) playGatherer(c Color, kind resources.Kind) error {
	p, err := g.startCard(c, rules.ActionPlayGatherer, CardGatherer)
	if err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown resource kind %q", ErrInvalidTarget, string(kind))
	}

	g.consumeCard(p, CardGatherer)
	for _, other := range g.players {
		if other.Color == c {
			continue
		}
		n := other.Hand.Take(kind)
		if n == 0 {
			continue
		}
		p.Hand.Add(kind, n)
		evt := rules.NewEventWithAmount(rules.EventResourceStolen, int(c), n)
		evt.Target = int(other.Color)
		evt.Data = string(kind)
		g.emit(evt)
	}
	return g.moveState(rules.ActionPlayGatherer)
}

// updateLargestArmy hands the bonus to p when it strictly beats the holder.
func (g *Game) updateLargestArmy(p *Player) {
	if p.PlayedSoldiers < MinLargestArmy || g.largestArmy == p.Color {
		return
	}
	if g.largestArmy != ColorNone {
		holder, _ := g.player(g.largestArmy)
		if p.PlayedSoldiers <= holder.PlayedSoldiers {
			return
		}
	}
	g.largestArmy = p.Color
	g.emit(rules.NewEventWithAmount(rules.EventLargestArmyChanged, int(p.Color), p.PlayedSoldiers))
}
