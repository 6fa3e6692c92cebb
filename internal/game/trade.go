package game

import (
	"fmt"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// TradeOffer is a proposal from the current player to every other player.
type TradeOffer struct {
	Proposer Color                `json:"proposer"`
	Offer    resources.Collection `json:"offer"`
	Request  resources.Collection `json:"request"`
	Rejected []Color              `json:"rejected,omitempty"`
	Turn     int                  `json:"turn"`
}

func (o *TradeOffer) clone() *TradeOffer {
	if o == nil {
		return nil
	}
	return &TradeOffer{
		Proposer: o.Proposer,
		Offer:    o.Offer.Clone(),
		Request:  o.Request.Clone(),
		Rejected: append([]Color(nil), o.Rejected...),
		Turn:     o.Turn,
	}
}

func (o *TradeOffer) hasRejected(c Color) bool {
	for _, r := range o.Rejected {
		if r == c {
			return true
		}
	}
	return false
}

// Offer returns a copy of the live trade offer, or nil.
func (g *Game) Offer() *TradeOffer {
	return g.offer.clone()
}

// embargoed reports whether either player refuses to trade with the other.
func (g *Game) embargoed(a, b Color) bool {
	pa, errA := g.player(a)
	pb, errB := g.player(b)
	if errA != nil || errB != nil {
		return false
	}
	return pa.HasEmbargoed(b) || pb.HasEmbargoed(a)
}

func (g *Game) tradeWithBank(c Color, give, get resources.Kind) error {
	if err := g.require(rules.ActionTradeWithBank); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	if !give.Valid() || !get.Valid() {
		return fmt.Errorf("%w: unknown resource kind", ErrInvalidTrade)
	}
	if give == get {
		return fmt.Errorf("%w: cannot trade %s for itself", ErrInvalidTrade, give)
	}

	ratio := g.board.TradeRatio(int(c), give)
	if p.Hand.Get(give) < ratio {
		return fmt.Errorf("%w: need %d %s, have %d", ErrInsufficientResources, ratio, give, p.Hand.Get(give))
	}
	if g.bank.Get(get) == 0 {
		return fmt.Errorf("%w: bank has no %s", ErrBankExhausted, get)
	}

	paid := resources.Collection{give: ratio}
	received := resources.Collection{get: 1}
	resources.Transfer(p.Hand, g.bank, paid)
	resources.Transfer(g.bank, p.Hand, received)

	evt := rules.NewEventWithResources(rules.EventBankTrade, int(c), paid)
	evt.Data = string(get)
	g.emit(evt)
	return g.moveState(rules.ActionTradeWithBank)
}

func (g *Game) makeTradeOffer(c Color, offer, request resources.Collection) error {
	if err := g.require(rules.ActionMakeTradeOffer); err != nil {
		return err
	}
	p, err := g.requireTurn(c)
	if err != nil {
		return err
	}
	if g.offer != nil {
		return fmt.Errorf("%w: %s is waiting for answers", ErrTradeOfferPending, g.offer.Proposer)
	}
	if err := offer.Validate(); err != nil {
		return fmt.Errorf("%w: offer: %v", ErrInvalidTrade, err)
	}
	if err := request.Validate(); err != nil {
		return fmt.Errorf("%w: request: %v", ErrInvalidTrade, err)
	}
	if offer.IsEmpty() || request.IsEmpty() {
		return fmt.Errorf("%w: offer and request must both hold cards", ErrInvalidTrade)
	}
	if offer.Overlaps(request) {
		return fmt.Errorf("%w: cannot offer and request the same kind", ErrInvalidTrade)
	}
	if !p.Hand.Contains(offer) {
		return fmt.Errorf("%w: hand %s does not hold %s", ErrInsufficientResources, p.Hand, offer)
	}
	if !g.hasTradePartner(c) {
		return fmt.Errorf("%w: %s cannot trade with any player", ErrTradeEmbargoed, c)
	}

	g.offer = &TradeOffer{
		Proposer: c,
		Offer:    offer.Clone(),
		Request:  request.Clone(),
		Turn:     g.turn,
	}
	evt := rules.NewEventWithResources(rules.EventTradeOffered, int(c), offer)
	evt.Data = request.String()
	g.emit(evt)
	return g.moveState(rules.ActionMakeTradeOffer)
}

func (g *Game) respondToTradeOffer(c Color, accept bool) error {
	if err := g.require(rules.ActionRespondToTradeOffer); err != nil {
		return err
	}
	responder, err := g.player(c)
	if err != nil {
		return err
	}
	if g.offer == nil {
		return ErrTradeOfferNotFound
	}
	offer := g.offer
	if c == offer.Proposer {
		return fmt.Errorf("%w: cannot answer your own offer", ErrInvalidTrade)
	}
	if offer.hasRejected(c) {
		return fmt.Errorf("%w: %s already rejected the offer", ErrInvalidTrade, c)
	}
	if g.embargoed(c, offer.Proposer) {
		return fmt.Errorf("%w: %s and %s", ErrTradeEmbargoed, c, offer.Proposer)
	}

	if !accept {
		offer.Rejected = append(offer.Rejected, c)
		g.emit(rules.NewEvent(rules.EventTradeRejected, int(c)))
		if g.everyoneRejected() {
			g.offer = nil
			cancelled := rules.NewEvent(rules.EventTradeCancelled, int(offer.Proposer))
			cancelled.Data = "rejected"
			g.emit(cancelled)
		}
		return g.moveState(rules.ActionRespondToTradeOffer)
	}

	proposer, _ := g.player(offer.Proposer)
	if !proposer.Hand.Contains(offer.Offer) {
		return fmt.Errorf("%w: %s no longer holds %s", ErrInsufficientResources, proposer.Color, offer.Offer)
	}
	if !responder.Hand.Contains(offer.Request) {
		return fmt.Errorf("%w: %s does not hold %s", ErrInsufficientResources, c, offer.Request)
	}
	resources.Transfer(proposer.Hand, responder.Hand, offer.Offer)
	resources.Transfer(responder.Hand, proposer.Hand, offer.Request)
	g.offer = nil

	evt := rules.NewEventWithResources(rules.EventTradeAccepted, int(c), offer.Request)
	evt.Target = int(offer.Proposer)
	g.emit(evt)
	return g.moveState(rules.ActionRespondToTradeOffer)
}

func (g *Game) hasTradePartner(c Color) bool {
	for _, p := range g.players {
		if p.Color != c && !g.embargoed(c, p.Color) {
			return true
		}
	}
	return false
}

// everyoneRejected reports whether no player who could accept the offer is left.
func (g *Game) everyoneRejected() bool {
	for _, p := range g.players {
		if p.Color == g.offer.Proposer || g.embargoed(p.Color, g.offer.Proposer) {
			continue
		}
		if !g.offer.hasRejected(p.Color) {
			return false
		}
	}
	return true
}

func (g *Game) cancelTradeOffer(c Color) error {
	if err := g.require(rules.ActionCancelTradeOffer); err != nil {
		return err
	}
	if g.offer == nil {
		return ErrTradeOfferNotFound
	}
	if g.offer.Proposer != c {
		return fmt.Errorf("%w: only %s may cancel the offer", ErrNotPlayersTurn, g.offer.Proposer)
	}

	g.offer = nil
	g.emit(rules.NewEvent(rules.EventTradeCancelled, int(c)))
	return g.moveState(rules.ActionCancelTradeOffer)
}

func (g *Game) embargo(c, target Color) error {
	if err := g.require(rules.ActionEmbargo); err != nil {
		return err
	}
	p, err := g.player(c)
	if err != nil {
		return err
	}
	if _, err := g.player(target); err != nil || target == c {
		return fmt.Errorf("%w: cannot embargo %s", ErrInvalidTarget, target)
	}
	if p.HasEmbargoed(target) {
		return fmt.Errorf("%w: %s already embargoed by %s", ErrInvalidTarget, target, c)
	}

	p.Embargoes = append(p.Embargoes, target)
	evt := rules.NewEvent(rules.EventEmbargoAdded, int(c))
	evt.Target = int(target)
	g.emit(evt)
	if offer := g.offer; offer != nil && g.everyoneRejected() {
		g.offer = nil
		cancelled := rules.NewEvent(rules.EventTradeCancelled, int(offer.Proposer))
		cancelled.Data = "embargoed"
		g.emit(cancelled)
	}
	return g.moveState(rules.ActionEmbargo)
}

func (g *Game) removeEmbargo(c, target Color) error {
	if err := g.require(rules.ActionRemoveEmbargo); err != nil {
		return err
	}
	p, err := g.player(c)
	if err != nil {
		return err
	}
	idx := -1
	for i, e := range p.Embargoes {
		if e == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s has not embargoed %s", ErrInvalidTarget, c, target)
	}

	p.Embargoes = append(p.Embargoes[:idx], p.Embargoes[idx+1:]...)
	evt := rules.NewEvent(rules.EventEmbargoRemoved, int(c))
	evt.Target = int(target)
	g.emit(evt)
	return g.moveState(rules.ActionRemoveEmbargo)
}
