package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natak-game/natak-server-go/internal/game/board"
	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

func newTradeGame(t *testing.T, players int) *Game {
	t.Helper()
	g := newFixedBoardGame(t, players)
	atState(t, g, rules.StateAfterRoll)
	setHand(t, g, ColorRed, resources.Collection{resources.Lumber: 2, resources.Ore: 1})
	setHand(t, g, ColorBlue, resources.Collection{resources.Brick: 2})
	return g
}

func offerCmd(c Color, offer, request resources.Collection) Command {
	return Command{Action: rules.ActionMakeTradeOffer, Player: c, Offer: offer, Request: request}
}

func respondCmd(c Color, accept bool) Command {
	return Command{Action: rules.ActionRespondToTradeOffer, Player: c, Accept: accept}
}

func TestTradeOffer_Accept(t *testing.T) {
	g := newTradeGame(t, 3)

	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))
	require.NotNil(t, g.Offer())
	assert.Contains(t, g.ValidActionsFor(ColorBlue), rules.ActionRespondToTradeOffer)
	assert.Contains(t, g.ValidActionsFor(ColorRed), rules.ActionCancelTradeOffer)
	assert.NotContains(t, g.ValidActionsFor(ColorRed), rules.ActionMakeTradeOffer)

	require.NoError(t, g.Apply(respondCmd(ColorBlue, true)))
	assert.Nil(t, g.Offer())
	assert.Equal(t, rules.StateAfterRoll, g.State())

	red, _ := g.player(ColorRed)
	blue, _ := g.player(ColorBlue)
	assert.True(t, red.Hand.Equal(resources.Collection{resources.Lumber: 1, resources.Brick: 1, resources.Ore: 1}))
	assert.True(t, blue.Hand.Equal(resources.Collection{resources.Lumber: 1, resources.Brick: 1}))
	assertConserved(t, g)

	events := g.DrainEvents()
	types := eventTypes(events)
	assert.Contains(t, types, rules.EventTradeOffered)
	assert.Contains(t, types, rules.EventTradeAccepted)
}

func TestTradeOffer_AcceptIsAtomic(t *testing.T) {
	g := newTradeGame(t, 3)
	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))

	err := g.Apply(respondCmd(ColorGreen, true))
	assert.ErrorIs(t, err, ErrInsufficientResources)
	require.NotNil(t, g.Offer())

	red, _ := g.player(ColorRed)
	green, _ := g.player(ColorGreen)
	assert.Equal(t, 2, red.Hand.Get(resources.Lumber))
	assert.True(t, green.Hand.IsEmpty())

	// the proposer spent the offered cards before anyone accepted
	setHand(t, g, ColorRed, resources.Of(resources.Ore))
	err = g.Apply(respondCmd(ColorBlue, true))
	assert.ErrorIs(t, err, ErrInsufficientResources)
	blue, _ := g.player(ColorBlue)
	assert.Equal(t, 2, blue.Hand.Get(resources.Brick))
	assertConserved(t, g)
}

func TestTradeOffer_EveryoneRejects(t *testing.T) {
	g := newTradeGame(t, 3)
	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Wool))))
	g.DrainEvents()

	require.NoError(t, g.Apply(respondCmd(ColorBlue, false)))
	require.NotNil(t, g.Offer())
	assert.Equal(t, []Color{ColorBlue}, g.Offer().Rejected)
	assert.NotContains(t, g.ValidActionsFor(ColorBlue), rules.ActionRespondToTradeOffer)

	err := g.Apply(respondCmd(ColorBlue, false))
	assert.ErrorIs(t, err, ErrInvalidTrade)

	require.NoError(t, g.Apply(respondCmd(ColorGreen, false)))
	assert.Nil(t, g.Offer())

	events := g.DrainEvents()
	last := events[len(events)-1]
	assert.Equal(t, rules.EventTradeCancelled, last.Type)
	assert.Equal(t, "rejected", last.Data)
}

func TestTradeOffer_Validation(t *testing.T) {
	g := newTradeGame(t, 3)

	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{"out of turn", offerCmd(ColorBlue, resources.Of(resources.Brick), resources.Of(resources.Lumber)), ErrNotPlayersTurn},
		{"empty request", offerCmd(ColorRed, resources.Of(resources.Lumber), resources.NewCollection()), ErrInvalidTrade},
		{"overlap", offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Lumber, resources.Brick)), ErrInvalidTrade},
		{"negative", offerCmd(ColorRed, resources.Collection{resources.Lumber: -1}, resources.Of(resources.Brick)), ErrInvalidTrade},
		{"not held", offerCmd(ColorRed, resources.Of(resources.Grain), resources.Of(resources.Brick)), ErrInsufficientResources},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Apply(tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, g.Offer())
		})
	}

	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))
	err := g.Apply(offerCmd(ColorRed, resources.Of(resources.Ore), resources.Of(resources.Brick)))
	assert.ErrorIs(t, err, ErrTradeOfferPending)

	err = g.Apply(respondCmd(ColorRed, true))
	assert.ErrorIs(t, err, ErrInvalidTrade)
}

func TestTradeOffer_Cancel(t *testing.T) {
	g := newTradeGame(t, 2)

	err := g.Apply(Command{Action: rules.ActionCancelTradeOffer, Player: ColorRed})
	assert.ErrorIs(t, err, ErrTradeOfferNotFound)

	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))
	err = g.Apply(Command{Action: rules.ActionCancelTradeOffer, Player: ColorBlue})
	assert.ErrorIs(t, err, ErrNotPlayersTurn)

	require.NoError(t, g.Apply(Command{Action: rules.ActionCancelTradeOffer, Player: ColorRed}))
	assert.Nil(t, g.Offer())

	err = g.Apply(respondCmd(ColorBlue, true))
	assert.ErrorIs(t, err, ErrTradeOfferNotFound)
}

func TestTradeOffer_DroppedAtEndOfTurn(t *testing.T) {
	g := newTradeGame(t, 2)
	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))
	require.NoError(t, g.Apply(Command{Action: rules.ActionEndTurn, Player: ColorRed}))
	assert.Nil(t, g.Offer())
}

func TestEmbargo(t *testing.T) {
	g := newTradeGame(t, 3)

	require.NoError(t, g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorBlue, Target: ColorRed}))
	blue, _ := g.player(ColorBlue)
	assert.Equal(t, []Color{ColorRed}, blue.Embargoes)

	err := g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorBlue, Target: ColorRed})
	assert.ErrorIs(t, err, ErrInvalidTarget)
	err = g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorBlue, Target: ColorBlue})
	assert.ErrorIs(t, err, ErrInvalidTarget)
	err = g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorBlue, Target: ColorYellow})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))
	assert.NotContains(t, g.ValidActionsFor(ColorBlue), rules.ActionRespondToTradeOffer)
	err = g.Apply(respondCmd(ColorBlue, true))
	assert.ErrorIs(t, err, ErrTradeEmbargoed)

	// Green is the only one left who can answer
	require.NoError(t, g.Apply(respondCmd(ColorGreen, false)))
	assert.Nil(t, g.Offer())

	err = g.Apply(Command{Action: rules.ActionRemoveEmbargo, Player: ColorRed, Target: ColorBlue})
	assert.ErrorIs(t, err, ErrInvalidTarget)
	require.NoError(t, g.Apply(Command{Action: rules.ActionRemoveEmbargo, Player: ColorBlue, Target: ColorRed}))
	assert.Empty(t, blue.Embargoes)
	assert.Equal(t, rules.StateAfterRoll, g.State())
}

func TestEmbargo_NoPartnerLeft(t *testing.T) {
	g := newTradeGame(t, 2)
	require.NoError(t, g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorRed, Target: ColorBlue}))

	err := g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick)))
	assert.ErrorIs(t, err, ErrTradeEmbargoed)
}

func TestEmbargo_ClearsUnanswerableOffer(t *testing.T) {
	g := newTradeGame(t, 2)
	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))
	g.DrainEvents()

	require.NoError(t, g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorBlue, Target: ColorRed}))
	assert.Nil(t, g.Offer())
	events := g.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, rules.EventEmbargoAdded, events[0].Type)
	assert.Equal(t, rules.EventTradeCancelled, events[1].Type)
	assert.Equal(t, int(ColorRed), events[1].Player)

	assert.Contains(t, g.ValidActionsFor(ColorRed), rules.ActionEndTurn)
	err := g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick)))
	assert.ErrorIs(t, err, ErrTradeEmbargoed)
}

func TestEmbargo_KeepsOfferOthersCanAnswer(t *testing.T) {
	g := newTradeGame(t, 3)
	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))

	require.NoError(t, g.Apply(Command{Action: rules.ActionEmbargo, Player: ColorBlue, Target: ColorRed}))
	assert.NotNil(t, g.Offer())
	assert.Contains(t, g.ValidActionsFor(ColorGreen), rules.ActionRespondToTradeOffer)
}

func TestTradeWithBank(t *testing.T) {
	g := newTradeGame(t, 2)
	bank := func(kind resources.Kind, give resources.Kind) Command {
		return Command{Action: rules.ActionTradeWithBank, Player: ColorRed, Resource: give, Want: kind}
	}

	err := g.Apply(bank(resources.Ore, resources.Lumber))
	assert.ErrorIs(t, err, ErrInsufficientResources)
	err = g.Apply(bank(resources.Lumber, resources.Lumber))
	assert.ErrorIs(t, err, ErrInvalidTrade)
	err = g.Apply(bank("GOLD", resources.Lumber))
	assert.ErrorIs(t, err, ErrInvalidTrade)

	setHand(t, g, ColorRed, resources.Collection{resources.Lumber: 4})
	require.NoError(t, g.Apply(bank(resources.Ore, resources.Lumber)))
	red, _ := g.player(ColorRed)
	assert.True(t, red.Hand.Equal(resources.Of(resources.Ore)))
	assertConserved(t, g)

	setHand(t, g, ColorRed, resources.Collection{resources.Lumber: 4})
	ore := g.bank.Take(resources.Ore)
	err = g.Apply(bank(resources.Ore, resources.Lumber))
	assert.ErrorIs(t, err, ErrBankExhausted)
	assert.Equal(t, 4, red.Hand.Get(resources.Lumber))
	g.bank.Add(resources.Ore, ore)

	err = g.Apply(Command{Action: rules.ActionTradeWithBank, Player: ColorBlue, Resource: resources.Brick, Want: resources.Ore})
	assert.ErrorIs(t, err, ErrNotPlayersTurn)
}

func TestTradeWithBank_Harbor(t *testing.T) {
	g := newTradeGame(t, 2)

	spot := -1
	for _, h := range g.board.Harbors {
		if h.Kind == board.HarborGeneric {
			spot = h.Points[0]
			break
		}
	}
	require.GreaterOrEqual(t, spot, 0)
	g.board.PlaceSettlement(int(ColorRed), spot)
	require.Equal(t, board.GenericTradeRatio, g.board.TradeRatio(int(ColorRed), resources.Lumber))

	setHand(t, g, ColorRed, resources.Collection{resources.Lumber: board.GenericTradeRatio})
	require.NoError(t, g.Apply(Command{Action: rules.ActionTradeWithBank, Player: ColorRed, Resource: resources.Lumber, Want: resources.Ore}))
	red, _ := g.player(ColorRed)
	assert.True(t, red.Hand.Equal(resources.Of(resources.Ore)))
	assertConserved(t, g)
}
