package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

func TestStatus_Spectator(t *testing.T) {
	g := newTestGame(t, 3)

	s, err := g.Status(ColorNone)
	require.NoError(t, err)
	assert.Equal(t, "test-game", s.GameID)
	assert.Equal(t, rules.StateSetupSettlement, s.Phase)
	assert.Nil(t, s.Me)
	assert.Empty(t, s.ValidActions)
	assert.Len(t, s.Players, 3)
	assert.Equal(t, ColorRed, s.CurrentPlayer)

	_, err = g.Status(ColorYellow)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestStatus_HidesOtherHands(t *testing.T) {
	g := newFixedBoardGame(t, 2)
	atState(t, g, rules.StateAfterRoll)
	setHand(t, g, ColorRed, resources.Collection{resources.Ore: 2})
	setHand(t, g, ColorBlue, resources.Collection{resources.Wool: 3})
	blue, _ := g.player(ColorBlue)
	blue.Cards[CardVictoryPoint] = 1

	s, err := g.Status(ColorRed)
	require.NoError(t, err)
	require.NotNil(t, s.Me)
	assert.True(t, s.Me.Hand.Equal(resources.Collection{resources.Ore: 2}))
	assert.Equal(t, 3, s.Players[1].CardCount)
	assert.Equal(t, 1, s.Players[1].GrowthCards)
	assert.Zero(t, s.Players[1].VisiblePoints)
	assert.Contains(t, s.ValidActions, rules.ActionEndTurn)

	s.Me.Hand.Add(resources.Ore, 10)
	red, _ := g.player(ColorRed)
	assert.Equal(t, 2, red.Hand.Get(resources.Ore))

	bs, err := g.Status(ColorBlue)
	require.NoError(t, err)
	assert.Equal(t, 1, bs.Me.VictoryPoints)
	assert.NotContains(t, bs.ValidActions, rules.ActionEndTurn)
	assert.ElementsMatch(t, []rules.ActionType{rules.ActionEmbargo, rules.ActionRemoveEmbargo}, bs.ValidActions)
}

func TestValidActionsFor_OfferResponses(t *testing.T) {
	g := newTradeGame(t, 3)
	require.NoError(t, g.Apply(offerCmd(ColorRed, resources.Of(resources.Lumber), resources.Of(resources.Brick))))

	assert.ElementsMatch(t,
		[]rules.ActionType{rules.ActionRespondToTradeOffer, rules.ActionEmbargo, rules.ActionRemoveEmbargo},
		g.ValidActionsFor(ColorBlue))
	assert.Empty(t, g.ValidActionsFor(ColorNone))
}

func TestStatus_StealCandidates(t *testing.T) {
	g := newFixedBoardGame(t, 2)
	atState(t, g, rules.StateAfterRoll, rules.StateMoveThief)
	g.board.PlaceSettlement(int(ColorBlue), g.board.Hexes[0].Points[0])
	setHand(t, g, ColorBlue, resources.Of(resources.Wool))

	require.NoError(t, g.Apply(Command{Action: rules.ActionMoveThief, Player: ColorRed, Location: 0}))
	s, err := g.Status(ColorRed)
	require.NoError(t, err)
	assert.Equal(t, []Color{ColorBlue}, s.StealCandidates)
	assert.Equal(t, []rules.ActionType{rules.ActionStealResource}, s.ValidActions)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("blue")
	require.NoError(t, err)
	assert.Equal(t, ColorBlue, c)

	c, err = ParseColor("3")
	require.NoError(t, err)
	assert.Equal(t, ColorGreen, c)

	for _, bad := range []string{"0", "5", "purple", ""} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidPlayer, bad)
	}
}
