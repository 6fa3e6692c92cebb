package game

import (
	"fmt"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// Command is one player intent. Only the fields an action uses are read:
//
//	BuildSettlement, BuildTown: Location is a point id
//	BuildRoad: Location is an edge id
//	MoveThief: Location is a hex id
//	StealResource, Embargo, RemoveEmbargo: Target
//	PlayWealth: Request holds the two resources taken
//	PlayGatherer: Resource
//	DiscardResources: Offer holds the discarded cards
//	TradeWithBank: Resource is given, Want is received
//	MakeTradeOffer: Offer and Request
//	RespondToTradeOffer: Accept
type Command struct {
	Action   rules.ActionType     `json:"action"`
	Player   Color                `json:"player"`
	Location int                  `json:"location"`
	Target   Color                `json:"target,omitempty"`
	Resource resources.Kind       `json:"resource,omitempty"`
	Want     resources.Kind       `json:"want,omitempty"`
	Offer    resources.Collection `json:"offer,omitempty"`
	Request  resources.Collection `json:"request,omitempty"`
	Accept   bool                 `json:"accept,omitempty"`
}

// Apply validates and executes a command. Handlers check everything before
// mutating, so a failed command leaves the game unchanged. Successful
// commands are appended to the action log.
func (g *Game) Apply(cmd Command) error {
	if err := g.dispatch(cmd); err != nil {
		return err
	}
	if err := g.checkVictory(); err != nil {
		return err
	}
	g.log = append(g.log, cmd.clone())
	return nil
}

func (g *Game) dispatch(cmd Command) error {
	c := cmd.Player
	switch cmd.Action {
	case rules.ActionBuildSettlement:
		return g.buildSettlement(c, cmd.Location)
	case rules.ActionBuildRoad:
		return g.buildRoad(c, cmd.Location)
	case rules.ActionBuildTown:
		return g.buildTown(c, cmd.Location)
	case rules.ActionRollDice:
		return g.rollDice(c)
	case rules.ActionEndTurn:
		return g.endTurn(c)
	case rules.ActionBuyGrowthCard:
		return g.buyGrowthCard(c)
	case rules.ActionPlaySoldier:
		return g.playSoldier(c)
	case rules.ActionPlayRoaming:
		return g.playRoaming(c)
	case rules.ActionPlayWealth:
		return g.playWealth(c, cmd.Request)
	case rules.ActionPlayGatherer:
		return g.playGatherer(c, cmd.Resource)
	case rules.ActionMoveThief:
		return g.moveThief(c, cmd.Location)
	case rules.ActionStealResource:
		return g.stealResource(c, cmd.Target)
	case rules.ActionDiscardResources:
		return g.discardResources(c, cmd.Offer)
	case rules.ActionTradeWithBank:
		return g.tradeWithBank(c, cmd.Resource, cmd.Want)
	case rules.ActionMakeTradeOffer:
		return g.makeTradeOffer(c, cmd.Offer, cmd.Request)
	case rules.ActionRespondToTradeOffer:
		return g.respondToTradeOffer(c, cmd.Accept)
	case rules.ActionCancelTradeOffer:
		return g.cancelTradeOffer(c)
	case rules.ActionEmbargo:
		return g.embargo(c, cmd.Target)
	case rules.ActionRemoveEmbargo:
		return g.removeEmbargo(c, cmd.Target)
	default:
		return fmt.Errorf("%w: %s is not a player action", ErrInvalidAction, cmd.Action)
	}
}

func (cmd Command) clone() Command {
	if cmd.Offer != nil {
		cmd.Offer = cmd.Offer.Clone()
	}
	if cmd.Request != nil {
		cmd.Request = cmd.Request.Clone()
	}
	return cmd
}
