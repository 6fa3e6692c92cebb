package game

import (
	"github.com/natak-game/natak-server-go/internal/game/board"
	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// PlayerView is what every seat can see about a player.
type PlayerView struct {
	Color          Color              `json:"color"`
	CardCount      int                `json:"card_count"`
	GrowthCards    int                `json:"growth_cards"`
	VisiblePoints  int                `json:"visible_points"`
	PlayedSoldiers int                `json:"played_soldiers"`
	RoadLength     int                `json:"road_length"`
	Stock          Stock              `json:"stock"`
	Embargoes      []Color            `json:"embargoes,omitempty"`
	Harbors        []board.HarborKind `json:"harbors,omitempty"`
}

// PrivateView is what only the requesting seat sees about itself.
type PrivateView struct {
	Hand          resources.Collection `json:"hand"`
	Cards         map[GrowthCard]int   `json:"cards"`
	NewCards      map[GrowthCard]int   `json:"new_cards"`
	VictoryPoints int                  `json:"victory_points"`
	Discard       int                  `json:"discard,omitempty"`
}

// Status is the projection of a game returned to a seat after every command.
type Status struct {
	GameID          string               `json:"game_id"`
	Phase           rules.GameState      `json:"phase"`
	Stack           []rules.GameState    `json:"stack"`
	ValidActions    []rules.ActionType   `json:"valid_actions"`
	CurrentPlayer   Color                `json:"current_player"`
	Turn            int                  `json:"turn"`
	Dice            Dice                 `json:"dice"`
	Bank            resources.Collection `json:"bank"`
	DeckRemaining   int                  `json:"deck_remaining"`
	Board           *board.Board         `json:"board"`
	Players         []PlayerView         `json:"players"`
	Me              *PrivateView         `json:"me,omitempty"`
	Offer           *TradeOffer          `json:"offer,omitempty"`
	PendingDiscards map[Color]int        `json:"pending_discards,omitempty"`
	StealCandidates []Color              `json:"steal_candidates,omitempty"`
	LongestRoad     Color                `json:"longest_road"`
	LargestArmy     Color                `json:"largest_army"`
	Winner          Color                `json:"winner"`
}

// Status projects the game for viewer. ColorNone yields a spectator view.
func (g *Game) Status(viewer Color) (*Status, error) {
	if viewer != ColorNone {
		if _, err := g.player(viewer); err != nil {
			return nil, err
		}
	}

	s := &Status{
		GameID:          g.id,
		Phase:           g.states.CurrentState(),
		Stack:           g.states.Stack(),
		ValidActions:    g.ValidActionsFor(viewer),
		CurrentPlayer:   g.CurrentPlayer(),
		Turn:            g.turn,
		Dice:            g.dice,
		Bank:            g.bank.Clone(),
		DeckRemaining:   len(g.deck),
		Board:           g.board.Clone(),
		Players:         make([]PlayerView, len(g.players)),
		Offer:           g.offer.clone(),
		PendingDiscards: g.PendingDiscards(),
		LongestRoad:     g.longestRoad,
		LargestArmy:     g.largestArmy,
		Winner:          g.winner,
	}
	if s.Phase == rules.StateStealResource {
		s.StealCandidates = g.StealCandidates()
	}

	for i, p := range g.players {
		s.Players[i] = PlayerView{
			Color:          p.Color,
			CardCount:      p.Hand.Total(),
			GrowthCards:    p.CardCount(),
			VisiblePoints:  g.visiblePoints(p),
			PlayedSoldiers: p.PlayedSoldiers,
			RoadLength:     p.RoadLength,
			Stock:          p.Stock,
			Embargoes:      append([]Color(nil), p.Embargoes...),
			Harbors:        g.board.HarborsOf(int(p.Color)),
		}
		if p.Color == viewer {
			s.Me = &PrivateView{
				Hand:          p.Hand.Clone(),
				Cards:         cloneCards(p.Cards),
				NewCards:      cloneCards(p.NewCards),
				VictoryPoints: g.VictoryPoints(p.Color),
				Discard:       g.discards[p.Color],
			}
		}
	}
	return s, nil
}

// ValidActionsFor narrows the phase's valid actions to those c may take now.
// Out of turn a player may only discard, answer an offer or manage embargoes.
func (g *Game) ValidActionsFor(c Color) []rules.ActionType {
	actions := []rules.ActionType{}
	if c == ColorNone {
		return actions
	}
	current := c == g.CurrentPlayer()
	for _, a := range g.states.GetValidActions() {
		switch a {
		case rules.ActionDiscardResources:
			if _, owes := g.discards[c]; !owes {
				continue
			}
		case rules.ActionRespondToTradeOffer:
			if g.offer == nil || g.offer.Proposer == c || g.offer.hasRejected(c) || g.embargoed(c, g.offer.Proposer) {
				continue
			}
		case rules.ActionCancelTradeOffer:
			if g.offer == nil || g.offer.Proposer != c {
				continue
			}
		case rules.ActionMakeTradeOffer:
			if !current || g.offer != nil {
				continue
			}
		case rules.ActionEmbargo, rules.ActionRemoveEmbargo:
		default:
			if !current {
				continue
			}
		}
		actions = append(actions, a)
	}
	return actions
}
