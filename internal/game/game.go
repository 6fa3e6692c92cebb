package game

import (
	"fmt"

	"github.com/natak-game/natak-server-go/internal/game/board"
	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// Player count limits.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// BankStartingAmount is the bank's initial stock of every resource kind.
const BankStartingAmount = 19

// RuleSet holds the tunable rules of a game.
type RuleSet struct {
	PointsToWin          int  `json:"points_to_win"`
	DiscardLimit         int  `json:"discard_limit"`
	OneGrowthCardPerTurn bool `json:"one_growth_card_per_turn"`
}

// DefaultRuleSet returns the standard rules.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		PointsToWin:          10,
		DiscardLimit:         7,
		OneGrowthCardPerTurn: true,
	}
}

// Dice is the outcome of a roll; zero values mean not rolled this turn.
type Dice [2]int

// Total returns the sum of both dice.
func (d Dice) Total() int {
	return d[0] + d[1]
}

// Game is the aggregate root of a single match. It performs no locking;
// callers serialise access per game.
type Game struct {
	id       string
	seed     uint64
	ruleSet  RuleSet
	board    *board.Board
	players  []*Player
	current  int
	states   *rules.StateManager
	bank     resources.Collection
	deck     []GrowthCard
	offer    *TradeOffer
	dice     Dice
	turn     int
	rng      *Random
	discards map[Color]int

	setupStep   int
	setupAnchor int
	roamingLeft int
	cardPlayed  bool
	longestRoad Color
	largestArmy Color
	winner      Color

	log    []Command
	events []rules.Event
}

// NewGame creates a game in initial placement for playerCount seats. All
// randomness, including the board layout, derives from seed.
func NewGame(id string, playerCount int, seed uint64, rs RuleSet) (*Game, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidPlayerCount, playerCount, MinPlayers, MaxPlayers)
	}

	rng := NewRandom(seed)
	g := &Game{
		id:          id,
		seed:        seed,
		ruleSet:     rs,
		board:       board.NewStandard(rng),
		players:     make([]*Player, playerCount),
		states:      rules.NewStateManager(rules.StateSetupSettlement),
		bank:        resources.Uniform(BankStartingAmount),
		deck:        newDeck(rng),
		rng:         rng,
		discards:    make(map[Color]int),
		setupAnchor: -1,
	}
	for i := range g.players {
		g.players[i] = newPlayer(Color(i + 1))
	}

	g.emit(rules.NewEventWithAmount(rules.EventGameCreated, int(ColorNone), playerCount))
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Seed returns the seed the game was created with.
func (g *Game) Seed() uint64 { return g.seed }

// RuleSet returns the game's rules.
func (g *Game) RuleSet() RuleSet { return g.ruleSet }

// State returns the current phase.
func (g *Game) State() rules.GameState { return g.states.CurrentState() }

// StateStack returns the phase stack, bottom first.
func (g *Game) StateStack() []rules.GameState { return g.states.Stack() }

// CurrentPlayer returns the colour whose turn it is.
func (g *Game) CurrentPlayer() Color { return g.players[g.current].Color }

// PlayerCount returns the number of seats.
func (g *Game) PlayerCount() int { return len(g.players) }

// Turn returns the turn counter; zero during initial placement.
func (g *Game) Turn() int { return g.turn }

// Dice returns the current turn's roll.
func (g *Game) Dice() Dice { return g.dice }

// Winner returns the winning colour, or ColorNone.
func (g *Game) Winner() Color { return g.winner }

// Log returns the commands applied so far.
func (g *Game) Log() []Command { return append([]Command(nil), g.log...) }

// GetValidActions returns the player actions the current phase accepts.
func (g *Game) GetValidActions() []rules.ActionType { return g.states.GetValidActions() }

// Player returns a copy of a seat's holdings.
func (g *Game) Player(c Color) (*Player, error) {
	p, err := g.player(c)
	if err != nil {
		return nil, err
	}
	return p.clone(), nil
}

// Bank returns a copy of the bank stock.
func (g *Game) Bank() resources.Collection { return g.bank.Clone() }

// Board returns a copy of the board.
func (g *Game) Board() *board.Board { return g.board.Clone() }

// DrainEvents returns and clears the events raised since the last call.
func (g *Game) DrainEvents() []rules.Event {
	events := g.events
	g.events = nil
	return events
}

func (g *Game) emit(evt rules.Event) {
	evt.GameID = g.id
	g.events = append(g.events, evt)
}

func (g *Game) player(c Color) (*Player, error) {
	idx := int(c) - 1
	if idx < 0 || idx >= len(g.players) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlayer, c)
	}
	return g.players[idx], nil
}

// require fails unless the current phase accepts action.
func (g *Game) require(action rules.ActionType) error {
	if g.states.CurrentState() == rules.StateGameOver {
		return fmt.Errorf("%w: won by %s", ErrGameOver, g.winner)
	}
	if !g.states.CanPerform(action) {
		return fmt.Errorf("%w: %s during %s", ErrInvalidAction, action, g.states.CurrentState())
	}
	return nil
}

// requireTurn fails unless c is a seat and it is c's turn.
func (g *Game) requireTurn(c Color) (*Player, error) {
	p, err := g.player(c)
	if err != nil {
		return nil, err
	}
	if g.CurrentPlayer() != c {
		return nil, fmt.Errorf("%w: %s to play, not %s", ErrNotPlayersTurn, g.CurrentPlayer(), c)
	}
	return p, nil
}

func (g *Game) moveState(action rules.ActionType) error {
	from := g.states.CurrentState()
	if err := g.states.MoveState(action); err != nil {
		return err
	}
	if to := g.states.CurrentState(); to != from {
		evt := rules.NewEvent(rules.EventStateChanged, int(g.CurrentPlayer()))
		evt.Data = to.String()
		g.emit(evt)
	}
	return nil
}

// seatForSetupStep returns the seat index placing at a setup step: seats in
// order, then in reverse.
func (g *Game) seatForSetupStep(step int) int {
	n := len(g.players)
	if step < n {
		return step
	}
	return 2*n - 1 - step
}

func (g *Game) advanceSetup() error {
	g.setupStep++
	g.setupAnchor = -1
	if g.setupStep < 2*len(g.players) {
		g.current = g.seatForSetupStep(g.setupStep)
		return nil
	}
	g.current = 0
	g.turn = 1
	return g.moveState(rules.ActionSetupComplete)
}

// inSecondSetupRound reports whether the settlement being placed is a
// player's second.
func (g *Game) inSecondSetupRound() bool {
	return g.setupStep >= len(g.players)
}

// VictoryPoints returns a player's full score, hidden cards included.
func (g *Game) VictoryPoints(c Color) int {
	p, err := g.player(c)
	if err != nil {
		return 0
	}
	return g.visiblePoints(p) + p.Cards[CardVictoryPoint] + p.NewCards[CardVictoryPoint]
}

// visiblePoints is the score other players can see.
func (g *Game) visiblePoints(p *Player) int {
	settlements, towns := g.board.CountBuildings(int(p.Color))
	points := settlements + 2*towns
	if g.longestRoad == p.Color {
		points += 2
	}
	if g.largestArmy == p.Color {
		points += 2
	}
	return points
}

func (g *Game) checkVictory() error {
	if !g.states.CanPerform(rules.ActionVictoryReached) {
		return nil
	}
	c := g.CurrentPlayer()
	if g.VictoryPoints(c) < g.ruleSet.PointsToWin {
		return nil
	}
	g.winner = c
	g.emit(rules.NewEventWithAmount(rules.EventGameWon, int(c), g.VictoryPoints(c)))
	return g.moveState(rules.ActionVictoryReached)
}
