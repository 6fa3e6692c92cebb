package watchers

import (
	"sync"

	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// Stats is a point-in-time summary of one game's watchers.
type Stats struct {
	GameID       string                       `json:"game_id"`
	Rolls        map[int]int                  `json:"rolls"`
	Produced     map[int]resources.Collection `json:"produced"`
	Blocked      int                          `json:"blocked"`
	Stolen       map[int]int                  `json:"stolen"`
	Lost         map[int]int                  `json:"lost"`
	Discarded    map[int]int                  `json:"discarded"`
	BankTrades   map[int]int                  `json:"bank_trades"`
	PlayerTrades map[int]int                  `json:"player_trades"`
	CardsPlayed  map[int]map[string]int       `json:"cards_played"`
}

// gameWatchers is the fixed watcher set kept for each game.
type gameWatchers struct {
	dice       *DiceWatcher
	production *ProductionWatcher
	thief      *ThiefWatcher
	trade      *TradeWatcher
	cards      *GrowthCardWatcher
}

func newGameWatchers() *gameWatchers {
	return &gameWatchers{
		dice:       NewDiceWatcher(),
		production: NewProductionWatcher(),
		thief:      NewThiefWatcher(),
		trade:      NewTradeWatcher(),
		cards:      NewGrowthCardWatcher(),
	}
}

func (gw *gameWatchers) all() []Watcher {
	return []Watcher{gw.dice, gw.production, gw.thief, gw.trade, gw.cards}
}

// Tracker feeds every published event to the watchers of its game.
type Tracker struct {
	mu     sync.Mutex
	games  map[string]*gameWatchers
	bus    *rules.EventBus
	handle int
}

// NewTracker subscribes a tracker to bus.
func NewTracker(bus *rules.EventBus) *Tracker {
	t := &Tracker{
		games: make(map[string]*gameWatchers),
		bus:   bus,
	}
	t.handle = bus.Subscribe(t.watch)
	return t
}

func (t *Tracker) watch(event rules.Event) {
	if event.GameID == "" {
		return
	}
	if event.Type == rules.EventGameClosed {
		t.Forget(event.GameID)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	gw, ok := t.games[event.GameID]
	if !ok {
		gw = newGameWatchers()
		t.games[event.GameID] = gw
	}
	// a loaded game's history is unknown, so counting restarts
	if event.Type == rules.EventGameLoaded {
		for _, w := range gw.all() {
			w.Reset()
		}
		return
	}
	for _, w := range gw.all() {
		w.Watch(event)
	}
}

// Stats summarises gameID. A game the tracker has not seen yields empty
// statistics.
func (t *Tracker) Stats(gameID string) *Stats {
	t.mu.Lock()
	gw, ok := t.games[gameID]
	if !ok {
		gw = newGameWatchers()
	} else {
		gw = &gameWatchers{
			dice:       gw.dice.Copy().(*DiceWatcher),
			production: gw.production.Copy().(*ProductionWatcher),
			thief:      gw.thief.Copy().(*ThiefWatcher),
			trade:      gw.trade.Copy().(*TradeWatcher),
			cards:      gw.cards.Copy().(*GrowthCardWatcher),
		}
	}
	t.mu.Unlock()

	produced := make(map[int]resources.Collection, len(gw.production.produced))
	for seat := range gw.production.produced {
		produced[seat] = gw.production.GetProduced(seat)
	}
	return &Stats{
		GameID:       gameID,
		Rolls:        gw.dice.Histogram(),
		Produced:     produced,
		Blocked:      gw.production.GetBlocked(),
		Stolen:       gw.thief.stolen,
		Lost:         gw.thief.lost,
		Discarded:    gw.thief.discarded,
		BankTrades:   gw.trade.bank,
		PlayerTrades: gw.trade.player,
		CardsPlayed:  gw.cards.played,
	}
}

// Forget drops a game's statistics.
func (t *Tracker) Forget(gameID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.games, gameID)
}

// Close detaches the tracker from its bus.
func (t *Tracker) Close() {
	t.bus.Unsubscribe(t.handle)
}
