package watchers

import (
	"github.com/natak-game/natak-server-go/internal/game/resources"
	"github.com/natak-game/natak-server-go/internal/game/rules"
)

// Watcher accumulates statistics from one game's event stream.
type Watcher interface {
	Key() string
	Watch(event rules.Event)
	ConditionMet() bool
	Reset()
	Copy() Watcher
}

// baseWatcher carries the key and the "has seen something" flag.
type baseWatcher struct {
	key       string
	condition bool
}

func (w *baseWatcher) Key() string        { return w.key }
func (w *baseWatcher) ConditionMet() bool { return w.condition }
func (w *baseWatcher) Reset()             { w.condition = false }

// DiceWatcher tracks the distribution of dice totals.
type DiceWatcher struct {
	baseWatcher
	rolls [13]int
}

// NewDiceWatcher creates a new dice watcher.
func NewDiceWatcher() *DiceWatcher {
	return &DiceWatcher{baseWatcher: baseWatcher{key: "DiceWatcher"}}
}

// Watch implements the Watcher interface.
func (w *DiceWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDiceRolled {
		return
	}
	if event.Amount < 2 || event.Amount > 12 {
		return
	}
	w.rolls[event.Amount]++
	w.condition = true
}

// Reset clears the watcher's state.
func (w *DiceWatcher) Reset() {
	w.baseWatcher.Reset()
	w.rolls = [13]int{}
}

// GetCount returns how often total was rolled.
func (w *DiceWatcher) GetCount(total int) int {
	if total < 0 || total >= len(w.rolls) {
		return 0
	}
	return w.rolls[total]
}

// GetTotal returns the number of rolls seen.
func (w *DiceWatcher) GetTotal() int {
	n := 0
	for _, c := range w.rolls {
		n += c
	}
	return n
}

// Histogram returns the non-zero roll counts keyed by total.
func (w *DiceWatcher) Histogram() map[int]int {
	out := make(map[int]int)
	for total, n := range w.rolls {
		if n > 0 {
			out[total] = n
		}
	}
	return out
}

// Copy creates a copy of this watcher.
func (w *DiceWatcher) Copy() Watcher {
	cpy := *w
	return &cpy
}

// ProductionWatcher tracks resources produced per seat and the cards the
// bank could not pay out.
type ProductionWatcher struct {
	baseWatcher
	produced map[int]resources.Collection
	blocked  int
}

// NewProductionWatcher creates a new production watcher.
func NewProductionWatcher() *ProductionWatcher {
	return &ProductionWatcher{
		baseWatcher: baseWatcher{key: "ProductionWatcher"},
		produced:    make(map[int]resources.Collection),
	}
}

// Watch implements the Watcher interface.
func (w *ProductionWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventResourcesProduced:
		if event.Player == 0 || event.Resources.IsEmpty() {
			return
		}
		if w.produced[event.Player] == nil {
			w.produced[event.Player] = resources.NewCollection()
		}
		w.produced[event.Player].AddAll(event.Resources)
	case rules.EventProductionBlocked:
		w.blocked += event.Amount
	default:
		return
	}
	w.condition = true
}

// Reset clears the watcher's state.
func (w *ProductionWatcher) Reset() {
	w.baseWatcher.Reset()
	w.produced = make(map[int]resources.Collection)
	w.blocked = 0
}

// GetProduced returns what seat has produced so far.
func (w *ProductionWatcher) GetProduced(seat int) resources.Collection {
	return w.produced[seat].Clone()
}

// GetBlocked returns how many cards scarcity withheld.
func (w *ProductionWatcher) GetBlocked() int {
	return w.blocked
}

// Copy creates a copy of this watcher.
func (w *ProductionWatcher) Copy() Watcher {
	cpy := NewProductionWatcher()
	cpy.condition = w.condition
	cpy.blocked = w.blocked
	for seat, c := range w.produced {
		cpy.produced[seat] = c.Clone()
	}
	return cpy
}

// ThiefWatcher tracks steals, losses to the thief and forced discards.
type ThiefWatcher struct {
	baseWatcher
	stolen    map[int]int // thief -> cards taken
	lost      map[int]int // victim -> cards lost
	discarded map[int]int
}

// NewThiefWatcher creates a new thief watcher.
func NewThiefWatcher() *ThiefWatcher {
	return &ThiefWatcher{
		baseWatcher: baseWatcher{key: "ThiefWatcher"},
		stolen:      make(map[int]int),
		lost:        make(map[int]int),
		discarded:   make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *ThiefWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventResourceStolen:
		w.stolen[event.Player] += event.Amount
		w.lost[event.Target] += event.Amount
	case rules.EventResourcesDiscarded:
		w.discarded[event.Player] += event.Resources.Total()
	default:
		return
	}
	w.condition = true
}

// Reset clears the watcher's state.
func (w *ThiefWatcher) Reset() {
	w.baseWatcher.Reset()
	w.stolen = make(map[int]int)
	w.lost = make(map[int]int)
	w.discarded = make(map[int]int)
}

// GetStolen returns the cards seat has taken from others.
func (w *ThiefWatcher) GetStolen(seat int) int { return w.stolen[seat] }

// GetLost returns the cards the thief took from seat.
func (w *ThiefWatcher) GetLost(seat int) int { return w.lost[seat] }

// GetDiscarded returns the cards seat discarded on sevens.
func (w *ThiefWatcher) GetDiscarded(seat int) int { return w.discarded[seat] }

// Copy creates a copy of this watcher.
func (w *ThiefWatcher) Copy() Watcher {
	cpy := NewThiefWatcher()
	cpy.condition = w.condition
	copyCounts(cpy.stolen, w.stolen)
	copyCounts(cpy.lost, w.lost)
	copyCounts(cpy.discarded, w.discarded)
	return cpy
}

// TradeWatcher tracks completed bank and player trades per seat.
type TradeWatcher struct {
	baseWatcher
	bank   map[int]int
	player map[int]int
}

// NewTradeWatcher creates a new trade watcher.
func NewTradeWatcher() *TradeWatcher {
	return &TradeWatcher{
		baseWatcher: baseWatcher{key: "TradeWatcher"},
		bank:        make(map[int]int),
		player:      make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *TradeWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventBankTrade:
		w.bank[event.Player]++
	case rules.EventTradeAccepted:
		// both sides of an accepted offer count it
		w.player[event.Player]++
		if event.Target != 0 {
			w.player[event.Target]++
		}
	default:
		return
	}
	w.condition = true
}

// Reset clears the watcher's state.
func (w *TradeWatcher) Reset() {
	w.baseWatcher.Reset()
	w.bank = make(map[int]int)
	w.player = make(map[int]int)
}

// GetBankTrades returns the bank trades made by seat.
func (w *TradeWatcher) GetBankTrades(seat int) int { return w.bank[seat] }

// GetPlayerTrades returns the accepted offers seat took part in.
func (w *TradeWatcher) GetPlayerTrades(seat int) int { return w.player[seat] }

// Copy creates a copy of this watcher.
func (w *TradeWatcher) Copy() Watcher {
	cpy := NewTradeWatcher()
	cpy.condition = w.condition
	copyCounts(cpy.bank, w.bank)
	copyCounts(cpy.player, w.player)
	return cpy
}

// GrowthCardWatcher tracks growth cards played by each seat.
type GrowthCardWatcher struct {
	baseWatcher
	played map[int]map[string]int
}

// NewGrowthCardWatcher creates a new growth card watcher.
func NewGrowthCardWatcher() *GrowthCardWatcher {
	return &GrowthCardWatcher{
		baseWatcher: baseWatcher{key: "GrowthCardWatcher"},
		played:      make(map[int]map[string]int),
	}
}

// Watch implements the Watcher interface.
func (w *GrowthCardWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventGrowthCardPlayed || event.Data == "" {
		return
	}
	if w.played[event.Player] == nil {
		w.played[event.Player] = make(map[string]int)
	}
	w.played[event.Player][event.Data]++
	w.condition = true
}

// Reset clears the watcher's state.
func (w *GrowthCardWatcher) Reset() {
	w.baseWatcher.Reset()
	w.played = make(map[int]map[string]int)
}

// GetPlayed returns how many cards of kind seat has played.
func (w *GrowthCardWatcher) GetPlayed(seat int, kind string) int {
	return w.played[seat][kind]
}

// Copy creates a copy of this watcher.
func (w *GrowthCardWatcher) Copy() Watcher {
	cpy := NewGrowthCardWatcher()
	cpy.condition = w.condition
	for seat, cards := range w.played {
		cpy.played[seat] = make(map[string]int, len(cards))
		copyCounts(cpy.played[seat], cards)
	}
	return cpy
}

func copyCounts[K comparable](dst, src map[K]int) {
	for k, v := range src {
		dst[k] = v
	}
}
