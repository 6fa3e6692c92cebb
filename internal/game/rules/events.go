package rules

import (
	"sort"
	"sync"
	"time"

	"github.com/natak-game/natak-server-go/internal/game/resources"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Lifecycle events
	EventGameCreated  EventType = "GAME_CREATED"
	EventGameLoaded   EventType = "GAME_LOADED"
	EventGameSaved    EventType = "GAME_SAVED"
	EventGameClosed   EventType = "GAME_CLOSED"
	EventStateChanged EventType = "STATE_CHANGED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventGameWon      EventType = "GAME_WON"

	// Board events
	EventSettlementBuilt EventType = "SETTLEMENT_BUILT"
	EventRoadBuilt       EventType = "ROAD_BUILT"
	EventTownBuilt       EventType = "TOWN_BUILT"
	EventThiefMoved      EventType = "THIEF_MOVED"

	// Resource events
	EventDiceRolled         EventType = "DICE_ROLLED"
	EventResourcesProduced  EventType = "RESOURCES_PRODUCED"
	EventProductionBlocked  EventType = "PRODUCTION_BLOCKED"
	EventResourcesDiscarded EventType = "RESOURCES_DISCARDED"
	EventResourceStolen     EventType = "RESOURCE_STOLEN"

	// Growth card events
	EventGrowthCardBought EventType = "GROWTH_CARD_BOUGHT"
	EventGrowthCardPlayed EventType = "GROWTH_CARD_PLAYED"

	// Trade events
	EventBankTrade      EventType = "BANK_TRADE"
	EventTradeOffered   EventType = "TRADE_OFFERED"
	EventTradeAccepted  EventType = "TRADE_ACCEPTED"
	EventTradeRejected  EventType = "TRADE_REJECTED"
	EventTradeCancelled EventType = "TRADE_CANCELLED"
	EventEmbargoAdded   EventType = "EMBARGO_ADDED"
	EventEmbargoRemoved EventType = "EMBARGO_REMOVED"

	// Bonus events
	EventLongestRoadChanged EventType = "LONGEST_ROAD_CHANGED"
	EventLargestArmyChanged EventType = "LARGEST_ARMY_CHANGED"
)

// Event represents a state change that other subsystems may react to.
// Player and Target are seat colours; zero means none.
type Event struct {
	Type      EventType            `json:"type"`
	ID        string               `json:"id,omitempty"`
	GameID    string               `json:"game_id,omitempty"`
	Player    int                  `json:"player,omitempty"`
	Target    int                  `json:"target,omitempty"`
	Amount    int                  `json:"amount,omitempty"`
	Resources resources.Collection `json:"resources,omitempty"`
	Data      string               `json:"data,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by handle, typed or not.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously, in
// subscription order. Listeners run outside the bus lock and may unsubscribe.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	handles := make([]int, 0, len(bus.listeners))
	for h := range bus.listeners {
		handles = append(handles, h)
	}
	sort.Ints(handles)
	callbacks := make([]func(Event), 0, len(handles)+len(bus.typedListeners[event.Type]))
	for _, h := range handles {
		callbacks = append(callbacks, bus.listeners[h])
	}
	for _, l := range bus.typedListeners[event.Type] {
		callbacks = append(callbacks, l.Callback)
	}
	bus.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

// PublishBatch publishes multiple events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates a new event for a player.
func NewEvent(eventType EventType, player int) Event {
	return Event{
		Type:      eventType,
		Player:    player,
		Timestamp: time.Now(),
	}
}

// NewEventWithAmount creates a new event carrying a numeric value.
func NewEventWithAmount(eventType EventType, player, amount int) Event {
	evt := NewEvent(eventType, player)
	evt.Amount = amount
	return evt
}

// NewEventWithResources creates a new event carrying a resource multiset.
func NewEventWithResources(eventType EventType, player int, res resources.Collection) Event {
	evt := NewEvent(eventType, player)
	evt.Resources = res.Clone()
	return evt
}
