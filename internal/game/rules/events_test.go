package rules

import (
	"testing"
	"time"

	"github.com/natak-game/natak-server-go/internal/game/resources"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	rolled := 0
	built := 0

	rollHandle := bus.SubscribeTyped(EventDiceRolled, func(e Event) {
		rolled++
	})
	buildHandle := bus.SubscribeTyped(EventRoadBuilt, func(e Event) {
		built++
	})

	bus.Publish(NewEventWithAmount(EventDiceRolled, 1, 8))
	if rolled != 1 || built != 0 {
		t.Fatalf("expected rolled=1 built=0, got rolled=%d built=%d", rolled, built)
	}

	bus.Publish(NewEventWithAmount(EventRoadBuilt, 1, 12))
	if rolled != 1 || built != 1 {
		t.Fatalf("expected rolled=1 built=1, got rolled=%d built=%d", rolled, built)
	}

	bus.Unsubscribe(rollHandle)
	bus.Publish(NewEventWithAmount(EventDiceRolled, 2, 6))
	if rolled != 1 {
		t.Fatalf("expected rolled still 1 after unsubscribe, got %d", rolled)
	}

	bus.Unsubscribe(buildHandle)
	bus.Publish(NewEventWithAmount(EventRoadBuilt, 2, 3))
	if built != 1 {
		t.Fatalf("expected built still 1 after unsubscribe, got %d", built)
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	var seen []EventType
	handle := bus.Subscribe(func(e Event) {
		seen = append(seen, e.Type)
	})

	bus.PublishBatch([]Event{
		NewEvent(EventGameCreated, 0),
		NewEvent(EventTurnEnded, 1),
		NewEvent(EventTradeCancelled, 2),
	})
	if len(seen) != 3 {
		t.Fatalf("expected 3 events, got %d", len(seen))
	}
	if seen[0] != EventGameCreated || seen[2] != EventTradeCancelled {
		t.Fatalf("events delivered out of order: %v", seen)
	}

	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventTurnEnded, 2))
	if len(seen) != 3 {
		t.Fatalf("expected 3 events after unsubscribe, got %d", len(seen))
	}
}

func TestEventBusListenerMayUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	count := 0
	var handle int
	handle = bus.Subscribe(func(e Event) {
		count++
		bus.Unsubscribe(handle)
	})

	bus.Publish(NewEvent(EventTurnEnded, 1))
	bus.Publish(NewEvent(EventTurnEnded, 2))
	if count != 1 {
		t.Fatalf("expected listener to run once, ran %d times", count)
	}
}

func TestEventWithResourcesCopies(t *testing.T) {
	hand := resources.Collection{resources.Ore: 2}
	evt := NewEventWithResources(EventResourcesDiscarded, 3, hand)
	hand.Add(resources.Ore, 1)

	if got := evt.Resources.Get(resources.Ore); got != 2 {
		t.Fatalf("expected event to keep 2 ore, got %d", got)
	}
	if evt.Player != 3 {
		t.Fatalf("expected player 3, got %d", evt.Player)
	}
}

func TestEventTimestamp(t *testing.T) {
	before := time.Now()
	evt := NewEvent(EventGameWon, 1)
	after := time.Now()

	if evt.Timestamp.Before(before) || evt.Timestamp.After(after) {
		t.Fatal("event timestamp should be between before and after")
	}
}
