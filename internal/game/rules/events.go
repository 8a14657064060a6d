package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Lifecycle events
	EventGameStarted EventType = "GAME_STARTED"
	EventPlayerLeft  EventType = "PLAYER_LEFT"
	EventGameOver    EventType = "GAME_OVER"
	EventGameFrozen  EventType = "GAME_FROZEN"

	// Turn events
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventTurnAdvanced EventType = "TURN_ADVANCED"

	// Card events
	EventCardsDrawn     EventType = "CARDS_DRAWN"
	EventCardsDiscarded EventType = "CARDS_DISCARDED"
	EventDeckReshuffled EventType = "DECK_RESHUFFLED"
	EventMoneyBanked    EventType = "MONEY_BANKED"
	EventPropertyPlaced EventType = "PROPERTY_PLACED"
	EventBuildingPlaced EventType = "BUILDING_PLACED"
	EventActionPlayed   EventType = "ACTION_PLAYED"

	// Resolution events
	EventRentDemanded    EventType = "RENT_DEMANDED"
	EventDebtDemanded    EventType = "DEBT_DEMANDED"
	EventJustSayNoPlayed EventType = "JUST_SAY_NO_PLAYED"
	EventEffectApplied   EventType = "EFFECT_APPLIED"
	EventEffectCancelled EventType = "EFFECT_CANCELLED"
	EventPaymentMade     EventType = "PAYMENT_MADE"
	EventSetStolen       EventType = "SET_STOLEN"
	EventPropertySwapped EventType = "PROPERTY_SWAPPED"
)

// Event is a single observable state change inside a game.
type Event struct {
	Type        EventType         `json:"type"`
	ID          string            `json:"id"`
	PlayerID    string            `json:"player_id"`           // acting player
	TargetID    string            `json:"target_id,omitempty"` // target player, if any
	Amount      int               `json:"amount,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(eventType EventType, playerID, targetID string) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		TargetID:  targetID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// EventBus provides a synchronous publish/subscribe implementation.
type EventBus struct {
	mu         sync.RWMutex
	listeners  map[int]Listener
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[int]Listener),
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

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
}

// Publish delivers the event synchronously to every listener.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	listeners := make([]Listener, 0, len(bus.listeners))
	for _, l := range bus.listeners {
		listeners = append(listeners, l)
	}
	bus.mu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}
