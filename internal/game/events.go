package game

import (
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for engine domain events
const (
	EventTypeRoundStarted     EventType = "round_started"
	EventTypeCardDealt        EventType = "card_dealt"
	EventTypeHoleCardRevealed EventType = "hole_card_revealed"
	EventTypePhaseChanged     EventType = "phase_changed"
	EventTypePlayerActed      EventType = "player_acted"
	EventTypeInsuranceOffered EventType = "insurance_offered"
	EventTypeShoeShuffled     EventType = "shoe_shuffled"
	EventTypeRoundSettled     EventType = "round_settled"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents anything that occurs during a blackjack round
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartedEvent is published when cards start coming out of the shoe
type RoundStartedEvent struct {
	RoundID   string
	PlayerIDs []string
	timestamp time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// CardDealtEvent is published for every face-up card leaving the shoe.
// The dealer hole card is not announced until HoleCardRevealedEvent, so
// card counters subscribed to the bus only ever see visible cards.
type CardDealtEvent struct {
	RoundID   string
	Card      deck.Card
	To        string // player ID, or "dealer"
	HandIndex int
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// HoleCardRevealedEvent is published when the dealer turns the hole card
type HoleCardRevealedEvent struct {
	RoundID   string
	Card      deck.Card
	timestamp time.Time
}

func (e HoleCardRevealedEvent) EventType() EventType { return EventTypeHoleCardRevealed }
func (e HoleCardRevealedEvent) Timestamp() time.Time { return e.timestamp }

// PhaseChangedEvent is published on every phase transition
type PhaseChangedEvent struct {
	RoundID   string
	From      Phase
	To        Phase
	timestamp time.Time
}

func (e PhaseChangedEvent) EventType() EventType { return EventTypePhaseChanged }
func (e PhaseChangedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActedEvent is published when a player action is applied
type PlayerActedEvent struct {
	RoundID   string
	PlayerID  string
	HandIndex int
	Action    Action
	timestamp time.Time
}

func (e PlayerActedEvent) EventType() EventType { return EventTypePlayerActed }
func (e PlayerActedEvent) Timestamp() time.Time { return e.timestamp }

// InsuranceOfferedEvent is published when the dealer shows an ace and the
// table offers insurance
type InsuranceOfferedEvent struct {
	RoundID   string
	timestamp time.Time
}

func (e InsuranceOfferedEvent) EventType() EventType { return EventTypeInsuranceOffered }
func (e InsuranceOfferedEvent) Timestamp() time.Time { return e.timestamp }

// ShoeShuffledEvent is published whenever the shoe is rebuilt, either at
// the penetration cut or after a voided deal
type ShoeShuffledEvent struct {
	timestamp time.Time
}

func (e ShoeShuffledEvent) EventType() EventType { return EventTypeShoeShuffled }
func (e ShoeShuffledEvent) Timestamp() time.Time { return e.timestamp }

// RoundSettledEvent carries the final settlement report for a round
type RoundSettledEvent struct {
	RoundID   string
	Report    *SettlementReport
	timestamp time.Time
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }
func (e RoundSettledEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to engine events
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory, synchronous event bus
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{subscribers: make([]EventSubscriber, 0)}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
