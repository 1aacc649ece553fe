package strategy

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// cardsPerDeck mirrors the standard deck size for true-count estimation.
const cardsPerDeck = 52

// Counter keeps a Hi-Lo running count from the engine's event stream.
// Subscribe it to the engine bus; it only ever sees cards the table can
// see, since the hole card is published on reveal, not at the deal.
//
// The counter is not safe for concurrent use; drive it from the same
// goroutine that drives the engine.
type Counter struct {
	numDecks  int
	running   int
	cardsSeen int
}

// NewCounter creates a counter for a shoe of numDecks decks.
func NewCounter(numDecks int) *Counter {
	if numDecks < 1 {
		numDecks = 1
	}
	return &Counter{numDecks: numDecks}
}

// OnEvent implements game.EventSubscriber.
func (c *Counter) OnEvent(ev game.Event) {
	switch e := ev.(type) {
	case game.CardDealtEvent:
		c.Observe(e.Card)
	case game.HoleCardRevealedEvent:
		c.Observe(e.Card)
	case game.ShoeShuffledEvent:
		c.Reset()
	}
}

// Observe counts a single card.
func (c *Counter) Observe(card deck.Card) {
	c.running += hiLoValue(card)
	c.cardsSeen++
}

// Reset clears the count for a fresh shoe.
func (c *Counter) Reset() {
	c.running = 0
	c.cardsSeen = 0
}

// RunningCount returns the raw Hi-Lo count.
func (c *Counter) RunningCount() int {
	return c.running
}

// CardsSeen returns how many cards have been counted since the shuffle.
func (c *Counter) CardsSeen() int {
	return c.cardsSeen
}

// DecksRemaining estimates the undealt decks, floored at half a deck so
// the true count stays bounded near the end of the shoe.
func (c *Counter) DecksRemaining() float64 {
	remaining := float64(c.numDecks*cardsPerDeck-c.cardsSeen) / cardsPerDeck
	if remaining < 0.5 {
		return 0.5
	}
	return remaining
}

// TrueCount returns the running count normalised by decks remaining.
func (c *Counter) TrueCount() float64 {
	return float64(c.running) / c.DecksRemaining()
}

// hiLoValue assigns the Hi-Lo tag: low cards +1, ten-values and aces -1.
func hiLoValue(card deck.Card) int {
	switch {
	case card.Rank >= deck.Two && card.Rank <= deck.Six:
		return 1
	case card.IsTenValue() || card.IsAce():
		return -1
	default:
		return 0
	}
}
