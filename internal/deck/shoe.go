package deck

import (
	"errors"
	rand "math/rand/v2"
)

// ErrExhausted is returned by Draw when the shoe has no cards left.
var ErrExhausted = errors.New("shoe exhausted")

// cardsPerDeck is the size of one standard deck.
const cardsPerDeck = 52

// Shoe is a multi-deck dealing shoe. It tracks how many cards have been
// dealt so callers can reshuffle once the configured penetration fraction
// has been reached.
type Shoe struct {
	cards       []Card
	next        int
	numDecks    int
	penetration float64
	rng         *rand.Rand
}

// NewShoe creates a shuffled shoe built from numDecks standard decks.
// penetration is the fraction of the shoe dealt before NeedsShuffle
// reports true (e.g. 0.75 for a six-deck shoe cut at 4.5 decks).
func NewShoe(rng *rand.Rand, numDecks int, penetration float64) *Shoe {
	if numDecks < 1 {
		numDecks = 1
	}
	s := &Shoe{
		cards:       make([]Card, 0, numDecks*cardsPerDeck),
		numDecks:    numDecks,
		penetration: penetration,
		rng:         rng,
	}
	s.rebuild()
	s.Shuffle()
	return s
}

// NewStackedShoe creates a shoe that deals the given cards in order
// without shuffling. Used for deterministic round tests.
func NewStackedShoe(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Shoe{
		cards:       stacked,
		numDecks:    (len(cards) + cardsPerDeck - 1) / cardsPerDeck,
		penetration: 1.0,
	}
}

func (s *Shoe) rebuild() {
	s.cards = s.cards[:0]
	for deckN := 0; deckN < s.numDecks; deckN++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
}

// Shuffle rebuilds the full shoe and shuffles it using Fisher-Yates.
func (s *Shoe) Shuffle() {
	s.rebuild()
	s.next = 0
	for i := len(s.cards) - 1; i > 0; i-- {
		var j int
		if s.rng != nil {
			j = s.rng.IntN(i + 1)
		}
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the next card from the shoe.
func (s *Shoe) Draw() (Card, error) {
	if s.next >= len(s.cards) {
		return Card{}, ErrExhausted
	}
	card := s.cards[s.next]
	s.next++
	return card, nil
}

// NeedsShuffle returns true once the dealt fraction has crossed the
// configured penetration threshold.
func (s *Shoe) NeedsShuffle() bool {
	if len(s.cards) == 0 {
		return true
	}
	return s.Penetration() >= s.penetration
}

// Penetration returns the fraction of the shoe dealt so far.
func (s *Shoe) Penetration() float64 {
	if len(s.cards) == 0 {
		return 1.0
	}
	return float64(s.next) / float64(len(s.cards))
}

// CardsRemaining returns the number of cards left in the shoe.
func (s *Shoe) CardsRemaining() int {
	return len(s.cards) - s.next
}

// DealtCount returns the number of cards dealt since the last shuffle.
func (s *Shoe) DealtCount() int {
	return s.next
}

// TotalCount returns the total number of cards the shoe holds when full.
func (s *Shoe) TotalCount() int {
	return len(s.cards)
}

// NumDecks returns the number of decks the shoe was built from.
func (s *Shoe) NumDecks() int {
	return s.numDecks
}

// DecksRemaining estimates the undealt portion of the shoe in decks.
// Used to normalise a running count into a true count.
func (s *Shoe) DecksRemaining() float64 {
	remaining := float64(s.CardsRemaining()) / float64(cardsPerDeck)
	if remaining < 0.5 {
		// Convention: never divide by less than half a deck.
		return 0.5
	}
	return remaining
}
