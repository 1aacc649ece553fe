package deck

import (
	"testing"

	"github.com/lox/blackjack/internal/randutil"
)

func TestNewShoeSize(t *testing.T) {
	t.Parallel()
	for _, decks := range []int{1, 2, 6, 8} {
		s := NewShoe(randutil.New(42), decks, 0.75)
		if s.TotalCount() != decks*52 {
			t.Errorf("%d-deck shoe has %d cards, want %d", decks, s.TotalCount(), decks*52)
		}
		if s.CardsRemaining() != decks*52 {
			t.Errorf("fresh shoe should have all cards remaining, got %d", s.CardsRemaining())
		}
	}
}

func TestShoeContainsFullDecks(t *testing.T) {
	t.Parallel()
	s := NewShoe(randutil.New(1), 2, 0.75)

	counts := make(map[Card]int)
	for {
		c, err := s.Draw()
		if err != nil {
			break
		}
		counts[c]++
	}

	if len(counts) != 52 {
		t.Fatalf("expected 52 distinct cards, got %d", len(counts))
	}
	for card, n := range counts {
		if n != 2 {
			t.Errorf("card %s appears %d times in a 2-deck shoe, want 2", card, n)
		}
	}
}

func TestDrawExhausted(t *testing.T) {
	t.Parallel()
	s := NewStackedShoe(NewCard(Spades, Ace))

	if _, err := s.Draw(); err != nil {
		t.Fatalf("first draw failed: %v", err)
	}
	if _, err := s.Draw(); err != ErrExhausted {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestPenetrationTracking(t *testing.T) {
	t.Parallel()
	s := NewShoe(randutil.New(7), 1, 0.5)

	if s.NeedsShuffle() {
		t.Error("fresh shoe should not need a shuffle")
	}

	// Deal exactly half the shoe.
	for i := 0; i < 26; i++ {
		if _, err := s.Draw(); err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
	}

	if got := s.Penetration(); got != 0.5 {
		t.Errorf("Penetration() = %v, want 0.5", got)
	}
	if !s.NeedsShuffle() {
		t.Error("shoe at cut point should need a shuffle")
	}

	s.Shuffle()
	if s.DealtCount() != 0 {
		t.Errorf("shuffle should reset dealt count, got %d", s.DealtCount())
	}
	if s.NeedsShuffle() {
		t.Error("reshuffled shoe should not need another shuffle")
	}
}

func TestShuffleDeterministic(t *testing.T) {
	t.Parallel()
	a := NewShoe(randutil.New(99), 6, 0.75)
	b := NewShoe(randutil.New(99), 6, 0.75)

	for i := 0; i < 52; i++ {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if ca != cb {
			t.Fatalf("same seed diverged at card %d: %s vs %s", i, ca, cb)
		}
	}
}

func TestDecksRemaining(t *testing.T) {
	t.Parallel()
	s := NewShoe(randutil.New(3), 2, 0.75)
	if got := s.DecksRemaining(); got != 2.0 {
		t.Errorf("DecksRemaining() = %v, want 2.0", got)
	}

	for i := 0; i < 52; i++ {
		s.Draw()
	}
	if got := s.DecksRemaining(); got != 1.0 {
		t.Errorf("DecksRemaining() after one deck = %v, want 1.0", got)
	}

	// Never reports less than half a deck.
	for s.CardsRemaining() > 0 {
		s.Draw()
	}
	if got := s.DecksRemaining(); got != 0.5 {
		t.Errorf("DecksRemaining() empty = %v, want 0.5", got)
	}
}
