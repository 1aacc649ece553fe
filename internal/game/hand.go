package game

import (
	"strconv"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Totals reports the hard total (all aces as 1) and, when an ace can be
// promoted to 11 without busting, the soft total (hard + 10).
type Totals struct {
	Hard int
	Soft int // 0 when no usable soft total exists
}

// Best returns the playable total: the soft total when one exists (it
// never exceeds 21 by construction), otherwise the hard total.
func (t Totals) Best() int {
	if t.Soft > 0 {
		return t.Soft
	}
	return t.Hard
}

// IsSoft returns true when the best total counts an ace as 11.
func (t Totals) IsSoft() bool {
	return t.Soft > 0
}

// ComputeTotals computes blackjack totals for a set of cards. Pure and
// deterministic given the cards.
func ComputeTotals(cards []deck.Card) Totals {
	hard := 0
	hasAce := false
	for _, c := range cards {
		if c.IsAce() {
			hasAce = true
			hard++
		} else {
			hard += c.Value()
		}
	}

	t := Totals{Hard: hard}
	if hasAce && hard+10 <= 21 {
		t.Soft = hard + 10
	}
	return t
}

// Hand is a single blackjack hand: the dealt cards plus the wager riding
// on it. Players may own several after splits; the dealer owns exactly one.
type Hand struct {
	Cards []deck.Card
	Bet   int64

	Doubled     bool
	Surrendered bool
	Stood       bool

	// FromSplit marks hands created by splitting; a 21 on such a hand is
	// not a natural blackjack.
	FromSplit bool

	// SplitAces marks hands created by splitting aces, which receive
	// exactly one card and then stand.
	SplitAces bool
}

// NewHand creates an empty hand carrying the given wager.
func NewHand(bet int64) *Hand {
	return &Hand{Cards: make([]deck.Card, 0, 4), Bet: bet}
}

// AddCard deals a card to the hand.
func (h *Hand) AddCard(c deck.Card) {
	h.Cards = append(h.Cards, c)
}

// Totals computes the hand's totals.
func (h *Hand) Totals() Totals {
	return ComputeTotals(h.Cards)
}

// BestTotal returns the playable total of the hand.
func (h *Hand) BestTotal() int {
	return h.Totals().Best()
}

// IsSoft returns true when the hand's best total counts an ace as 11.
func (h *Hand) IsSoft() bool {
	return h.Totals().IsSoft()
}

// IsBlackjack returns true for a two-card 21 on an unsplit hand.
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && !h.FromSplit && h.BestTotal() == 21
}

// IsBust returns true when the hand's best total exceeds 21.
func (h *Hand) IsBust() bool {
	return h.BestTotal() > 21
}

// IsPair returns true for exactly two cards of equal blackjack value.
// A pair of aces counts even though their totals split to 1/11.
func (h *Hand) IsPair() bool {
	if len(h.Cards) != 2 {
		return false
	}
	return h.Cards[0].Value() == h.Cards[1].Value()
}

// Done returns true once no further action can be taken on the hand.
func (h *Hand) Done() bool {
	return h.Stood || h.Doubled || h.Surrendered || h.IsBust() || h.IsBlackjack()
}

// LegalActions returns the actions permitted for this hand given the
// table rules, the owning player's balance, and how many hands the player
// already holds. Empty for finished hands.
func (h *Hand) LegalActions(rules Rules, balance int64, handCount int) []Action {
	if h.Done() {
		return nil
	}

	// A live split-ace hand has exactly one decision: resplit or keep
	// the one-card hand.
	if h.SplitAces {
		actions := []Action{Stand}
		if h.IsPair() && balance >= h.Bet && handCount < rules.MaxSplitHands && rules.ResplitAces {
			actions = append(actions, Split)
		}
		return actions
	}

	actions := []Action{Hit, Stand}

	firstDecision := len(h.Cards) == 2

	if firstDecision && balance >= h.Bet {
		if !h.FromSplit || rules.DoubleAfterSplit {
			actions = append(actions, Double)
		}
	}

	if firstDecision && h.IsPair() && balance >= h.Bet && handCount < rules.MaxSplitHands {
		splittingAces := h.Cards[0].IsAce()
		if !splittingAces || !h.FromSplit || rules.ResplitAces {
			actions = append(actions, Split)
		}
	}

	if firstDecision && !h.FromSplit && rules.LateSurrender {
		actions = append(actions, Surrender)
	}

	return actions
}

// String renders the hand like "A♠ 6♦ (soft 17)".
func (h *Hand) String() string {
	var sb strings.Builder
	for i, c := range h.Cards {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	t := h.Totals()
	switch {
	case h.IsBlackjack():
		sb.WriteString(" (blackjack)")
	case h.IsBust():
		sb.WriteString(" (bust)")
	case t.IsSoft():
		sb.WriteString(" (soft ")
		sb.WriteString(strconv.Itoa(t.Soft))
		sb.WriteByte(')')
	default:
		sb.WriteString(" (")
		sb.WriteString(strconv.Itoa(t.Hard))
		sb.WriteByte(')')
	}
	return sb.String()
}
