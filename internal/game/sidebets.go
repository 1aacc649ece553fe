package game

import (
	"sort"

	"github.com/lox/blackjack/internal/deck"
)

// SideBetKind identifies an ancillary wager evaluated against the
// initial deal, independently of the main hand outcome.
type SideBetKind int

const (
	PerfectPairs SideBetKind = iota
	TwentyOnePlusThree
)

func (k SideBetKind) String() string {
	return [...]string{"perfect_pairs", "21+3"}[k]
}

// ParseSideBetKind parses a side-bet kind name as used by hosts.
func ParseSideBetKind(s string) (SideBetKind, bool) {
	switch s {
	case "perfect_pairs":
		return PerfectPairs, true
	case "21+3":
		return TwentyOnePlusThree, true
	default:
		return 0, false
	}
}

// SideBetOutcome is the result of a single side bet. Multiplier 0 means
// the wager is forfeited; otherwise Payout returns the stake plus
// stake * Multiplier in winnings.
type SideBetOutcome struct {
	Kind       SideBetKind
	Stake      int64
	Label      string
	Multiplier int64
	Payout     int64
}

// Won returns true if the wager matched a paying pattern.
func (o SideBetOutcome) Won() bool {
	return o.Multiplier > 0
}

// EvaluateSideBet resolves one side bet against the player's first two
// cards and the dealer upcard.
func EvaluateSideBet(kind SideBetKind, stake int64, playerCards []deck.Card, dealerUp deck.Card, rules Rules) SideBetOutcome {
	outcome := SideBetOutcome{Kind: kind, Stake: stake, Label: "no match"}

	switch kind {
	case PerfectPairs:
		outcome.Label, outcome.Multiplier = evalPerfectPairs(playerCards, rules.PerfectPairs)
	case TwentyOnePlusThree:
		outcome.Label, outcome.Multiplier = evalTwentyOnePlusThree(playerCards, dealerUp, rules.TwentyOnePlusThree)
	}

	if outcome.Multiplier > 0 {
		outcome.Payout = stake + stake*outcome.Multiplier
	}
	return outcome
}

// evalPerfectPairs requires two cards of the same rank. Tiers: same suit
// beats same color beats mixed.
func evalPerfectPairs(cards []deck.Card, table PerfectPairsTable) (string, int64) {
	if len(cards) != 2 || cards[0].Rank != cards[1].Rank {
		return "no pair", 0
	}
	switch {
	case cards[0].Suit == cards[1].Suit:
		return "perfect pair", table.Perfect
	case cards[0].IsRed() == cards[1].IsRed():
		return "colored pair", table.Colored
	default:
		return "mixed pair", table.Mixed
	}
}

// evalTwentyOnePlusThree matches three-card poker patterns over the
// player's two cards plus the dealer upcard.
func evalTwentyOnePlusThree(cards []deck.Card, dealerUp deck.Card, table TwentyOnePlusThreeTable) (string, int64) {
	if len(cards) != 2 {
		return "no match", 0
	}
	three := []deck.Card{cards[0], cards[1], dealerUp}

	trips := three[0].Rank == three[1].Rank && three[1].Rank == three[2].Rank
	flush := three[0].Suit == three[1].Suit && three[1].Suit == three[2].Suit
	straight := isThreeCardStraight(three)

	switch {
	case trips && flush:
		return "suited trips", table.SuitedTrips
	case straight && flush:
		return "straight flush", table.StraightFlush
	case trips:
		return "three of a kind", table.ThreeOfAKind
	case straight:
		return "straight", table.Straight
	case flush:
		return "flush", table.Flush
	default:
		return "no match", 0
	}
}

// isThreeCardStraight checks for three consecutive ranks; the ace plays
// high (Q-K-A) or low (A-2-3).
func isThreeCardStraight(cards []deck.Card) bool {
	ranks := []int{int(cards[0].Rank), int(cards[1].Rank), int(cards[2].Rank)}
	sort.Ints(ranks)

	if ranks[0]+1 == ranks[1] && ranks[1]+1 == ranks[2] {
		return true
	}
	// Ace low: A-2-3 sorts as 2, 3, 14.
	return ranks[0] == int(deck.Two) && ranks[1] == int(deck.Three) && ranks[2] == int(deck.Ace)
}
