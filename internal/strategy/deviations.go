package strategy

import "github.com/lox/blackjack/internal/game"

// HandKind selects which basic-strategy table a hand falls under.
type HandKind int

const (
	HardHand HandKind = iota
	SoftHand
	PairHand
)

func (k HandKind) String() string {
	return [...]string{"hard", "soft", "pair"}[k]
}

// Deviation is a count-indexed departure from basic strategy. It fires
// when the hand matches and the true count is at or above the index.
// The table is plain data so hosts can supply their own counting system's
// indices.
type Deviation struct {
	Kind     HandKind
	Total    int
	DealerUp int
	AtOrOver float64
	Action   game.Action
	Name     string
}

func (d Deviation) matches(kind HandKind, total, upValue int, trueCount float64) bool {
	return d.Kind == kind && d.Total == total && d.DealerUp == upValue && trueCount >= d.AtOrOver
}

// InsuranceIndex is the true count at or above which taking insurance
// becomes profitable under Hi-Lo.
const InsuranceIndex = 3.0

// DefaultDeviations returns a Hi-Lo index subset drawn from the
// Illustrious 18. Doubling deviations fall back to their basic-strategy
// action when doubling is unavailable.
func DefaultDeviations() []Deviation {
	return []Deviation{
		{HardHand, 16, 10, 0, game.Stand, "16 vs T"},
		{HardHand, 15, 10, 4, game.Stand, "15 vs T"},
		{HardHand, 12, 2, 3, game.Stand, "12 vs 2"},
		{HardHand, 12, 3, 2, game.Stand, "12 vs 3"},
		{HardHand, 11, 11, 1, game.Double, "11 vs A"},
		{HardHand, 10, 10, 4, game.Double, "10 vs T"},
		{HardHand, 10, 11, 4, game.Double, "10 vs A"},
		{HardHand, 9, 2, 1, game.Double, "9 vs 2"},
		{HardHand, 9, 7, 3, game.Double, "9 vs 7"},
		{PairHand, 10, 5, 5, game.Split, "T-T vs 5"},
		{PairHand, 10, 6, 4, game.Split, "T-T vs 6"},
	}
}
