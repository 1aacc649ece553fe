package game

import "fmt"

// Ratio is an exact payout ratio expressed as a fraction, e.g. 3:2 for a
// natural blackjack. Applying it truncates toward zero so that payout
// arithmetic stays in integer minor units.
type Ratio struct {
	Num int64
	Den int64
}

// Of returns amount scaled by the ratio, truncated toward zero.
func (r Ratio) Of(amount int64) int64 {
	if r.Den == 0 {
		return 0
	}
	return amount * r.Num / r.Den
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

// ParseRatio parses "3:2" style payout ratios as used in config files.
func ParseRatio(s string) (Ratio, error) {
	var r Ratio
	if _, err := fmt.Sscanf(s, "%d:%d", &r.Num, &r.Den); err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	if r.Num <= 0 || r.Den <= 0 {
		return Ratio{}, fmt.Errorf("invalid ratio %q: both sides must be positive", s)
	}
	return r, nil
}

// PerfectPairsTable holds the payout multipliers for the Perfect Pairs
// side bet. A winning wager returns stake * (multiplier + 1).
type PerfectPairsTable struct {
	Mixed   int64 `hcl:"mixed,optional"`
	Colored int64 `hcl:"colored,optional"`
	Perfect int64 `hcl:"perfect,optional"`
}

// TwentyOnePlusThreeTable holds the payout multipliers for the 21+3 side
// bet, evaluated over the player's first two cards plus the dealer upcard.
type TwentyOnePlusThreeTable struct {
	Flush         int64 `hcl:"flush,optional"`
	Straight      int64 `hcl:"straight,optional"`
	ThreeOfAKind  int64 `hcl:"three_of_a_kind,optional"`
	StraightFlush int64 `hcl:"straight_flush,optional"`
	SuitedTrips   int64 `hcl:"suited_trips,optional"`
}

// Rules is the immutable table ruleset supplied at engine construction.
// It is never mutated mid-round; changing rules requires a new engine so
// previously computed legal-action sets stay valid.
type Rules struct {
	NumDecks         int     `hcl:"num_decks,optional"`
	Penetration      float64 `hcl:"penetration,optional"`
	DealerHitsSoft17 bool    `hcl:"dealer_hits_soft_17,optional"`
	DealerPeeks      bool    `hcl:"dealer_peeks,optional"`
	DoubleAfterSplit bool    `hcl:"double_after_split,optional"`
	ResplitAces      bool    `hcl:"resplit_aces,optional"`
	LateSurrender    bool    `hcl:"late_surrender,optional"`
	OfferInsurance   bool    `hcl:"offer_insurance,optional"`
	MaxSplitHands    int     `hcl:"max_split_hands,optional"`
	MinBet           int64   `hcl:"min_bet,optional"`
	MaxBet           int64   `hcl:"max_bet,optional"`

	BlackjackPays Ratio
	InsurancePays Ratio

	PerfectPairs       PerfectPairsTable
	TwentyOnePlusThree TwentyOnePlusThreeTable
}

// DefaultRules returns a conventional six-deck Vegas-strip ruleset.
func DefaultRules() Rules {
	return Rules{
		NumDecks:         6,
		Penetration:      0.75,
		DealerHitsSoft17: false,
		DealerPeeks:      true,
		DoubleAfterSplit: true,
		ResplitAces:      false,
		LateSurrender:    true,
		OfferInsurance:   true,
		MaxSplitHands:    4,
		MinBet:           100,  // minor units: $1.00
		MaxBet:           50000,
		BlackjackPays:    Ratio{3, 2},
		InsurancePays:    Ratio{2, 1},
		PerfectPairs: PerfectPairsTable{
			Mixed:   6,
			Colored: 12,
			Perfect: 25,
		},
		TwentyOnePlusThree: TwentyOnePlusThreeTable{
			Flush:         5,
			Straight:      10,
			ThreeOfAKind:  30,
			StraightFlush: 40,
			SuitedTrips:   100,
		},
	}
}

// Validate validates the ruleset.
func (r Rules) Validate() error {
	if r.NumDecks < 1 || r.NumDecks > 8 {
		return fmt.Errorf("num_decks must be between 1 and 8, got %d", r.NumDecks)
	}
	if r.Penetration <= 0 || r.Penetration > 1 {
		return fmt.Errorf("penetration must be in (0, 1], got %v", r.Penetration)
	}
	if r.MinBet <= 0 {
		return fmt.Errorf("min_bet must be positive, got %d", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("max_bet %d must be at least min_bet %d", r.MaxBet, r.MinBet)
	}
	if r.MaxSplitHands < 1 {
		return fmt.Errorf("max_split_hands must be at least 1, got %d", r.MaxSplitHands)
	}
	if r.BlackjackPays.Den <= 0 || r.BlackjackPays.Num <= 0 {
		return fmt.Errorf("blackjack payout ratio must be positive, got %s", r.BlackjackPays)
	}
	if r.InsurancePays.Den <= 0 || r.InsurancePays.Num <= 0 {
		return fmt.Errorf("insurance payout ratio must be positive, got %s", r.InsurancePays)
	}
	return nil
}
