package game

import "fmt"

// Bet is a player's declared wager for one round: the main bet plus any
// side bets. Amounts are integer minor units.
type Bet struct {
	Main     int64
	SideBets map[SideBetKind]int64
}

// Total returns the combined stake across main and side bets.
func (b Bet) Total() int64 {
	total := b.Main
	for _, amount := range b.SideBets {
		total += amount
	}
	return total
}

// ValidateBet checks a bet against the table limits and the player's
// balance. Validation is monotonic in the amount: anything above an
// accepted amount that stays within limits and balance is also accepted.
func ValidateBet(b Bet, balance int64, rules Rules) error {
	if b.Main < rules.MinBet {
		return fmt.Errorf("%w: main bet %d below table minimum %d", ErrBelowTableMinimum, b.Main, rules.MinBet)
	}
	if b.Main > rules.MaxBet {
		return fmt.Errorf("%w: main bet %d above table maximum %d", ErrAboveTableMaximum, b.Main, rules.MaxBet)
	}
	for kind, amount := range b.SideBets {
		if amount < 0 {
			return fmt.Errorf("%w: negative %s side bet", ErrInvalidBet, kind)
		}
	}
	if b.Total() > balance {
		return fmt.Errorf("%w: stake %d exceeds balance %d", ErrInsufficientFunds, b.Total(), balance)
	}
	return nil
}
