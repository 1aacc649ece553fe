package game

import (
	"errors"
	"testing"
)

func TestValidateBet(t *testing.T) {
	t.Parallel()
	rules := DefaultRules() // min 100, max 50000

	tests := []struct {
		name    string
		bet     Bet
		balance int64
		wantErr error
	}{
		{"at minimum", Bet{Main: 100}, 1000, nil},
		{"at maximum", Bet{Main: 50000}, 50000, nil},
		{"below minimum", Bet{Main: 99}, 1000, ErrBelowTableMinimum},
		{"zero", Bet{Main: 0}, 1000, ErrBelowTableMinimum},
		{"above maximum", Bet{Main: 50001}, 100000, ErrAboveTableMaximum},
		{"exceeds balance", Bet{Main: 2000}, 1000, ErrInsufficientFunds},
		{"side bets count against balance", Bet{Main: 900, SideBets: map[SideBetKind]int64{PerfectPairs: 200}}, 1000, ErrInsufficientFunds},
		{"side bets within balance", Bet{Main: 900, SideBets: map[SideBetKind]int64{PerfectPairs: 100}}, 1000, nil},
		{"negative side bet", Bet{Main: 100, SideBets: map[SideBetKind]int64{PerfectPairs: -1}}, 1000, ErrInvalidBet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateBet(tt.bet, tt.balance, rules)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBet = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Acceptance is monotonic in the main bet: every amount between an
// accepted bet and the binding cap (table max or balance) is accepted.
func TestValidateBetMonotonic(t *testing.T) {
	t.Parallel()
	rules := DefaultRules()
	rules.MinBet = 5
	rules.MaxBet = 200
	balance := int64(150)

	accepted := false
	for main := int64(1); main <= 250; main++ {
		err := ValidateBet(Bet{Main: main}, balance, rules)
		ok := err == nil
		if ok && !accepted {
			if main != rules.MinBet {
				t.Fatalf("first accepted bet = %d, want %d", main, rules.MinBet)
			}
			accepted = true
		}
		if accepted && main <= balance && !ok {
			t.Fatalf("bet %d rejected inside an accepted range: %v", main, err)
		}
		if main > balance && ok {
			t.Fatalf("bet %d above balance accepted", main)
		}
	}
}

func TestPlaceBetReplacesExistingWager(t *testing.T) {
	t.Parallel()
	e := stackedEngine(t, DefaultRules(), "Ts", "9h", "7h", "7d")

	mustBet(t, e, "alice", 6000)
	if got := e.Snapshot().Player("alice").Balance; got != 4000 {
		t.Fatalf("balance = %d, want 4000", got)
	}

	// Rebetting refunds the first wager first, so a second 6000 bet is
	// affordable even though the visible balance is only 4000.
	mustBet(t, e, "alice", 6000)
	mustBet(t, e, "alice", 1000)
	snap := e.Snapshot()
	if got := snap.Player("alice").Balance; got != 9000 {
		t.Errorf("balance = %d, want 9000", got)
	}
	if got := snap.Player("alice").Bet.Main; got != 1000 {
		t.Errorf("declared bet = %d, want 1000", got)
	}

	// But not a bet the full bankroll cannot cover.
	if _, err := e.PlaceBet("alice", Bet{Main: 20000}); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("over-bankroll rebet = %v, want ErrInsufficientFunds", err)
	}
}

func TestBetTotal(t *testing.T) {
	t.Parallel()
	b := Bet{Main: 1000, SideBets: map[SideBetKind]int64{PerfectPairs: 100, TwentyOnePlusThree: 50}}
	if got := b.Total(); got != 1150 {
		t.Errorf("Total = %d, want 1150", got)
	}
	if got := (Bet{Main: 500}).Total(); got != 500 {
		t.Errorf("Total = %d, want 500", got)
	}
}
