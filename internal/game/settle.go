package game

import "github.com/lox/blackjack/internal/deck"

// Outcome classifies how a hand settled against the dealer.
type Outcome int

const (
	OutcomeBlackjack Outcome = iota
	OutcomeWin
	OutcomePush
	OutcomeLose
	OutcomeBust
	OutcomeSurrender
)

func (o Outcome) String() string {
	return [...]string{"blackjack", "win", "push", "lose", "bust", "surrender"}[o]
}

// HandSettlement records the outcome of one player hand. Payout is the
// total amount returned to the player (stake included); Profit is the
// net change against the stake.
type HandSettlement struct {
	HandIndex int
	Cards     []deck.Card
	Total     int
	Outcome   Outcome
	Bet       int64
	Payout    int64
	Profit    int64
}

// InsuranceSettlement records an insurance wager's resolution.
type InsuranceSettlement struct {
	Stake  int64
	Won    bool
	Payout int64
}

// PlayerSettlement aggregates a player's results for the round.
type PlayerSettlement struct {
	PlayerID      string
	Hands         []HandSettlement
	Insurance     *InsuranceSettlement
	SideBets      []SideBetOutcome
	TotalStaked   int64
	TotalReturned int64
	Net           int64
}

// SettlementReport is the immutable result of a settled round.
type SettlementReport struct {
	RoundID         string
	DealerCards     []deck.Card
	DealerTotal     int
	DealerBlackjack bool
	DealerBust      bool
	Players         []PlayerSettlement
}

// settleRound computes the settlement report for a terminal round. It is
// a pure function of the round state: running it twice over the same
// state yields identical reports.
func settleRound(r *Round) *SettlementReport {
	report := &SettlementReport{
		RoundID:         r.ID,
		DealerCards:     append([]deck.Card(nil), r.dealer.Cards...),
		DealerTotal:     r.dealer.BestTotal(),
		DealerBlackjack: r.dealer.IsBlackjack(),
		DealerBust:      r.dealer.IsBust(),
	}

	for _, p := range r.wageringPlayers() {
		ps := PlayerSettlement{PlayerID: p.ID}

		// Insurance resolves first and independently of the hand
		// comparison: it is a pure bet on the dealer's natural.
		if p.Insurance > 0 {
			ins := &InsuranceSettlement{Stake: p.Insurance}
			if report.DealerBlackjack {
				ins.Won = true
				ins.Payout = p.Insurance + r.rules.InsurancePays.Of(p.Insurance)
			}
			ps.Insurance = ins
			ps.TotalStaked += ins.Stake
			ps.TotalReturned += ins.Payout
		}

		for i, h := range p.Hands {
			outcome, payout := settleHand(h, r.dealer, r.rules)
			ps.Hands = append(ps.Hands, HandSettlement{
				HandIndex: i,
				Cards:     append([]deck.Card(nil), h.Cards...),
				Total:     h.BestTotal(),
				Outcome:   outcome,
				Bet:       h.Bet,
				Payout:    payout,
				Profit:    payout - h.Bet,
			})
			ps.TotalStaked += h.Bet
			ps.TotalReturned += payout
		}

		for _, sb := range r.sideBetOutcomes[p.ID] {
			ps.SideBets = append(ps.SideBets, sb)
			ps.TotalStaked += sb.Stake
			ps.TotalReturned += sb.Payout
		}

		ps.Net = ps.TotalReturned - ps.TotalStaked
		report.Players = append(report.Players, ps)
	}

	return report
}

// settleHand compares one player hand against the dealer, applying the
// payout rules in fixed order. Returns the outcome and the total amount
// returned to the player.
func settleHand(h *Hand, dealer *Hand, rules Rules) (Outcome, int64) {
	// Surrendered hands settled when the player forfeited: half the
	// stake comes back, truncated toward zero on odd amounts.
	if h.Surrendered {
		return OutcomeSurrender, h.Bet / 2
	}

	if h.IsBust() {
		return OutcomeBust, 0
	}

	if h.IsBlackjack() && !dealer.IsBlackjack() {
		return OutcomeBlackjack, h.Bet + rules.BlackjackPays.Of(h.Bet)
	}

	// A dealer natural beats everything except a player natural, which
	// pushes. Reachable without a peek rule, or from split 21s.
	if dealer.IsBlackjack() {
		if h.IsBlackjack() {
			return OutcomePush, h.Bet
		}
		return OutcomeLose, 0
	}

	if dealer.IsBust() {
		return OutcomeWin, h.Bet * 2
	}

	playerTotal, dealerTotal := h.BestTotal(), dealer.BestTotal()
	switch {
	case playerTotal > dealerTotal:
		return OutcomeWin, h.Bet * 2
	case playerTotal == dealerTotal:
		return OutcomePush, h.Bet
	default:
		return OutcomeLose, 0
	}
}
