package game

import "github.com/lox/blackjack/internal/deck"

// HandView is a read-only copy of a hand for hosts to render.
type HandView struct {
	Cards       []deck.Card
	Total       int
	Soft        bool
	Blackjack   bool
	Bust        bool
	Bet         int64
	Doubled     bool
	Stood       bool
	Surrendered bool
	FromSplit   bool

	// Actions holds the legal actions when this is the hand awaiting a
	// decision; empty otherwise.
	Actions []Action
}

// PlayerView is a read-only copy of a player's round state.
type PlayerView struct {
	ID               string
	Balance          int64
	Bet              Bet
	Hands            []HandView
	ActiveHand       int
	Insurance        int64
	InsuranceDecided bool
}

// DealerView is the dealer's hand as visible to the table. Before the
// hole card is revealed only the upcard appears and the total covers the
// visible cards alone.
type DealerView struct {
	Cards        []deck.Card
	Total        int
	HoleRevealed bool
	Blackjack    bool
	Bust         bool
}

// Upcard returns the dealer's visible first card, or nil before the deal.
func (d DealerView) Upcard() *deck.Card {
	if len(d.Cards) == 0 {
		return nil
	}
	return &d.Cards[0]
}

// Snapshot is an immutable view of the round, returned from every engine
// operation. Hosts subscribe to snapshots instead of sharing the
// engine's mutable state.
type Snapshot struct {
	RoundID          string
	Phase            Phase
	Dealer           DealerView
	Players          []PlayerView
	InsuranceOffered bool
	ShoePenetration  float64
	CardsRemaining   int
	Result           *SettlementReport
}

// Player returns the view for a player ID, or nil if not seated.
func (s Snapshot) Player(id string) *PlayerView {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// snapshot builds a deep-copied view of the round.
func (r *Round) snapshot() Snapshot {
	snap := Snapshot{
		RoundID:          r.ID,
		Phase:            r.Phase,
		InsuranceOffered: r.insuranceOffered,
		ShoePenetration:  r.shoe.Penetration(),
		CardsRemaining:   r.shoe.CardsRemaining(),
		Result:           r.result,
	}

	dealerCards := r.dealer.Cards
	if !r.holeRevealed && len(dealerCards) > 1 {
		dealerCards = dealerCards[:1]
	}
	visible := &Hand{Cards: dealerCards}
	snap.Dealer = DealerView{
		Cards:        append([]deck.Card(nil), dealerCards...),
		Total:        visible.BestTotal(),
		HoleRevealed: r.holeRevealed,
		Blackjack:    r.holeRevealed && r.dealer.IsBlackjack(),
		Bust:         r.holeRevealed && r.dealer.IsBust(),
	}

	actor := (*Player)(nil)
	if r.Phase == PlayerTurn {
		actor = r.currentActor()
	}

	for _, p := range r.players {
		pv := PlayerView{
			ID:               p.ID,
			Balance:          p.Balance,
			Bet:              copyBet(p.CurrentBet),
			ActiveHand:       p.ActiveHand,
			Insurance:        p.Insurance,
			InsuranceDecided: p.InsuranceDecided,
		}
		for i, h := range p.Hands {
			t := h.Totals()
			hv := HandView{
				Cards:       append([]deck.Card(nil), h.Cards...),
				Total:       t.Best(),
				Soft:        t.IsSoft(),
				Blackjack:   h.IsBlackjack(),
				Bust:        h.IsBust(),
				Bet:         h.Bet,
				Doubled:     h.Doubled,
				Stood:       h.Stood,
				Surrendered: h.Surrendered,
				FromSplit:   h.FromSplit,
			}
			if p == actor && i == p.ActiveHand {
				hv.Actions = h.LegalActions(r.rules, p.Balance, len(p.Hands))
			}
			pv.Hands = append(pv.Hands, hv)
		}
		snap.Players = append(snap.Players, pv)
	}

	return snap
}

func copyBet(b Bet) Bet {
	out := Bet{Main: b.Main}
	if b.SideBets != nil {
		out.SideBets = make(map[SideBetKind]int64, len(b.SideBets))
		for k, v := range b.SideBets {
			out.SideBets[k] = v
		}
	}
	return out
}
