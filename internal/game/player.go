package game

// Player is a seated participant. Balance is mutated only by the betting
// and payout code; hands exist only between Deal and round cleanup.
type Player struct {
	ID      string
	Balance int64

	// CurrentBet is the wager declared during the betting phase. It is
	// immutable once the round leaves Betting.
	CurrentBet Bet

	Hands      []*Hand
	ActiveHand int

	// Insurance is the insurance stake, 0 if not taken.
	Insurance        int64
	InsuranceDecided bool
}

// NewPlayer creates a player with a starting balance.
func NewPlayer(id string, balance int64) *Player {
	return &Player{ID: id, Balance: balance}
}

// InRound returns true if the player has a live wager this round.
func (p *Player) InRound() bool {
	return p.CurrentBet.Main > 0
}

// CurrentHand returns the hand awaiting action, or nil when every hand is
// finished. The active index only moves forward and never wraps.
func (p *Player) CurrentHand() *Hand {
	for p.ActiveHand < len(p.Hands) {
		h := p.Hands[p.ActiveHand]
		if !h.Done() {
			return h
		}
		p.ActiveHand++
	}
	return nil
}

// resetForRound clears per-round state, preserving the balance.
func (p *Player) resetForRound() {
	p.CurrentBet = Bet{}
	p.Hands = nil
	p.ActiveHand = 0
	p.Insurance = 0
	p.InsuranceDecided = false
}
