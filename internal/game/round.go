package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// Round is the aggregate root for a single blackjack round: the phase,
// the dealer hand, the seated players' hands and wagers, and eventually
// the settlement report. Exactly one Round is live per engine; it is
// replaced, not reset, when a new round begins.
type Round struct {
	ID    string
	Phase Phase

	rules Rules
	shoe  *deck.Shoe
	bus   EventBus

	players []*Player
	dealer  *Hand

	holeRevealed     bool
	insuranceOffered bool
	activePlayer     int

	sideBetOutcomes map[string][]SideBetOutcome
	result          *SettlementReport
}

func newRound(id string, rules Rules, shoe *deck.Shoe, players []*Player, bus EventBus) *Round {
	return &Round{
		ID:              id,
		Phase:           Betting,
		rules:           rules,
		shoe:            shoe,
		bus:             bus,
		players:         players,
		dealer:          NewHand(0),
		sideBetOutcomes: make(map[string][]SideBetOutcome),
	}
}

func (r *Round) setPhase(p Phase) {
	from := r.Phase
	r.Phase = p
	r.bus.Publish(PhaseChangedEvent{RoundID: r.ID, From: from, To: p, timestamp: time.Now()})
}

// placeBet validates and applies a wager during the betting phase. An
// existing wager is refunded and replaced.
func (r *Round) placeBet(p *Player, bet Bet) error {
	if r.Phase != Betting {
		return fmt.Errorf("%w: cannot bet during %s", ErrWrongPhase, r.Phase)
	}

	// Refund a previous wager before validating against the balance.
	refund := p.CurrentBet.Total()
	if err := ValidateBet(bet, p.Balance+refund, r.rules); err != nil {
		return err
	}

	p.Balance += refund
	p.Balance -= bet.Total()
	p.CurrentBet = bet
	return nil
}

// deal moves the round from Betting to the initial deal: two cards to
// every wagering player and two to the dealer, the second face down.
func (r *Round) deal() error {
	if r.Phase != Betting {
		return fmt.Errorf("%w: cannot deal during %s", ErrWrongPhase, r.Phase)
	}

	active := r.wageringPlayers()
	if len(active) == 0 {
		return fmt.Errorf("%w: no bets placed", ErrInvalidBet)
	}

	// Reshuffle at the cut card before dealing, never mid-hand.
	if r.shoe.NeedsShuffle() {
		r.shoe.Shuffle()
		r.bus.Publish(ShoeShuffledEvent{timestamp: time.Now()})
	}

	r.setPhase(Dealing)

	ids := make([]string, len(active))
	for i, p := range active {
		ids[i] = p.ID
		p.Hands = []*Hand{NewHand(p.CurrentBet.Main)}
		p.ActiveHand = 0
	}
	r.bus.Publish(RoundStartedEvent{RoundID: r.ID, PlayerIDs: ids, timestamp: time.Now()})

	// Two passes, players first then dealer, as at a live table.
	for pass := 0; pass < 2; pass++ {
		for _, p := range active {
			if err := r.dealVisible(p.Hands[0], p.ID, 0); err != nil {
				return r.voidRound(err)
			}
		}
		hidden := pass == 1
		if err := r.dealToDealer(hidden); err != nil {
			return r.voidRound(err)
		}
	}

	// Side bets resolve against the initial deal, independent of the
	// main hand outcome; payouts are credited at settlement.
	for _, p := range active {
		for kind, stake := range p.CurrentBet.SideBets {
			if stake <= 0 {
				continue
			}
			outcome := EvaluateSideBet(kind, stake, p.Hands[0].Cards, r.dealerUpcard(), r.rules)
			r.sideBetOutcomes[p.ID] = append(r.sideBetOutcomes[p.ID], outcome)
		}
	}

	if r.dealerUpcard().IsAce() && r.rules.OfferInsurance {
		r.insuranceOffered = true
		r.setPhase(InsuranceDecision)
		r.bus.Publish(InsuranceOfferedEvent{RoundID: r.ID, timestamp: time.Now()})
		return nil
	}

	return r.resolveAfterDeal()
}

// resolveAfterDeal handles the dealer peek and hands play over to the
// players, or straight to settlement when the dealer holds a natural.
func (r *Round) resolveAfterDeal() error {
	peekable := r.dealerUpcard().IsAce() || r.dealerUpcard().IsTenValue()
	if r.rules.DealerPeeks && peekable && r.dealer.IsBlackjack() {
		r.revealHole()
		r.settle()
		return nil
	}
	return r.startPlayerTurn()
}

func (r *Round) startPlayerTurn() error {
	r.setPhase(PlayerTurn)
	r.activePlayer = 0
	// Natural blackjacks auto-stand; skip past any player whose hands
	// are all finished. With every hand done the dealer plays at once.
	if r.currentActor() == nil {
		return r.dealerTurn()
	}
	return nil
}

// currentActor returns the player whose hand awaits action, advancing
// activePlayer past finished players. Nil when every hand is done.
func (r *Round) currentActor() *Player {
	for r.activePlayer < len(r.players) {
		p := r.players[r.activePlayer]
		if p.InRound() && p.CurrentHand() != nil {
			return p
		}
		r.activePlayer++
	}
	return nil
}

// takeInsurance places an insurance wager of half the player's main bet.
func (r *Round) takeInsurance(p *Player) error {
	if r.Phase != InsuranceDecision {
		return fmt.Errorf("%w: insurance not on offer during %s", ErrWrongPhase, r.Phase)
	}
	if !p.InRound() || p.InsuranceDecided {
		return fmt.Errorf("%w: insurance already decided", ErrIllegalAction)
	}

	stake := p.CurrentBet.Main / 2
	if stake > p.Balance {
		return fmt.Errorf("%w: insurance stake %d exceeds balance %d", ErrInsufficientFunds, stake, p.Balance)
	}

	p.Balance -= stake
	p.Insurance = stake
	p.InsuranceDecided = true
	return r.maybeFinishInsurance()
}

func (r *Round) declineInsurance(p *Player) error {
	if r.Phase != InsuranceDecision {
		return fmt.Errorf("%w: insurance not on offer during %s", ErrWrongPhase, r.Phase)
	}
	if !p.InRound() || p.InsuranceDecided {
		return fmt.Errorf("%w: insurance already decided", ErrIllegalAction)
	}
	p.InsuranceDecided = true
	return r.maybeFinishInsurance()
}

func (r *Round) maybeFinishInsurance() error {
	for _, p := range r.wageringPlayers() {
		if !p.InsuranceDecided {
			return nil
		}
	}
	return r.finishInsurance()
}

// finishInsurance closes the insurance window, treating undecided
// players as declined, and checks the dealer for a natural.
func (r *Round) finishInsurance() error {
	if r.Phase != InsuranceDecision {
		return fmt.Errorf("%w: insurance not on offer during %s", ErrWrongPhase, r.Phase)
	}
	for _, p := range r.wageringPlayers() {
		p.InsuranceDecided = true
	}
	if r.dealer.IsBlackjack() {
		r.revealHole()
		r.settle()
		return nil
	}
	return r.startPlayerTurn()
}

// action applies a player action to their active hand. Illegal actions
// fail without mutating state.
func (r *Round) action(p *Player, act Action) error {
	if r.Phase != PlayerTurn {
		return fmt.Errorf("%w: no actions during %s", ErrWrongPhase, r.Phase)
	}
	actor := r.currentActor()
	if actor == nil {
		return ErrNoActiveHand
	}
	if actor != p {
		return fmt.Errorf("%w: waiting on %s", ErrNotYourTurn, actor.ID)
	}

	hand := p.CurrentHand()
	if hand == nil {
		return ErrNoActiveHand
	}
	if !slices.Contains(hand.LegalActions(r.rules, p.Balance, len(p.Hands)), act) {
		return fmt.Errorf("%w: %s not permitted on %s", ErrIllegalAction, act, hand)
	}

	handIndex := p.ActiveHand

	switch act {
	case Hit:
		if err := r.dealVisible(hand, p.ID, handIndex); err != nil {
			return r.voidRound(err)
		}
		if hand.BestTotal() == 21 {
			hand.Stood = true
		}

	case Stand:
		hand.Stood = true

	case Double:
		p.Balance -= hand.Bet
		hand.Bet *= 2
		hand.Doubled = true
		if err := r.dealVisible(hand, p.ID, handIndex); err != nil {
			return r.voidRound(err)
		}

	case Split:
		if err := r.split(p, hand, handIndex); err != nil {
			return err
		}

	case Surrender:
		hand.Surrendered = true
	}

	r.bus.Publish(PlayerActedEvent{
		RoundID:   r.ID,
		PlayerID:  p.ID,
		HandIndex: handIndex,
		Action:    act,
		timestamp: time.Now(),
	})

	if r.currentActor() == nil {
		return r.dealerTurn()
	}
	return nil
}

// split divides a pair into two hands, matches the wager on the new
// hand, and deals one card to each. Split aces receive their one card
// and stand.
func (r *Round) split(p *Player, hand *Hand, handIndex int) error {
	second := hand.Cards[1]
	aces := second.IsAce()

	hand.Cards = hand.Cards[:1]
	hand.FromSplit = true
	hand.SplitAces = aces

	next := NewHand(hand.Bet)
	next.AddCard(second)
	next.FromSplit = true
	next.SplitAces = aces
	p.Balance -= next.Bet
	p.Hands = slices.Insert(p.Hands, handIndex+1, next)

	if err := r.dealVisible(hand, p.ID, handIndex); err != nil {
		return r.voidRound(err)
	}
	if err := r.dealVisible(next, p.ID, handIndex+1); err != nil {
		return r.voidRound(err)
	}

	if aces {
		// Split aces stand on their one card, except a drawn ace that
		// the rules and hand cap still allow to be resplit.
		for _, h := range []*Hand{hand, next} {
			if r.rules.ResplitAces && h.IsPair() && len(p.Hands) < r.rules.MaxSplitHands {
				continue
			}
			h.Stood = true
		}
	}
	return nil
}

// dealerTurn reveals the hole card and draws by fixed policy: hit under
// 17, and on soft 17 only when the rules say so. The loop is bounded;
// the dealer never splits or doubles.
func (r *Round) dealerTurn() error {
	r.setPhase(DealerTurn)
	r.revealHole()

	if r.anyLiveHand() {
		for {
			t := r.dealer.Totals()
			hits := t.Best() < 17 || (t.Best() == 17 && t.IsSoft() && r.rules.DealerHitsSoft17)
			if !hits {
				break
			}
			if err := r.dealVisible(r.dealer, "dealer", 0); err != nil {
				return r.voidRound(err)
			}
		}
	}

	r.settle()
	return nil
}

// anyLiveHand reports whether any player hand still needs comparing
// against the dealer. Busted, surrendered and natural hands are already
// decided, so the dealer does not draw for them.
func (r *Round) anyLiveHand() bool {
	for _, p := range r.wageringPlayers() {
		for _, h := range p.Hands {
			if !h.IsBust() && !h.Surrendered && !h.IsBlackjack() {
				return true
			}
		}
	}
	return false
}

// settle computes the settlement report exactly once and credits
// winnings. Reaching here a second time is a programming error guarded
// by the memoised result.
func (r *Round) settle() {
	if r.result != nil {
		return
	}
	r.setPhase(Settlement)

	r.result = settleRound(r)
	for _, pr := range r.result.Players {
		for _, p := range r.players {
			if p.ID == pr.PlayerID {
				p.Balance += pr.TotalReturned
				break
			}
		}
	}

	r.bus.Publish(RoundSettledEvent{RoundID: r.ID, Report: r.result, timestamp: time.Now()})
}

// voidRound aborts the round after a shoe fault: the shoe is reshuffled
// and the table returns to betting with wagers intact so the caller can
// re-deal. Stakes added during play (doubles, splits, insurance) are
// refunded; the declared bet stays deducted since it rides again.
func (r *Round) voidRound(cause error) error {
	for _, p := range r.wageringPlayers() {
		refund := p.Insurance
		for _, h := range p.Hands {
			refund += h.Bet
		}
		if len(p.Hands) > 0 {
			refund -= p.CurrentBet.Main
		}
		p.Balance += refund
		p.Hands = nil
		p.ActiveHand = 0
		p.Insurance = 0
		p.InsuranceDecided = false
	}
	r.dealer = NewHand(0)
	r.holeRevealed = false
	r.insuranceOffered = false
	r.sideBetOutcomes = make(map[string][]SideBetOutcome)

	r.shoe.Shuffle()
	r.bus.Publish(ShoeShuffledEvent{timestamp: time.Now()})
	r.setPhase(Betting)

	return fmt.Errorf("%w: %v", ErrShoeExhausted, cause)
}

func (r *Round) dealVisible(h *Hand, to string, handIndex int) error {
	card, err := r.shoe.Draw()
	if err != nil {
		return err
	}
	h.AddCard(card)
	r.bus.Publish(CardDealtEvent{
		RoundID:   r.ID,
		Card:      card,
		To:        to,
		HandIndex: handIndex,
		timestamp: time.Now(),
	})
	return nil
}

func (r *Round) dealToDealer(hidden bool) error {
	card, err := r.shoe.Draw()
	if err != nil {
		return err
	}
	r.dealer.AddCard(card)
	if !hidden {
		r.bus.Publish(CardDealtEvent{
			RoundID:   r.ID,
			Card:      card,
			To:        "dealer",
			timestamp: time.Now(),
		})
	}
	return nil
}

func (r *Round) revealHole() {
	if r.holeRevealed || len(r.dealer.Cards) < 2 {
		return
	}
	r.holeRevealed = true
	r.bus.Publish(HoleCardRevealedEvent{
		RoundID:   r.ID,
		Card:      r.dealer.Cards[1],
		timestamp: time.Now(),
	})
}

func (r *Round) dealerUpcard() deck.Card {
	return r.dealer.Cards[0]
}

func (r *Round) wageringPlayers() []*Player {
	var active []*Player
	for _, p := range r.players {
		if p.InRound() {
			active = append(active, p)
		}
	}
	return active
}
