// Package strategy recommends blackjack actions from basic-strategy
// tables plus optional Hi-Lo count deviations. It is a read-only
// consumer of engine state: advisors never mutate a round, and they
// return no recommendation rather than an error when the round has not
// progressed far enough to advise on.
package strategy

import (
	"fmt"
	"slices"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Advice is a recommended action with its reasoning. Confidence drops
// below 1 when the table's preferred action was unavailable and a
// fallback was substituted.
type Advice struct {
	Action     game.Action
	Rationale  string
	Confidence float64
	Deviation  bool
}

// Advisor recommends actions for hands in play. Zero-value deviations
// mean straight basic strategy.
type Advisor struct {
	rules      game.Rules
	deviations []Deviation
}

// NewAdvisor creates an advisor for a ruleset. Pass DefaultDeviations()
// to enable count-indexed plays, or nil for pure basic strategy.
func NewAdvisor(rules game.Rules, deviations []Deviation) *Advisor {
	return &Advisor{rules: rules, deviations: deviations}
}

// Recommend advises on a hand against the dealer upcard. legal is the
// hand's current legal-action set, as found in the engine snapshot; the
// advisor only ever recommends from it. Returns false when there is not
// enough information to advise: fewer than two cards, no upcard visible,
// or no legal actions (the hand is finished or it is not this hand's
// turn).
func (a *Advisor) Recommend(cards []deck.Card, dealerUp *deck.Card, legal []game.Action, trueCount float64) (Advice, bool) {
	if len(cards) < 2 || dealerUp == nil || len(legal) == 0 {
		return Advice{}, false
	}

	kind, total := classify(cards)
	upValue := dealerUp.Value()

	advice, ok := a.baseline(kind, total, upValue, legal)
	if !ok {
		return Advice{}, false
	}

	for _, dev := range a.deviations {
		if !dev.matches(kind, total, upValue, trueCount) {
			continue
		}
		if !slices.Contains(legal, dev.Action) {
			continue
		}
		return Advice{
			Action:     dev.Action,
			Rationale:  fmt.Sprintf("count play %s at true count %+.1f", dev.Name, trueCount),
			Confidence: 1,
			Deviation:  true,
		}, true
	}

	return advice, true
}

// InsuranceAdvised reports whether the count justifies insurance. Basic
// strategy never takes it.
func (a *Advisor) InsuranceAdvised(trueCount float64) bool {
	return trueCount >= InsuranceIndex
}

// baseline resolves the basic-strategy cell to a legal action.
func (a *Advisor) baseline(kind HandKind, total, upValue int, legal []game.Action) (Advice, bool) {
	lookupKind := kind
	lookupTotal := total
	cell, ok := decisionFor(kind, total, upValue)
	if !ok {
		return Advice{}, false
	}

	// A recommended split the player cannot make (bankroll, hand cap,
	// no-resplit rule) is re-advised as the equivalent total.
	if cell == splitPair && !slices.Contains(legal, game.Split) {
		if total == 11 { // A-A plays as soft 12, always a hit
			lookupKind, lookupTotal = SoftHand, 12
			cell = hit
		} else {
			lookupKind, lookupTotal = HardHand, total*2
			cell, ok = decisionFor(HardHand, total*2, upValue)
			if !ok {
				return Advice{}, false
			}
		}
	}

	action, fallback := resolve(cell, legal)
	confidence := 1.0
	if fallback {
		confidence = 0.8
	}
	return Advice{
		Action:     action,
		Rationale:  fmt.Sprintf("basic strategy: %s %d vs %d", lookupKind, lookupTotal, upValue),
		Confidence: confidence,
	}, true
}

// decisionFor picks the table cell for a classified hand.
func decisionFor(kind HandKind, total, upValue int) (decision, bool) {
	switch kind {
	case PairHand:
		return lookup(pairTable, total, upValue)
	case SoftHand:
		return lookup(softTable, total, upValue)
	default:
		return lookup(hardTable, total, upValue)
	}
}

// classify maps a hand onto a strategy table. Pairs key on the paired
// card's value (aces as 11); soft hands on the soft total; hard hands on
// the best total.
func classify(cards []deck.Card) (HandKind, int) {
	if len(cards) == 2 && cards[0].Value() == cards[1].Value() {
		return PairHand, cards[0].Value()
	}
	totals := game.ComputeTotals(cards)
	if totals.IsSoft() {
		return SoftHand, totals.Soft
	}
	return HardHand, totals.Hard
}

// resolve turns a table cell into an action from the legal set,
// reporting whether a fallback replaced the preferred action.
func resolve(cell decision, legal []game.Action) (game.Action, bool) {
	pick := func(preferred, fallback game.Action) (game.Action, bool) {
		if slices.Contains(legal, preferred) {
			return preferred, false
		}
		return fallback, true
	}

	switch cell {
	case stand:
		return game.Stand, false
	case doubleOrHit:
		return pick(game.Double, game.Hit)
	case doubleOrStand:
		return pick(game.Double, game.Stand)
	case splitPair:
		return game.Split, false
	case surrenderHit:
		return pick(game.Surrender, game.Hit)
	default:
		return game.Hit, false
	}
}
