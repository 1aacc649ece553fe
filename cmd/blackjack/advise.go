package main

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// AdviseCmd prints the recommended play for a hand, e.g.
//
//	blackjack advise --hand Ts,6h --dealer 9d --true-count 4
type AdviseCmd struct {
	Hand      string  `kong:"required,help='Player cards, comma separated (e.g. Ts,6h)'"`
	Dealer    string  `kong:"required,help='Dealer upcard (e.g. 9d)'"`
	TrueCount float64 `kong:"name='true-count',default='0',help='Current true count'"`
	HitSoft   bool    `kong:"name='h17',help='Dealer hits soft 17'"`
}

func (c *AdviseCmd) Run() error {
	rules := game.DefaultRules()
	rules.DealerHitsSoft17 = c.HitSoft

	var cards []deck.Card
	for _, s := range strings.Split(c.Hand, ",") {
		card, err := deck.ParseCard(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid hand card %q: %w", s, err)
		}
		cards = append(cards, card)
	}
	if len(cards) < 2 {
		return fmt.Errorf("hand needs at least two cards")
	}
	upcard, err := deck.ParseCard(strings.TrimSpace(c.Dealer))
	if err != nil {
		return fmt.Errorf("invalid dealer card %q: %w", c.Dealer, err)
	}

	// Legal actions for a first decision with an unconstrained bankroll.
	hand := &game.Hand{Cards: cards, Bet: rules.MinBet}
	legal := hand.LegalActions(rules, rules.MaxBet*2, 1)

	advisor := strategy.NewAdvisor(rules, strategy.DefaultDeviations())
	advice, ok := advisor.Recommend(cards, &upcard, legal, c.TrueCount)
	if !ok {
		return fmt.Errorf("no advice available for this hand")
	}

	fmt.Printf("Play:       %s\n", advice.Action)
	fmt.Printf("Rationale:  %s\n", advice.Rationale)
	fmt.Printf("Confidence: %.0f%%\n", advice.Confidence*100)
	if advice.Deviation {
		fmt.Println("This is a count deviation from basic strategy.")
	}
	if advisor.InsuranceAdvised(c.TrueCount) && upcard.IsAce() {
		fmt.Println("Insurance:  take it at this count.")
	}
	return nil
}
