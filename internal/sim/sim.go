// Package sim plays large batches of blackjack rounds with the strategy
// advisor driving every decision, to measure the edge of a ruleset or a
// counting approach. Work is sharded across errgroup workers, each with
// its own deterministically seeded engine.
package sim

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/strategy"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Seed    int64
	Workers int
	Rules   game.Rules

	// BetUnit is the flat wager per round. With counting enabled the
	// wager is spread up to MaxSpread units as the true count rises.
	BetUnit   int64
	UseCount  bool
	MaxSpread int64

	Logger *log.Logger
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.BetUnit <= 0 {
		config.BetUnit = config.Rules.MinBet
	}
	if config.MaxSpread < 1 {
		config.MaxSpread = 8
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns merged statistics.
func (s *Simulator) Run() (*Statistics, error) {
	g, ctx := errgroup.WithContext(context.Background())
	results := make(chan *Statistics, s.config.Workers)

	share := s.config.Rounds / s.config.Workers
	remainder := s.config.Rounds % s.config.Workers

	for w := 0; w < s.config.Workers; w++ {
		workerRounds := share
		if w < remainder {
			workerRounds++
		}
		if workerRounds == 0 {
			continue
		}
		// Independent seed per worker so shards do not replay each
		// other's shoes.
		workerSeed := s.config.Seed + int64(w)*1_000_003

		g.Go(func() error {
			stats, err := s.runWorker(workerRounds, workerSeed)
			if err != nil {
				return err
			}
			select {
			case results <- stats:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	go func() {
		defer close(results)
		_ = g.Wait()
	}()

	merged := NewStatistics()
	for stats := range results {
		merged.Merge(stats)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return merged, nil
}

// runWorker plays rounds on a private engine and accumulates results.
func (s *Simulator) runWorker(rounds int, seed int64) (*Statistics, error) {
	cfg := s.config
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	// A bankroll the session cannot realistically bust.
	bankroll := cfg.BetUnit * cfg.MaxSpread * int64(rounds+1) * 4

	engine, err := game.New(cfg.Rules, logger, game.WithRNG(randutil.New(seed)))
	if err != nil {
		return nil, err
	}
	if _, err := engine.AddPlayer("sim", bankroll); err != nil {
		return nil, err
	}

	var deviations []strategy.Deviation
	if cfg.UseCount {
		deviations = strategy.DefaultDeviations()
	}
	advisor := strategy.NewAdvisor(cfg.Rules, deviations)
	counter := strategy.NewCounter(cfg.Rules.NumDecks)
	engine.EventBus().Subscribe(counter)

	stats := NewStatistics()
	for i := 0; i < rounds; i++ {
		result, err := s.playRound(engine, advisor, counter)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		stats.Add(result)
		if _, err := engine.NextRound(); err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
	}
	return stats, nil
}

// playRound drives one round from bet to settlement using the advisor.
func (s *Simulator) playRound(engine *game.Engine, advisor *strategy.Advisor, counter *strategy.Counter) (RoundResult, error) {
	result := RoundResult{}

	bet := s.betSize(counter.TrueCount())
	if _, err := engine.PlaceBet("sim", game.Bet{Main: bet}); err != nil {
		return result, err
	}

	snap, err := engine.Deal()
	if err != nil {
		// A shoe fault voids the round; the wager rides, re-deal.
		snap, err = engine.Deal()
		if err != nil {
			return result, err
		}
	}

	if snap.Phase == game.InsuranceDecision {
		if advisor.InsuranceAdvised(counter.TrueCount()) {
			result.Insured = true
			snap, err = engine.TakeInsurance("sim")
		} else {
			snap, err = engine.DeclineInsurance("sim")
		}
		if err != nil {
			return result, err
		}
	}

	for snap.Phase == game.PlayerTurn {
		pv := snap.Player("sim")
		hand := pv.Hands[pv.ActiveHand]
		advice, ok := advisor.Recommend(hand.Cards, snap.Dealer.Upcard(), hand.Actions, counter.TrueCount())
		if !ok {
			return result, fmt.Errorf("no advice for %v vs %v", hand.Cards, snap.Dealer.Upcard())
		}
		if advice.Deviation {
			result.Deviation = true
		}
		snap, err = engine.Action("sim", advice.Action)
		if err != nil {
			return result, err
		}
	}

	if snap.Phase != game.Settlement {
		return result, fmt.Errorf("round ended in %s", snap.Phase)
	}

	report, err := engine.Result()
	if err != nil {
		return result, err
	}
	for _, ps := range report.Players {
		if ps.PlayerID != "sim" {
			continue
		}
		result.Net = ps.Net
		result.Wagered = ps.TotalStaked
		for _, hs := range ps.Hands {
			result.Outcomes = append(result.Outcomes, hs.Outcome)
		}
	}
	return result, nil
}

// betSize spreads the wager with the count: one unit off the top, more
// as the true count climbs.
func (s *Simulator) betSize(trueCount float64) int64 {
	if !s.config.UseCount {
		return s.config.BetUnit
	}
	units := int64(trueCount)
	if units < 1 {
		units = 1
	}
	if units > s.config.MaxSpread {
		units = s.config.MaxSpread
	}
	bet := s.config.BetUnit * units
	if bet > s.config.Rules.MaxBet {
		bet = s.config.Rules.MaxBet
	}
	return bet
}

// PrintSummary writes a human-readable summary of the run.
func PrintSummary(stats *Statistics, cfg Config) {
	fmt.Printf("Rounds played:   %d (%d hands)\n", stats.Rounds, stats.Hands)
	fmt.Printf("Total wagered:   %d\n", stats.TotalWagered)
	fmt.Printf("Net result:      %+d\n", stats.TotalNet)
	fmt.Printf("Mean per round:  %+.2f ± %.2f (95%% CI)\n", stats.Mean(), 1.96*stats.StdError())
	fmt.Printf("Player edge:     %+.3f%%\n", stats.Edge()*100)
	if cfg.UseCount {
		fmt.Printf("Count plays:     %d rounds, insurance taken %d times\n", stats.Deviations, stats.Insured)
	}
	for _, o := range []game.Outcome{game.OutcomeBlackjack, game.OutcomeWin, game.OutcomePush, game.OutcomeLose, game.OutcomeBust, game.OutcomeSurrender} {
		if n := stats.Outcomes[o]; n > 0 {
			fmt.Printf("  %-10s %6d (%.1f%%)\n", o, n, float64(n)*100/float64(stats.Hands))
		}
	}
}
