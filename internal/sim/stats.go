package sim

import (
	"fmt"
	"math"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult represents the outcome of a single simulated round.
type RoundResult struct {
	Net       int64 // net minor units won or lost, side bets included
	Wagered   int64 // total staked across main, side bets and insurance
	Outcomes  []game.Outcome
	Deviation bool // a count play replaced basic strategy this round
	Insured   bool
}

// Statistics aggregates simulation results. Money is accumulated in
// minor units; the variance fields work in float64 units per round.
type Statistics struct {
	Rounds int
	Hands  int

	TotalNet     int64
	TotalWagered int64
	SumNet       float64
	SumNet2      float64

	Outcomes   map[game.Outcome]int
	Deviations int
	Insured    int
}

// NewStatistics returns an empty accumulator.
func NewStatistics() *Statistics {
	return &Statistics{Outcomes: make(map[game.Outcome]int)}
}

// Add folds one round into the statistics.
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.Hands += len(r.Outcomes)
	s.TotalNet += r.Net
	s.TotalWagered += r.Wagered
	net := float64(r.Net)
	s.SumNet += net
	s.SumNet2 += net * net
	for _, o := range r.Outcomes {
		s.Outcomes[o]++
	}
	if r.Deviation {
		s.Deviations++
	}
	if r.Insured {
		s.Insured++
	}
}

// Merge folds another accumulator in, for combining worker shards.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.Hands += other.Hands
	s.TotalNet += other.TotalNet
	s.TotalWagered += other.TotalWagered
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	for o, n := range other.Outcomes {
		s.Outcomes[o] += n
	}
	s.Deviations += other.Deviations
	s.Insured += other.Insured
}

// Mean returns the mean net result per round in minor units.
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of per-round net results.
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	margin := 1.96 * s.StdError()
	return s.Mean() - margin, s.Mean() + margin
}

// Edge returns the player's expected value as a fraction of the amount
// wagered; negative numbers are the house edge.
func (s *Statistics) Edge() float64 {
	if s.TotalWagered == 0 {
		return 0
	}
	return float64(s.TotalNet) / float64(s.TotalWagered)
}

// Validate checks internal consistency of the accumulator.
func (s *Statistics) Validate() error {
	if s.Rounds < 0 || s.Hands < s.Rounds {
		return fmt.Errorf("inconsistent counts: %d rounds, %d hands", s.Rounds, s.Hands)
	}
	if math.Abs(s.SumNet-float64(s.TotalNet)) > 1e-6 {
		return fmt.Errorf("net accumulators disagree: %v vs %d", s.SumNet, s.TotalNet)
	}
	var outcomes int
	for _, n := range s.Outcomes {
		outcomes += n
	}
	if outcomes != s.Hands {
		return fmt.Errorf("outcome counts %d do not cover %d hands", outcomes, s.Hands)
	}
	return nil
}
