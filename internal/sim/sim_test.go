package sim

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
)

func testConfig(rounds int, seed int64) Config {
	return Config{
		Rounds:  rounds,
		Seed:    seed,
		Workers: 2,
		Rules:   game.DefaultRules(),
		BetUnit: 1000,
		Logger:  log.New(io.Discard),
	}
}

func TestSimulatorRun(t *testing.T) {
	t.Parallel()
	stats, err := New(testConfig(200, 42)).Run()
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	assert.Equal(t, 200, stats.Rounds)
	assert.GreaterOrEqual(t, stats.Hands, stats.Rounds, "splits only add hands")
	assert.Positive(t, stats.TotalWagered)

	// Basic strategy on a fair shoe stays within a loose band; a result
	// outside it means the payout arithmetic is broken, not bad luck.
	assert.InDelta(t, 0, stats.Edge(), 0.25)

	var outcomes int
	for _, n := range stats.Outcomes {
		outcomes += n
	}
	assert.Equal(t, stats.Hands, outcomes)
}

func TestSimulatorDeterministic(t *testing.T) {
	t.Parallel()
	first, err := New(testConfig(100, 7)).Run()
	require.NoError(t, err)
	second, err := New(testConfig(100, 7)).Run()
	require.NoError(t, err)

	assert.Equal(t, first.TotalNet, second.TotalNet)
	assert.Equal(t, first.TotalWagered, second.TotalWagered)
	assert.Equal(t, first.Hands, second.Hands)
	assert.Equal(t, first.Outcomes, second.Outcomes)

	// A different seed deals different shoes.
	third, err := New(testConfig(100, 8)).Run()
	require.NoError(t, err)
	assert.NotEqual(t, first.Outcomes, third.Outcomes)
}

func TestSimulatorWithCounting(t *testing.T) {
	t.Parallel()
	cfg := testConfig(200, 42)
	cfg.UseCount = true
	cfg.MaxSpread = 4

	stats, err := New(cfg).Run()
	require.NoError(t, err)
	require.NoError(t, stats.Validate())
	assert.Equal(t, 200, stats.Rounds)

	// Spread betting wagers at least as much as flat betting the same
	// rounds.
	flat, err := New(testConfig(200, 42)).Run()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.TotalWagered, flat.TotalWagered)
}

func TestStatisticsMerge(t *testing.T) {
	t.Parallel()
	a := NewStatistics()
	a.Add(RoundResult{Net: 1500, Wagered: 1000, Outcomes: []game.Outcome{game.OutcomeBlackjack}})
	a.Add(RoundResult{Net: -1000, Wagered: 1000, Outcomes: []game.Outcome{game.OutcomeBust}})

	b := NewStatistics()
	b.Add(RoundResult{Net: 0, Wagered: 1000, Outcomes: []game.Outcome{game.OutcomePush}, Insured: true})

	a.Merge(b)
	require.NoError(t, a.Validate())
	assert.Equal(t, 3, a.Rounds)
	assert.Equal(t, int64(500), a.TotalNet)
	assert.Equal(t, int64(3000), a.TotalWagered)
	assert.Equal(t, 1, a.Insured)
	assert.Equal(t, 1, a.Outcomes[game.OutcomeBlackjack])

	low, high := a.ConfidenceInterval95()
	assert.Less(t, low, a.Mean())
	assert.Greater(t, high, a.Mean())
}
