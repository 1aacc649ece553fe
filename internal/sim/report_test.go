package sim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()
	stats := NewStatistics()
	stats.Add(RoundResult{Net: 1500, Wagered: 1000, Outcomes: []game.Outcome{game.OutcomeBlackjack}})
	stats.Add(RoundResult{Net: -1000, Wagered: 1000, Outcomes: []game.Outcome{game.OutcomeLose}, Insured: true})

	cfg := testConfig(2, 42)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, stats, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, 2, report.Rounds)
	assert.Equal(t, 2, report.Hands)
	assert.Equal(t, int64(500), report.TotalNet)
	assert.Equal(t, int64(2000), report.TotalWagered)
	assert.Equal(t, 1, report.Outcomes["blackjack"])
	assert.Equal(t, 1, report.Outcomes["lose"])
	assert.Equal(t, 1, report.Insured)
	assert.InDelta(t, 0.25, report.Edge, 1e-9)
}
