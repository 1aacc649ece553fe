package sim

import (
	"encoding/json"
	"fmt"

	"github.com/lox/blackjack/internal/fileutil"
)

// Report is the JSON-serializable form of a simulation run.
type Report struct {
	Rounds       int            `json:"rounds"`
	Hands        int            `json:"hands"`
	Seed         int64          `json:"seed"`
	Workers      int            `json:"workers"`
	BetUnit      int64          `json:"bet_unit"`
	UseCount     bool           `json:"use_count"`
	TotalNet     int64          `json:"total_net"`
	TotalWagered int64          `json:"total_wagered"`
	MeanPerRound float64        `json:"mean_per_round"`
	StdError     float64        `json:"std_error"`
	Edge         float64        `json:"edge"`
	Outcomes     map[string]int `json:"outcomes"`
	Deviations   int            `json:"deviations"`
	Insured      int            `json:"insured"`
}

// NewReport builds a report from merged statistics and the run config.
func NewReport(stats *Statistics, cfg Config) Report {
	outcomes := make(map[string]int, len(stats.Outcomes))
	for o, n := range stats.Outcomes {
		outcomes[o.String()] = n
	}
	return Report{
		Rounds:       stats.Rounds,
		Hands:        stats.Hands,
		Seed:         cfg.Seed,
		Workers:      cfg.Workers,
		BetUnit:      cfg.BetUnit,
		UseCount:     cfg.UseCount,
		TotalNet:     stats.TotalNet,
		TotalWagered: stats.TotalWagered,
		MeanPerRound: stats.Mean(),
		StdError:     stats.StdError(),
		Edge:         stats.Edge(),
		Outcomes:     outcomes,
		Deviations:   stats.Deviations,
		Insured:      stats.Insured,
	}
}

// WriteReport writes the report as indented JSON. The write is atomic so
// a watcher tailing the file never reads a partial report.
func WriteReport(filename string, stats *Statistics, cfg Config) error {
	data, err := json.MarshalIndent(NewReport(stats, cfg), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return fileutil.WriteFileAtomic(filename, append(data, '\n'), 0o644)
}
