// Package stats aggregates one generation's fitness scores into the
// summary record written to generation_stats.jsonl (spec.md §6).
package stats

import (
	mstats "github.com/montanaflynn/stats"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// Summary is the mean/max/min of raw fitness across one generation's
// population, plus a count of degraded evaluator calls.
type Summary struct {
	Mean          float64
	Max           float64
	Min           float64
	DegradedCalls int
}

// Summarize computes Summary from a population's raw fitness values.
// An empty population yields a zero Summary.
func Summarize(population []types.Individual) Summary {
	if len(population) == 0 {
		return Summary{}
	}

	raw := make([]float64, len(population))
	var degraded int
	for i, ind := range population {
		raw[i] = ind.RawFitness
		if ind.Scores.Degraded {
			degraded++
		}
	}

	mean, _ := mstats.Mean(raw)
	max, _ := mstats.Max(raw)
	min, _ := mstats.Min(raw)

	return Summary{Mean: mean, Max: max, Min: min, DegradedCalls: degraded}
}

// AgentRows converts a population into the per-agent stats rows of
// spec.md §6's generation_stats.jsonl record.
func AgentRows(population []types.Individual) []types.AgentStats {
	rows := make([]types.AgentStats, len(population))
	for i, ind := range population {
		rows[i] = types.AgentStats{
			Name:          ind.Genotype.Name,
			Engagement:    ind.Scores.Engagement,
			Quality:       ind.Scores.ConversationQuality,
			Diversity:     ind.Scores.Diversity,
			PersonaFid:    ind.Scores.PersonaFidelity,
			Safety:        ind.Scores.Safety,
			RawFitness:    ind.RawFitness,
			SharedFitness: ind.SharedFitness,
			Degraded:      ind.Scores.Degraded,
		}
	}
	return rows
}
