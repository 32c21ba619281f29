package engine

import (
	"context"
	"time"

	"github.com/Keyhole-Koro/snackPersona/internal/stats"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// persistGeneration writes the population, transcripts, and a
// statistics record for one generation (spec.md §4.7 step 7). Per
// spec.md §5's ordering guarantee, generation N is fully written before
// the engine begins producing generation N+1.
func (e *Engine) persistGeneration(ctx context.Context, gen int, transcripts []types.Transcript, popDiversity float64) error {
	if err := e.Store.SaveGeneration(ctx, gen, e.population); err != nil {
		return err
	}
	if err := e.Store.SaveTranscripts(ctx, gen, transcripts); err != nil {
		return err
	}

	summary := stats.Summarize(e.population)
	record := types.GenerationStats{
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		Generation:          gen,
		PopulationSize:      len(e.population),
		PopulationDiversity: popDiversity,
		FitnessMean:         summary.Mean,
		FitnessMax:          summary.Max,
		FitnessMin:          summary.Min,
		DegradedCalls:       summary.DegradedCalls,
		Agents:              stats.AgentRows(e.population),
	}

	return e.Store.AppendStats(ctx, record)
}
