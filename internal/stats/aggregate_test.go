package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func TestSummarizeComputesMeanMaxMin(t *testing.T) {
	population := []types.Individual{
		{RawFitness: 0.2},
		{RawFitness: 0.8},
		{RawFitness: 0.5},
	}

	s := Summarize(population)
	require.InDelta(t, 0.5, s.Mean, 1e-9)
	require.Equal(t, 0.8, s.Max)
	require.Equal(t, 0.2, s.Min)
}

func TestSummarizeCountsDegradedCalls(t *testing.T) {
	population := []types.Individual{
		{RawFitness: 0.2, Scores: types.FitnessScores{Degraded: true}},
		{RawFitness: 0.5, Scores: types.FitnessScores{Degraded: false}},
	}

	s := Summarize(population)
	require.Equal(t, 1, s.DegradedCalls)
}

func TestSummarizeEmptyPopulation(t *testing.T) {
	require.Equal(t, Summary{}, Summarize(nil))
}
