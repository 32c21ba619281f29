package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func sampleIndividual(name string) types.Individual {
	g := types.NewGenotype(name)
	g.Attributes[types.AttrOccupation] = types.StringAttr("barista")
	return types.Individual{Genotype: g, Phenotype: types.Phenotype{SystemPrompt: "x"}}
}

func TestSaveAndLoadGenerationRoundTrips(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	population := []types.Individual{sampleIndividual("Alpha"), sampleIndividual("Beta")}
	require.NoError(t, s.SaveGeneration(context.Background(), 0, population))

	loaded, err := s.LoadGeneration(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "Alpha", loaded[0].Name)
}

func TestListGenerationsReturnsSortedIndices(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, gen := range []int{2, 0, 1} {
		require.NoError(t, s.SaveGeneration(context.Background(), gen, nil))
	}

	gens, err := s.ListGenerations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, gens)
}

func TestListGenerationsEmptyDirReturnsNil(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	gens, err := s.ListGenerations(context.Background())
	require.NoError(t, err)
	require.Empty(t, gens)
}

func TestAppendStatsAppendsOneLinePerCall(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for gen := 0; gen < 3; gen++ {
		require.NoError(t, s.AppendStats(context.Background(), types.GenerationStats{Generation: gen}))
	}

	data, err := os.ReadFile(s.statsPath())
	require.NoError(t, err)
	lines := strings.Count(strings.TrimRight(string(data), "\n"), "\n") + 1
	require.Equal(t, 3, lines)
}

func TestSaveTranscriptsRoundTrips(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	transcripts := []types.Transcript{{types.NewPostEvent("Alpha", "hello")}}
	require.NoError(t, s.SaveTranscripts(context.Background(), 0, transcripts))

	data, err := os.ReadFile(s.transcriptsPath(0))
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}
