package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/config"
	"github.com/Keyhole-Koro/snackPersona/internal/diversity"
	"github.com/Keyhole-Koro/snackPersona/internal/evaluator"
	"github.com/Keyhole-Koro/snackPersona/internal/genetic"
	"github.com/Keyhole-Koro/snackPersona/internal/store"
	"github.com/Keyhole-Koro/snackPersona/internal/testutil"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func seedGenotypes(n int) []types.Genotype {
	pool := genetic.DefaultPool()
	seeds := make([]types.Genotype, n)
	for i := 0; i < n; i++ {
		g := types.NewGenotype(pool.Names[i%len(pool.Names)])
		g.Attributes[types.AttrAge] = types.IntAttr(20 + i)
		g.Attributes[types.AttrOccupation] = types.StringAttr(pool.Occupations[i%len(pool.Occupations)])
		g.Attributes[types.AttrCoreValues] = types.ListAttr([]string{pool.CoreValues[i%len(pool.CoreValues)]})
		g.Attributes[types.AttrCommunicationStyle] = types.StringAttr(pool.CommunicationStyles[i%len(pool.CommunicationStyles)])
		seeds[i] = g
	}
	return seeds
}

func newTestEngine(t *testing.T) *Engine {
	cfg := config.DefaultEvolutionConfig()
	cfg.PopulationSize = 4
	cfg.GroupSize = 2
	cfg.Generations = 2
	cfg.ReplyRounds = 1
	cfg.EliteCount = 1
	cfg.TournamentSize = 2

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	backendStub := testutil.NewStubBackend()
	kit := diversity.NewKit(testutil.NewStubEmbedder())
	eval := evaluator.NewHeuristicEvaluator(kit)
	mutator := genetic.NewPoolMutator(genetic.DefaultPool())

	rng := rand.New(rand.NewSource(42))
	e := New(backendStub, st, eval, mutator, kit, genetic.DefaultPool().Names, cfg, rng)
	return e
}

func TestEngineRunCompletesConfiguredGenerations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.InitializePopulation(ctx, seedGenotypes(4)))
	require.NoError(t, e.Run(ctx, 0))

	gens, err := e.Store.ListGenerations(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, gens)
}

func TestEngineResumeSkipsCompletedGenerations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.InitializePopulation(ctx, seedGenotypes(4)))
	require.NoError(t, e.Run(ctx, 0))

	start, done, err := e.Resume(ctx)
	require.NoError(t, err)
	require.True(t, done) // generation 1 (the last) was already written
	require.Equal(t, 0, start)
}

func TestEngineInitializePopulationFillsByMutation(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializePopulation(context.Background(), seedGenotypes(1)))
	require.Len(t, e.Population(), 4)
}

func TestEngineInitializePopulationRejectsZeroSeeds(t *testing.T) {
	e := newTestEngine(t)
	err := e.InitializePopulation(context.Background(), nil)
	require.Error(t, err)
}

func TestApplyFitnessSharingNicheCountAtLeastOne(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializePopulation(context.Background(), seedGenotypes(4)))
	for i := range e.population {
		e.population[i].Scores.Engagement = 0.8
	}

	e.applyFitnessSharing()

	for _, ind := range e.population {
		require.GreaterOrEqual(t, ind.RawFitness, 0.0)
		require.LessOrEqual(t, ind.SharedFitness, ind.RawFitness+1e-9)
	}
}
