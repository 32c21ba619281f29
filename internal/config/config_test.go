package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEvolutionConfigMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadEvolutionConfig(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 10, cfg.PopulationSize)
	require.Equal(t, 3, cfg.TournamentSize)
}

func TestLoadEvolutionConfigRenormalizesWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evolution_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
population_size: 6
fitness_weights:
  engagement: 2
  safety: 2
`), 0o644))

	cfg, err := LoadEvolutionConfig(context.Background(), path)
	require.NoError(t, err)
	require.InDelta(t, 0.5, cfg.FitnessWeights["engagement"], 1e-9)
	require.InDelta(t, 0.5, cfg.FitnessWeights["safety"], 1e-9)
	require.Equal(t, 6, cfg.PopulationSize)
}

func TestLoadEvolutionConfigRejectsNonPositiveWeightSum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evolution_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fitness_weights:
  engagement: 0
`), 0o644))

	_, err := LoadEvolutionConfig(context.Background(), path)
	require.Error(t, err)
}

func TestLoadEvolutionConfigResolvesDefaultEliteCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evolution_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`population_size: 9`), 0o644))

	cfg, err := LoadEvolutionConfig(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.EliteCount) // ceil(9/4) = 3
}

func TestLoadSeedPersonasMissingPathReturnsNil(t *testing.T) {
	seeds, err := LoadSeedPersonas("")
	require.NoError(t, err)
	require.Nil(t, seeds)
}

func TestLoadMutationPoolsMissingPathReturnsDefaultPool(t *testing.T) {
	pool, err := LoadMutationPools("")
	require.NoError(t, err)
	require.NotEmpty(t, pool.Hobbies)
}
