package config

import (
	"context"
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Keyhole-Koro/snackPersona/internal/genetic"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
	"github.com/Keyhole-Koro/snackPersona/internal/xerrors"
)

// knownEvolutionKeys mirrors EvolutionConfig's yaml tags, used to detect
// and warn about unrecognized top-level keys without failing the load.
var knownEvolutionKeys = map[string]bool{
	"population_size": true, "generations": true, "elite_count": true,
	"group_size": true, "reply_rounds": true, "mutation_rate": true,
	"fitness_weights": true, "niching": true, "tournament_size": true,
	"topic_count": true, "nickname_enabled": true, "run_dir": true, "seed": true,
	"generation_timeout_seconds": true, "backend_timeout_seconds": true,
	"judge_timeout_seconds": true, "engage_timeout_seconds": true,
	"max_concurrent_groups": true, "max_concurrent_posts": true,
}

// LoadEvolutionConfig reads path as YAML, merges it over the defaults,
// warns on unknown keys, validates, and renormalizes fitness_weights.
// A fitness_weights mapping in the file replaces the default weights
// rather than being merged into them. A missing path is not an error:
// the defaults are returned, with the elite count resolved.
func LoadEvolutionConfig(ctx context.Context, path string) (EvolutionConfig, error) {
	cfg := DefaultEvolutionConfig()
	if path == "" {
		cfg.EliteCount = eliteCountOrDefault(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.EliteCount = eliteCountOrDefault(cfg)
		return cfg, nil
	}
	if err != nil {
		return cfg, xerrors.Wrap(err, xerrors.ConfigurationError, "reading evolution config")
	}

	warnUnknownTopLevelKeys(ctx, data, knownEvolutionKeys, path)

	defaultWeights := cfg.FitnessWeights
	cfg.FitnessWeights = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, xerrors.Wrap(err, xerrors.ConfigurationError, "parsing evolution config")
	}
	if cfg.FitnessWeights == nil {
		cfg.FitnessWeights = defaultWeights
	}

	cfg.EliteCount = eliteCountOrDefault(cfg)

	if err := renormalizeWeights(&cfg); err != nil {
		return cfg, err
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func warnUnknownTopLevelKeys(ctx context.Context, data []byte, known map[string]bool, path string) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	for key := range raw {
		if !known[key] {
			logging.GetLogger().Warn(ctx, "config %s: unknown key %q ignored", path, key)
		}
	}
}

// renormalizeWeights scales fitness_weights so they sum to 1, per
// spec.md §6 ("renormalized if their sum is in (0, ∞)"). A zero or
// negative sum is a configuration error.
func renormalizeWeights(cfg *EvolutionConfig) error {
	var sum float64
	for _, w := range cfg.FitnessWeights {
		sum += w
	}
	if sum <= 0 {
		return xerrors.New(xerrors.ConfigurationError, "fitness_weights must sum to a positive value")
	}
	for k, w := range cfg.FitnessWeights {
		cfg.FitnessWeights[k] = w / sum
	}
	return nil
}

func validateConfig(cfg EvolutionConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return xerrors.Wrap(err, xerrors.ValidationFailed, "evolution config failed validation")
	}
	return nil
}

// LoadSeedPersonas reads a JSON array of genotypes (spec.md §6). A
// missing path yields an empty slice rather than an error.
func LoadSeedPersonas(path string) ([]types.Genotype, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ConfigurationError, "reading seed personas")
	}

	var seeds []types.Genotype
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, xerrors.Wrap(err, xerrors.ConfigurationError, "parsing seed personas")
	}
	return seeds, nil
}

// LoadMutationPools reads a JSON object whose keys match genetic.Pool's
// field names (spec.md §6). A missing path yields genetic.DefaultPool().
func LoadMutationPools(path string) (genetic.Pool, error) {
	if path == "" {
		return genetic.DefaultPool(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return genetic.DefaultPool(), nil
	}
	if err != nil {
		return genetic.Pool{}, xerrors.Wrap(err, xerrors.ConfigurationError, "reading mutation pools")
	}

	pool := genetic.DefaultPool()
	if err := json.Unmarshal(data, &pool); err != nil {
		return genetic.Pool{}, xerrors.Wrap(err, xerrors.ConfigurationError, "parsing mutation pools")
	}
	return pool, nil
}
