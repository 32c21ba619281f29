// Package config loads the evolution_config, seed_personas, and
// mutation_pools files (spec.md §6), filling missing keys from defaults,
// warning on and ignoring unknown keys, and renormalizing fitness
// weights. Adapted from the teacher's YAML-plus-validator config layer.
package config

// NichingConfig controls the fitness-sharing penalty (spec.md §4.7 step 6).
type NichingConfig struct {
	Sigma float64 `yaml:"sigma" validate:"gt=0,lte=1"`
	Alpha float64 `yaml:"alpha" validate:"gt=0"`
}

// EvolutionConfig is the full tunable surface of the generation loop
// (spec.md §4.7).
type EvolutionConfig struct {
	PopulationSize  int                `yaml:"population_size" validate:"min=1"`
	Generations     int                `yaml:"generations" validate:"min=1"`
	EliteCount      int                `yaml:"elite_count" validate:"min=0"`
	GroupSize       int                `yaml:"group_size" validate:"min=2"`
	ReplyRounds     int                `yaml:"reply_rounds" validate:"min=0"`
	MutationRate    float64            `yaml:"mutation_rate" validate:"min=0,max=1"`
	FitnessWeights  map[string]float64 `yaml:"fitness_weights" validate:"required"`
	Niching         NichingConfig      `yaml:"niching"`
	TournamentSize  int                `yaml:"tournament_size" validate:"min=1"`
	TopicCount      int                `yaml:"topic_count" validate:"min=1"`
	NicknameEnabled bool               `yaml:"nickname_enabled"`
	RunDir          string             `yaml:"run_dir" validate:"required"`
	Seed            int64              `yaml:"seed"`

	GenerationTimeoutSeconds int `yaml:"generation_timeout_seconds" validate:"min=0"`
	BackendTimeoutSeconds    int `yaml:"backend_timeout_seconds" validate:"min=0"`
	JudgeTimeoutSeconds      int `yaml:"judge_timeout_seconds" validate:"min=0"`
	EngageTimeoutSeconds     int `yaml:"engage_timeout_seconds" validate:"min=0"`

	MaxConcurrentGroups int `yaml:"max_concurrent_groups" validate:"min=1"`
	MaxConcurrentPosts  int `yaml:"max_concurrent_posts" validate:"min=1"`
}

// eliteCountOrDefault returns the configured elite count, falling back to
// ⌈population/4⌉, but never less than 2, when unset (spec.md §4.7:
// "default 2 or ⌈pop/4⌉").
func eliteCountOrDefault(cfg EvolutionConfig) int {
	if cfg.EliteCount > 0 {
		return cfg.EliteCount
	}
	quarter := (cfg.PopulationSize + 3) / 4
	if quarter < 2 {
		return 2
	}
	return quarter
}
