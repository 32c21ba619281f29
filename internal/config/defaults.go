package config

// DefaultEvolutionConfig returns the generation loop's defaults
// (spec.md §4.7).
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		PopulationSize: 10,
		Generations:    5,
		EliteCount:     0, // resolved via eliteCountOrDefault: max(2, ⌈pop/4⌉)
		GroupSize:      4,
		ReplyRounds:    3,
		MutationRate:   0.2,
		FitnessWeights: map[string]float64{
			"engagement":           0.35,
			"conversation_quality": 0.35,
			"diversity":            0.20,
			"persona_fidelity":     0.10,
		},
		Niching:                  NichingConfig{Sigma: 0.5, Alpha: 1.0},
		TournamentSize:           3,
		TopicCount:               5,
		NicknameEnabled:          true,
		RunDir:                   "./run",
		Seed:                     0,
		GenerationTimeoutSeconds: 0,
		BackendTimeoutSeconds:    30,
		JudgeTimeoutSeconds:      10,
		EngageTimeoutSeconds:     10,
		MaxConcurrentGroups:      4,
		MaxConcurrentPosts:       8,
	}
}

// DefaultTopics is the static fallback used when the backend cannot
// produce trending topics (spec.md §4.7 step 2).
func DefaultTopics() []string {
	return []string{
		"morning coffee rituals",
		"the best way to learn a new language",
		"weekend hiking trails",
		"home-cooked comfort food",
		"favorite childhood books",
		"underrated board games",
		"city versus countryside living",
		"adopting a rescue pet",
		"learning to play an instrument as an adult",
		"the ethics of AI-generated art",
		"minimalist living",
		"local farmers markets",
		"whether remote work changed friendships",
		"the last movie that made you cry",
		"small acts of kindness that stuck with you",
	}
}
