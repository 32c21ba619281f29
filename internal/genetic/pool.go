package genetic

// Pool is the static value catalog used by the pool-based mutator
// (spec.md §4.2). Typically loaded from a mutation_pools config file
// (spec.md §6).
type Pool struct {
	Hobbies              []string `json:"hobbies" yaml:"hobbies"`
	CoreValues           []string `json:"core_values" yaml:"core_values"`
	Goals                []string `json:"goals" yaml:"goals"`
	CommunicationStyles  []string `json:"communication_styles" yaml:"communication_styles"`
	TopicalFocuses       []string `json:"topical_focuses" yaml:"topical_focuses"`
	InteractionPolicies  []string `json:"interaction_policies" yaml:"interaction_policies"`
	Occupations          []string `json:"occupations" yaml:"occupations"`
	LifeEvents           []string `json:"life_events" yaml:"life_events"`
	Names                []string `json:"names" yaml:"names"`
}

// DefaultPool returns a small built-in catalog, used when no mutation_pools
// configuration file is supplied.
func DefaultPool() Pool {
	return Pool{
		Hobbies: []string{
			"photography", "hiking", "cooking", "gaming", "reading",
			"gardening", "painting", "cycling", "journaling", "birdwatching",
		},
		CoreValues: []string{
			"honesty", "curiosity", "kindness", "ambition", "creativity",
			"loyalty", "independence", "humor", "resilience", "empathy",
		},
		Goals: []string{
			"grow a following", "start a small business", "learn a new skill",
			"travel more", "build a community", "stay informed", "have fun online",
		},
		CommunicationStyles: []string{
			"blunt and direct", "warm and encouraging", "sarcastic and witty",
			"formal and measured", "casual and playful", "terse and minimal",
		},
		TopicalFocuses: []string{
			"technology", "food culture", "fitness", "politics", "music",
			"gaming", "travel", "books", "climate", "parenting",
		},
		InteractionPolicies: []string{
			"replies to almost everyone", "rarely engages unless provoked",
			"only replies to people they agree with", "loves a good debate",
			"mostly lurks but occasionally jumps in",
		},
		Occupations: []string{
			"graphic designer", "barista", "software engineer", "teacher",
			"nurse", "freelance writer", "student", "chef", "electrician",
		},
		LifeEvents: []string{
			"Recently started getting into cooking videos.",
			"Has been posting more late at night recently.",
			"Just discovered a new favorite podcast.",
			"Going through a minimalist phase.",
			"Started working out and won't stop talking about it.",
			"Picked up photography as a hobby.",
			"Became obsessed with a new TV show.",
			"Trying to reduce screen time but failing.",
			"Just got a new pet and posts about it constantly.",
			"Going through a career change.",
		},
		Names: []string{
			"PixelForge", "QuietEmber", "NovaDrift", "SageWander", "CopperLynx",
			"MossAndFern", "VividStatic", "WillowFrost", "CinderHawk", "TidalEcho",
		},
	}
}
