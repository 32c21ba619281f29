package genetic

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// BackendMutator asks the text-generation backend for "a slightly
// different variation with a fresh unique name" and parses the response
// as a genotype (spec.md §4.2). It fails open: any parse failure or
// empty response falls back to a pool-based mutation instead of
// propagating an error.
type BackendMutator struct {
	Backend  backend.Backend
	Fallback *PoolMutator
}

// NewBackendMutator creates a BackendMutator with fallback as its
// fail-open pool mutator.
func NewBackendMutator(b backend.Backend, fallback *PoolMutator) *BackendMutator {
	return &BackendMutator{Backend: b, Fallback: fallback}
}

func (m *BackendMutator) Mutate(ctx context.Context, rng *rand.Rand, g types.Genotype) (types.Genotype, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return m.fallback(ctx, rng, g)
	}

	systemPrompt := "You are a character designer creating variations of social-media personas."
	userPrompt := fmt.Sprintf(
		"Here is a persona genotype as JSON:\n%s\n\n"+
			"Produce a slightly different variation with a fresh, unique name. "+
			"Keep the same JSON shape: {\"name\": string, \"attributes\": {...}}. "+
			"Return ONLY the JSON object, no markdown.",
		string(payload),
	)

	response, err := m.Backend.Generate(ctx, systemPrompt, userPrompt)
	if err != nil || strings.TrimSpace(response) == "" {
		return m.fallback(ctx, rng, g)
	}

	mutant, ok := parseGenotypeResponse(response)
	if !ok {
		return m.fallback(ctx, rng, g)
	}

	return mutant, nil
}

func (m *BackendMutator) fallback(ctx context.Context, rng *rand.Rand, g types.Genotype) (types.Genotype, error) {
	logging.GetLogger().Warn(ctx, "backend mutator falling back to pool mutation for %s", g.Name)
	if m.Fallback == nil {
		m.Fallback = NewPoolMutator(DefaultPool())
	}
	return m.Fallback.Mutate(ctx, rng, g)
}

// parseGenotypeResponse parses a genotype from an LLM response, stripping
// an optional fenced code block.
func parseGenotypeResponse(response string) (types.Genotype, bool) {
	text := stripCodeFence(response)

	var g types.Genotype
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		return types.Genotype{}, false
	}
	if g.Name == "" {
		return types.Genotype{}, false
	}
	if g.Attributes == nil {
		g.Attributes = make(map[string]types.AttrValue)
	}
	return g, true
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
