// Package testutil provides hand-rolled fakes for the Backend and
// Embedder capabilities, mirroring the teacher's pattern of a small
// stub type per interface rather than a generated mock framework.
package testutil

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
)

// StubBackend is a deterministic, in-memory Backend for tests. By
// default it echoes "post by <name>" for post-shaped prompts, "reply by
// <name>" for reply-shaped prompts, and "yes" for engage-decision
// prompts (§8, scenario 1), configurable via the fields below.
type StubBackend struct {
	mu sync.Mutex

	// EngageAnswer is returned verbatim for every engage decision prompt.
	// Defaults to "yes".
	EngageAnswer string

	// GenerateFunc, when set, overrides all default behavior.
	GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Calls records every (system, user) prompt pair seen, for assertions.
	Calls []StubCall
}

// StubCall is one recorded Generate invocation.
type StubCall struct {
	SystemPrompt string
	UserPrompt   string
}

// NewStubBackend creates a StubBackend with the scenario-1 defaults.
func NewStubBackend() *StubBackend {
	return &StubBackend{EngageAnswer: "yes"}
}

func (s *StubBackend) Generate(ctx context.Context, systemPrompt, userPrompt string, opts ...backend.GenerateOption) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, StubCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	genFunc := s.GenerateFunc
	engageAnswer := s.EngageAnswer
	s.mu.Unlock()

	if genFunc != nil {
		return genFunc(ctx, systemPrompt, userPrompt)
	}

	lower := strings.ToLower(userPrompt)
	name := extractName(systemPrompt)

	switch {
	case strings.Contains(lower, "would this persona reply") || strings.Contains(lower, "yes/no"):
		return engageAnswer, nil
	case strings.Contains(lower, "reply"):
		return fmt.Sprintf("reply by %s", name), nil
	default:
		return fmt.Sprintf("post by %s", name), nil
	}
}

// extractName reads the persona name from a compiled system prompt,
// which opens with "You are <name>, ...".
func extractName(systemPrompt string) string {
	const marker = "You are "
	if !strings.HasPrefix(systemPrompt, marker) {
		return "agent"
	}
	rest := systemPrompt[len(marker):]
	if end := strings.IndexAny(rest, ",\n"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// StubEmbedder is a deterministic Embedder for tests: it hashes text into
// a fixed-length vector, so identical texts always yield identical
// vectors and distinct texts yield (almost certainly) distinct vectors.
type StubEmbedder struct {
	Dim int
}

// NewStubEmbedder creates a StubEmbedder with an 8-dimensional output.
func NewStubEmbedder() *StubEmbedder {
	return &StubEmbedder{Dim: 8}
}

func (e *StubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	dim := e.Dim
	if dim <= 0 {
		dim = 8
	}
	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, dim)
	for i := 0; i < dim; i++ {
		vec[i] = float64(sum[i%len(sum)]) / 255.0
	}
	return vec, nil
}
