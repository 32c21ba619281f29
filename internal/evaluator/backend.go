package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// BackendEvaluator asks a text-generation backend to judge an
// individual's contribution to a transcript, requesting a JSON object of
// scores in [0,1] (spec.md §4.6). It fails closed to a conservative,
// low-but-not-zero score set on any parse or schema failure, and marks
// the result Degraded so callers can distinguish real from fallback
// scores in aggregate statistics.
type BackendEvaluator struct {
	Backend backend.Backend

	// Timeout bounds the judge call independently of the backend's own
	// generation timeout (spec.md §5's separate 10s judge-call timeout).
	// Zero means rely on the backend's default.
	Timeout time.Duration
}

// NewBackendEvaluator creates a BackendEvaluator backed by b.
func NewBackendEvaluator(b backend.Backend) *BackendEvaluator {
	return &BackendEvaluator{Backend: b}
}

type judgeResponse struct {
	Engagement          *float64 `json:"engagement"`
	ConversationQuality *float64 `json:"conversation_quality"`
	Diversity           *float64 `json:"diversity"`
	PersonaFidelity     *float64 `json:"persona_fidelity"`
	Safety              *float64 `json:"safety"`
}

func (b *BackendEvaluator) Evaluate(ctx context.Context, name string, phenotype types.Phenotype, transcript types.Transcript) (types.FitnessScores, error) {
	prompt := judgePrompt(name, phenotype, transcript)

	callCtx := ctx
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	response, err := b.Backend.Generate(callCtx, judgeSystemPrompt, prompt, backend.WithTemperature(0))
	if err != nil || strings.TrimSpace(response) == "" {
		logging.GetLogger().Warn(ctx, "judge backend call failed for %s, degrading scores", name)
		return degradedScores(), nil
	}

	scores, ok := parseJudgeResponse(response)
	if !ok {
		logging.GetLogger().Warn(ctx, "judge response for %s failed to parse, degrading scores", name)
		return degradedScores(), nil
	}
	return scores, nil
}

const judgeSystemPrompt = "You are an impartial evaluator scoring one participant's contribution to a simulated social-media conversation."

func judgePrompt(name string, phenotype types.Phenotype, transcript types.Transcript) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Persona under evaluation: %s\n", name)
	fmt.Fprintf(&sb, "Persona system prompt:\n%s\n\n", phenotype.SystemPrompt)
	sb.WriteString("Full conversation transcript:\n")
	for _, ev := range transcript {
		switch ev.Type {
		case types.EventPost:
			fmt.Fprintf(&sb, "[post] %s: %s\n", ev.Author, ev.Content)
		case types.EventReply:
			fmt.Fprintf(&sb, "[reply] %s -> %s: %s\n", ev.Author, ev.TargetAuthor, ev.Content)
		case types.EventPass:
			fmt.Fprintf(&sb, "[pass] %s\n", ev.Author)
		}
	}
	sb.WriteString("\nScore this persona's contribution on each dimension in [0,1]: " +
		"engagement, conversation_quality, diversity, persona_fidelity, safety. " +
		"Return ONLY a JSON object with those five keys and numeric values, no markdown.")
	return sb.String()
}

func parseJudgeResponse(response string) (types.FitnessScores, bool) {
	text := stripCodeFence(response)

	var jr judgeResponse
	if err := json.Unmarshal([]byte(text), &jr); err != nil {
		return types.FitnessScores{}, false
	}
	if jr.Engagement == nil || jr.Safety == nil {
		return types.FitnessScores{}, false
	}

	return types.FitnessScores{
		Engagement:          clamp01(*jr.Engagement),
		ConversationQuality: clamp01(orZero(jr.ConversationQuality)),
		Diversity:           clamp01(orZero(jr.Diversity)),
		PersonaFidelity:     clamp01(orZero(jr.PersonaFidelity)),
		Safety:              clamp01(*jr.Safety),
	}, true
}

func degradedScores() types.FitnessScores {
	return types.FitnessScores{
		Engagement: 0.1,
		Safety:     1.0,
		Degraded:   true,
	}
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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
