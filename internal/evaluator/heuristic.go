package evaluator

import (
	"context"

	"github.com/Keyhole-Koro/snackPersona/internal/diversity"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// HeuristicEvaluator scores purely from transcript shape: how much an
// individual contributed, how substantial its contributions were, and how
// varied its own outputs were (spec.md §4.6). Deterministic; makes no
// backend call.
type HeuristicEvaluator struct {
	Diversity *diversity.Kit
}

// NewHeuristicEvaluator creates a HeuristicEvaluator backed by kit for the
// per-agent textual diversity dimension.
func NewHeuristicEvaluator(kit *diversity.Kit) *HeuristicEvaluator {
	return &HeuristicEvaluator{Diversity: kit}
}

func (h *HeuristicEvaluator) Evaluate(ctx context.Context, name string, phenotype types.Phenotype, transcript types.Transcript) (types.FitnessScores, error) {
	mine := contributions(name, transcript)
	k := len(mine)

	var totalLen int
	for _, ev := range mine {
		totalLen += len(ev.Content)
	}
	var meanLen float64
	if k > 0 {
		meanLen = float64(totalLen) / float64(k)
	}

	var div float64
	if h.Diversity != nil && k >= 2 {
		d, err := h.Diversity.AgentOutputDiversity(ctx, contentsOf(mine))
		if err != nil {
			return types.FitnessScores{}, err
		}
		div = d
	}

	return types.FitnessScores{
		Engagement:          min1(float64(k) * 0.2),
		ConversationQuality: min1(meanLen / 100),
		Diversity:           div,
		PersonaFidelity:     0.5,
		Safety:              1.0,
	}, nil
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
