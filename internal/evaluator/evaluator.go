// Package evaluator produces multi-dimensional fitness scores for an
// individual from an episode transcript, either heuristically or by
// asking a text-generation backend to act as a judge.
package evaluator

import (
	"context"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// Evaluator scores one named individual against a transcript of a group
// episode it participated in.
type Evaluator interface {
	Evaluate(ctx context.Context, name string, phenotype types.Phenotype, transcript types.Transcript) (types.FitnessScores, error)
}

// contributions returns the post/reply events authored by name, in
// transcript order.
func contributions(name string, transcript types.Transcript) []types.TranscriptEvent {
	var out []types.TranscriptEvent
	for _, ev := range transcript {
		if ev.Author != name {
			continue
		}
		if ev.Type == types.EventPost || ev.Type == types.EventReply {
			out = append(out, ev)
		}
	}
	return out
}

func contentsOf(events []types.TranscriptEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Content
	}
	return out
}
