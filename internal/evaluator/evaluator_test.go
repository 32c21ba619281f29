package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/diversity"
	"github.com/Keyhole-Koro/snackPersona/internal/testutil"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func sampleTranscript() types.Transcript {
	return types.Transcript{
		types.NewPostEvent("Alpha", "let's talk about coffee brewing methods"),
		types.NewPostEvent("Beta", "I only drink tea, sorry"),
		types.NewReplyEvent("Alpha", "Beta", "tea has its own science too, actually", ""),
	}
}

func TestHeuristicEvaluatorComputesFromContributionShape(t *testing.T) {
	kit := diversity.NewKit(testutil.NewStubEmbedder())
	eval := NewHeuristicEvaluator(kit)

	scores, err := eval.Evaluate(context.Background(), "Alpha", types.Phenotype{}, sampleTranscript())
	require.NoError(t, err)

	require.InDelta(t, 0.4, scores.Engagement, 1e-9) // k=2 -> min(0.4,1)
	require.Equal(t, 0.5, scores.PersonaFidelity)
	require.Equal(t, 1.0, scores.Safety)
	require.False(t, scores.Degraded)
}

func TestHeuristicEvaluatorZeroContributions(t *testing.T) {
	kit := diversity.NewKit(testutil.NewStubEmbedder())
	eval := NewHeuristicEvaluator(kit)

	scores, err := eval.Evaluate(context.Background(), "Ghost", types.Phenotype{}, sampleTranscript())
	require.NoError(t, err)
	require.Equal(t, 0.0, scores.Engagement)
	require.Equal(t, 0.0, scores.ConversationQuality)
	require.Equal(t, 0.0, scores.Diversity)
}

func TestBackendEvaluatorParsesJudgeResponse(t *testing.T) {
	stub := testutil.NewStubBackend()
	stub.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "```json\n{\"engagement\":0.8,\"conversation_quality\":0.6,\"diversity\":0.5,\"persona_fidelity\":0.7,\"safety\":1.0}\n```", nil
	}
	eval := NewBackendEvaluator(stub)

	scores, err := eval.Evaluate(context.Background(), "Alpha", types.Phenotype{SystemPrompt: "You are Alpha."}, sampleTranscript())
	require.NoError(t, err)
	require.Equal(t, 0.8, scores.Engagement)
	require.Equal(t, 0.6, scores.ConversationQuality)
	require.False(t, scores.Degraded)
}

func TestBackendEvaluatorDegradesOnUnparsableResponse(t *testing.T) {
	stub := testutil.NewStubBackend()
	stub.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "I refuse to answer in JSON.", nil
	}
	eval := NewBackendEvaluator(stub)

	scores, err := eval.Evaluate(context.Background(), "Alpha", types.Phenotype{}, sampleTranscript())
	require.NoError(t, err)
	require.True(t, scores.Degraded)
	require.Equal(t, 0.1, scores.Engagement)
	require.Equal(t, 1.0, scores.Safety)
	require.Equal(t, 0.0, scores.ConversationQuality)
}

func TestBackendEvaluatorDegradesOnEmptyResponse(t *testing.T) {
	stub := testutil.NewStubBackend()
	stub.GenerateFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "", nil
	}
	eval := NewBackendEvaluator(stub)

	scores, err := eval.Evaluate(context.Background(), "Alpha", types.Phenotype{}, sampleTranscript())
	require.NoError(t, err)
	require.True(t, scores.Degraded)
}

var _ backend.Backend = (*testutil.StubBackend)(nil)
