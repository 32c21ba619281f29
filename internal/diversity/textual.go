// Package diversity implements the embedding-based textual diversity and
// structural genotype distance metrics of spec.md §4.4.
package diversity

import (
	"context"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
)

// Kit bundles the embedding-backed diversity calculations. It holds no
// state beyond the embedder handle, which is shared read-only.
type Kit struct {
	Embedder backend.Embedder
}

// NewKit creates a Kit backed by the given embedder.
func NewKit(embedder backend.Embedder) *Kit {
	return &Kit{Embedder: embedder}
}

// TextualDiversity is the mean pairwise cosine distance across all
// non-empty texts, clamped to [0,1]. Fewer than two non-empty texts
// yields 0.
func (k *Kit) TextualDiversity(ctx context.Context, texts []string) (float64, error) {
	nonEmpty := filterNonEmpty(texts)
	if len(nonEmpty) < 2 {
		return 0, nil
	}

	vectors := make([][]float64, len(nonEmpty))
	for i, t := range nonEmpty {
		v, err := k.Embedder.Embed(ctx, t)
		if err != nil {
			return 0, err
		}
		vectors[i] = v
	}

	return meanPairwiseCosineDistance(vectors), nil
}

// AgentOutputDiversity computes TextualDiversity over every post/reply
// text authored by one agent (spec.md §4.4, "per-agent output diversity").
func (k *Kit) AgentOutputDiversity(ctx context.Context, texts []string) (float64, error) {
	return k.TextualDiversity(ctx, texts)
}

// PopulationTextualDiversity computes the mean embedding per agent, then
// the mean pairwise cosine distance across agents' mean embeddings
// (spec.md §4.4, "population textual diversity").
func (k *Kit) PopulationTextualDiversity(ctx context.Context, agentTexts map[string][]string) (float64, error) {
	var meanVectors [][]float64
	for _, texts := range agentTexts {
		nonEmpty := filterNonEmpty(texts)
		if len(nonEmpty) == 0 {
			continue
		}
		vecs := make([][]float64, len(nonEmpty))
		for i, t := range nonEmpty {
			v, err := k.Embedder.Embed(ctx, t)
			if err != nil {
				return 0, err
			}
			vecs[i] = v
		}
		meanVectors = append(meanVectors, meanVector(vecs))
	}

	if len(meanVectors) < 2 {
		return 0, nil
	}
	return meanPairwiseCosineDistance(meanVectors), nil
}

func filterNonEmpty(texts []string) []string {
	var out []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

func meanVector(vecs [][]float64) []float64 {
	if len(vecs) == 0 {
		return nil
	}
	dim := len(vecs[0])
	mean := make([]float64, dim)
	for _, v := range vecs {
		for i := 0; i < dim && i < len(v); i++ {
			mean[i] += v[i]
		}
	}
	floats.Scale(1.0/float64(len(vecs)), mean)
	return mean
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	a, b = a[:n], b[:n]

	dot := floats.Dot(a, b)
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}

func meanPairwiseCosineDistance(vectors [][]float64) float64 {
	n := len(vectors)
	if n < 2 {
		return 0
	}

	var sum float64
	var count int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := cosineSimilarity(vectors[i], vectors[j])
			dist := 1 - sim
			sum += dist
			count++
		}
	}
	if count == 0 {
		return 0
	}

	mean := sum / float64(count)
	return clamp01(mean)
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
