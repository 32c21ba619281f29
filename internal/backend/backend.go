// Package backend defines the two external capabilities the rest of
// snackPersona treats as opaque (spec.md §6): text generation and text
// embedding. It also provides the one concrete Backend implementation,
// backed by the Anthropic API.
package backend

import "context"

// GenerateOptions configures a single Generate call.
type GenerateOptions struct {
	ModelID     string
	Temperature float64
	MaxTokens   int
}

// GenerateOption mutates GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithModelID overrides the default model for one call.
func WithModelID(id string) GenerateOption {
	return func(o *GenerateOptions) { o.ModelID = id }
}

// WithTemperature overrides the sampling temperature for one call.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) { o.Temperature = t }
}

// WithMaxTokens overrides the response token budget for one call.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) { o.MaxTokens = n }
}

func newGenerateOptions(opts ...GenerateOption) *GenerateOptions {
	o := &GenerateOptions{Temperature: 0.7, MaxTokens: 1024}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Backend is the text-generation capability (spec.md §6). Implementations
// must never return an error for model-level refusals — an empty string
// signals a refusal; transport-level failures return an error so the
// caller can retry.
type Backend interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts ...GenerateOption) (string, error)
}

// Embedder is the text-embedding capability (spec.md §6): a fixed
// dimensionality, deterministic-within-process mapping from text to
// vector. HTTPEmbedder is the production implementation in this package;
// the specific model behind it is an external collaborator (spec.md §1)
// chosen by the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
