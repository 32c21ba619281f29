package logging

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	generationKey
)

// WithRunID attaches the current run's identifier to ctx for log correlation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the run identifier attached by WithRunID, if any.
func GetRunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	return v, ok
}

// WithGeneration attaches the current generation index to ctx.
func WithGeneration(ctx context.Context, generation int) context.Context {
	return context.WithValue(ctx, generationKey, generation)
}

// GetGeneration retrieves the generation index attached by WithGeneration, if any.
func GetGeneration(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(generationKey).(int)
	return v, ok
}
