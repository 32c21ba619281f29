package backend

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/xerrors"
)

// RetryPolicy controls the exponential backoff applied to transient
// backend failures (spec.md §5): base 1s, factor 2, at most 3 attempts.
type RetryPolicy struct {
	BaseDelay   time.Duration
	Factor      float64
	MaxAttempts int
}

// DefaultRetryPolicy is the policy spec.md §5 mandates.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{BaseDelay: time.Second, Factor: 2, MaxAttempts: 3}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt)))
}

// AnthropicBackend implements Backend over the Anthropic Messages API.
type AnthropicBackend struct {
	client  *anthropic.Client
	model   anthropic.Model
	retry   RetryPolicy
	timeout time.Duration
}

// NewAnthropicBackend creates a Backend backed by the given API key and
// default model. timeout bounds every individual Generate call
// (spec.md §5's default 30s generation timeout).
func NewAnthropicBackend(apiKey string, model anthropic.Model, timeout time.Duration) *AnthropicBackend {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicBackend{
		client:  &client,
		model:   model,
		retry:   DefaultRetryPolicy(),
		timeout: timeout,
	}
}

// isTransient reports whether err warrants a retry rather than an
// immediate fallback (spec.md §7).
func isTransient(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 408, 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Generate implements Backend, retrying transient failures with
// exponential backoff before surfacing an error to the caller.
func (a *AnthropicBackend) Generate(ctx context.Context, systemPrompt, userPrompt string, opts ...GenerateOption) (string, error) {
	o := newGenerateOptions(opts...)
	model := a.model
	if o.ModelID != "" {
		model = anthropic.Model(o.ModelID)
	}
	logger := logging.GetLogger()

	var lastErr error
	for attempt := 0; attempt < a.retry.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		text, err := a.generateOnce(callCtx, model, systemPrompt, userPrompt, o)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isTransient(err) {
			return "", xerrors.Wrap(err, xerrors.LLMGenerationFailed, "anthropic generate failed")
		}

		logger.Warn(ctx, "anthropic generate attempt %d/%d failed: %v", attempt+1, a.retry.MaxAttempts, err)

		if attempt < a.retry.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(a.retry.delay(attempt)):
			}
		}
	}

	return "", xerrors.WithFields(
		xerrors.Wrap(lastErr, xerrors.LLMGenerationFailed, "anthropic generate exhausted retries"),
		xerrors.Fields{"attempts": a.retry.MaxAttempts})
}

func (a *AnthropicBackend) generateOnce(ctx context.Context, model anthropic.Model, systemPrompt, userPrompt string, o *GenerateOptions) (string, error) {
	params := anthropic.MessageNewParams{
		Model: model,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		MaxTokens:   int64(o.MaxTokens),
		Temperature: anthropic.Float(o.Temperature),
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	if message == nil || len(message.Content) == 0 {
		// Model-level refusal: never an error, per Backend's contract.
		return "", nil
	}

	block := message.Content[0]
	if block.Type != "text" {
		return "", nil
	}
	return block.Text, nil
}
