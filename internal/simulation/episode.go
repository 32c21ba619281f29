package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// thinkingPlaceholder is the synthetic content recorded when a backend
// call for a post or reply returns empty or fails persistently, so
// downstream scoring always sees well-defined content (spec.md §4.5's
// backend failure policy).
func thinkingPlaceholder(name string) string {
	return fmt.Sprintf("[%s is thinking…]", name)
}

// Runner executes group episodes against a text-generation backend.
type Runner struct {
	Backend        backend.Backend
	MaxConcurrency int

	// EngageTimeout bounds each engage-decision call independently of
	// the backend's own generation timeout (spec.md §5's separate 10s
	// engage-call timeout). Zero means rely on the backend's default.
	EngageTimeout time.Duration
}

// NewRunner creates a Runner backed by b. maxConcurrency bounds Phase 1's
// fan-out; zero or negative means unbounded (one goroutine per agent).
func NewRunner(b backend.Backend, maxConcurrency int) *Runner {
	return &Runner{Backend: b, MaxConcurrency: maxConcurrency}
}

// RunEpisode executes the protocol of spec.md §4.5 for one group of
// agents on one topic: a parallel posting phase followed by `rounds`
// sequential engage/reply rounds. rng drives every random choice
// (shuffle order, feed-entry selection) so the episode is reproducible
// given the same seed and backend responses.
func (r *Runner) RunEpisode(ctx context.Context, agents []*Agent, topic string, rounds int, rng *rand.Rand) (types.Transcript, error) {
	f := newFeed()
	var transcript types.Transcript

	posts, err := r.runPostPhase(ctx, agents, topic)
	if err != nil {
		return nil, err
	}
	for i, agent := range agents {
		ev := types.NewPostEvent(agent.Name, posts[i].text)
		ev.Degraded = posts[i].degraded
		agent.remember(ev)
		transcript = append(transcript, ev)
		f.append(agent.Name, posts[i].text)
	}

	for round := 0; round < rounds; round++ {
		order := shuffledIndices(rng, len(agents))
		for _, idx := range order {
			agent := agents[idx]
			eligible := f.eligibleFor(agent.Name)
			if len(eligible) == 0 {
				continue
			}
			target := f.at(eligible[rng.Intn(len(eligible))])

			ev := r.engageStep(ctx, agent, target)
			agent.remember(ev)
			transcript = append(transcript, ev)
			if ev.Type == types.EventReply {
				f.append(agent.Name, ev.Content)
			}
		}
	}

	return transcript, nil
}

// generationResult is one agent's post-phase output, alongside whether
// it came from the thinking-placeholder fallback.
type generationResult struct {
	text     string
	degraded bool
}

func (r *Runner) runPostPhase(ctx context.Context, agents []*Agent, topic string) ([]generationResult, error) {
	results := make([]generationResult, len(agents))

	p := pool.New().WithContext(ctx).WithCancelOnError()
	if r.MaxConcurrency > 0 {
		p = p.WithMaxGoroutines(r.MaxConcurrency)
	}

	for i, agent := range agents {
		i, agent := i, agent
		p.Go(func(ctx context.Context) error {
			prompt := fmt.Sprintf("The topic today is: %s\n\nWrite one short social-media post about it in your own voice.", topic)
			text, err := r.Backend.Generate(ctx, agent.Phenotype.SystemPrompt, prompt)
			if err != nil || strings.TrimSpace(text) == "" {
				results[i] = generationResult{text: thinkingPlaceholder(agent.Name), degraded: true}
				return nil
			}
			results[i] = generationResult{text: text}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// engageStep asks agent whether it wants to reply to target, and returns
// the resulting reply or pass event.
func (r *Runner) engageStep(ctx context.Context, agent *Agent, target feedEntry) types.TranscriptEvent {
	decision, degraded := r.askEngage(ctx, agent, target)
	if !decision {
		ev := types.NewPassEvent(agent.Name, target.Author)
		ev.Degraded = degraded
		return ev
	}

	prompt := fmt.Sprintf(
		"%s posted:\n%s\n\nWrite a short reply to it in your own voice.",
		target.Author, target.Content,
	)
	text, err := r.Backend.Generate(ctx, agent.Phenotype.SystemPrompt, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		text = thinkingPlaceholder(agent.Name)
		degraded = true
	}
	ev := types.NewReplyEvent(agent.Name, target.Author, text, target.Content)
	ev.Degraded = degraded
	return ev
}

// askEngage asks the backend whether agent would reply to target,
// parsing the answer case-insensitively; anything without a clear "yes"
// is "no" (favoring selectivity). When the backend call itself fails,
// the decision defaults to yes and the event is reported degraded.
func (r *Runner) askEngage(ctx context.Context, agent *Agent, target feedEntry) (bool, bool) {
	callCtx := ctx
	if r.EngageTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.EngageTimeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(
		"%s posted:\n%s\n\nWould this persona reply? Answer yes or no.",
		target.Author, target.Content,
	)
	answer, err := r.Backend.Generate(callCtx, agent.Phenotype.SystemPrompt, prompt)
	if err != nil {
		logging.GetLogger().Warn(ctx, "engage decision unavailable for %s, defaulting to yes", agent.Name)
		return true, true
	}
	return strings.Contains(strings.ToLower(answer), "yes"), false
}

func shuffledIndices(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}
