package engine

import (
	"context"
	"math/rand"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/simulation"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// evaluatePopulation runs one generation's group episodes and scores
// every individual against the transcript of the group it participated
// in (spec.md §4.7 step 4). Group episodes and per-individual
// evaluations are each fanned out, independent of one another
// (spec.md §5's fan-out points 1 and 3); only Phase 2 within a single
// episode is sequential, enforced inside simulation.Runner.
//
// Neither fan-out aborts the generation on a single group or individual
// failure (spec.md §7's "partial generation failure" row): a group whose
// episode errors out simply contributes no transcript, and the
// individuals that belonged to it keep a zero-value score (raw_fitness
// 0) rather than blocking the groups that succeeded.
func (e *Engine) evaluatePopulation(ctx context.Context) ([]types.Transcript, float64, error) {
	topics := e.generateTopics(ctx)
	groups, groupTopics := e.assembleGroups(topics)

	transcripts, ok := e.runGroupEpisodes(ctx, groups, groupTopics)

	agentTexts := e.scoreIndividuals(ctx, groups, transcripts, ok)

	popDiversity, err := e.Diversity.PopulationTextualDiversity(ctx, agentTexts)
	if err != nil {
		logging.GetLogger().Warn(ctx, "population diversity computation failed, recording 0: %v", err)
		popDiversity = 0
	}

	completed := make([]types.Transcript, 0, len(transcripts))
	for gi, t := range transcripts {
		if ok[gi] {
			completed = append(completed, t)
		}
	}
	return completed, popDiversity, nil
}

// assembleGroups shuffles the population and partitions it into groups
// of exactly Config.GroupSize, dropping any tail remainder, then assigns
// each group a uniformly random topic (spec.md §4.7 step 3).
func (e *Engine) assembleGroups(topics []string) ([][]int, []string) {
	n := len(e.population)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	e.RNG.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

	groupSize := e.Config.GroupSize
	var groups [][]int
	var groupTopics []string
	for start := 0; start+groupSize <= n; start += groupSize {
		groups = append(groups, indices[start:start+groupSize])
		groupTopics = append(groupTopics, topics[e.RNG.Intn(len(topics))])
	}
	return groups, groupTopics
}

// runGroupEpisodes runs every group's episode concurrently. A failing
// group is logged, its slot in the result stays empty and ok[gi] is
// false; it never cancels the groups still in flight.
func (e *Engine) runGroupEpisodes(ctx context.Context, groups [][]int, groupTopics []string) ([]types.Transcript, []bool) {
	transcripts := make([]types.Transcript, len(groups))
	ok := make([]bool, len(groups))
	seeds := make([]int64, len(groups))
	for i := range seeds {
		seeds[i] = e.RNG.Int63()
	}

	p := pool.New().WithContext(ctx)
	if e.Config.MaxConcurrentGroups > 0 {
		p = p.WithMaxGoroutines(e.Config.MaxConcurrentGroups)
	}

	for gi, group := range groups {
		gi, group := gi, group
		p.Go(func(ctx context.Context) error {
			agents := make([]*simulation.Agent, len(group))
			for i, idx := range group {
				ind := e.population[idx]
				agents[i] = simulation.NewAgent(ind.Genotype, ind.Phenotype)
			}

			groupRNG := rand.New(rand.NewSource(seeds[gi]))
			transcript, err := e.Runner.RunEpisode(ctx, agents, groupTopics[gi], e.Config.ReplyRounds, groupRNG)
			if err != nil {
				logging.GetLogger().Warn(ctx, "group %d episode failed, excluding it from this generation: %v", gi, err)
				return nil
			}
			transcripts[gi] = transcript
			ok[gi] = true
			return nil
		})
	}

	// No WithCancelOnError above, so Wait's error is always nil; group
	// failures are captured per-group in ok instead of aborting siblings.
	_ = p.Wait()
	return transcripts, ok
}

// scoreIndividuals evaluates every individual belonging to a group whose
// episode succeeded, and returns the per-agent text map used for
// population-level diversity. Individuals in a failed group, or whose
// own evaluation call fails, keep their zero-value scores (raw_fitness
// 0) and are marked degraded; they never block their group siblings.
func (e *Engine) scoreIndividuals(ctx context.Context, groups [][]int, transcripts []types.Transcript, ok []bool) map[string][]string {
	agentTexts := make(map[string][]string)
	var mu sync.Mutex

	p := pool.New().WithContext(ctx)
	if e.Config.MaxConcurrentGroups > 0 {
		p = p.WithMaxGoroutines(e.Config.MaxConcurrentGroups)
	}

	for gi, group := range groups {
		gi, group := gi, group
		if !ok[gi] {
			for _, idx := range group {
				e.population[idx].Scores.Degraded = true
			}
			continue
		}
		p.Go(func(ctx context.Context) error {
			transcript := transcripts[gi]
			for _, idx := range group {
				ind := &e.population[idx]
				scores, err := e.Evaluator.Evaluate(ctx, ind.Genotype.Name, ind.Phenotype, transcript)
				if err != nil {
					logging.GetLogger().Warn(ctx, "evaluation failed for %s, leaving score at zero: %v", ind.Genotype.Name, err)
					ind.Scores.Degraded = true
					continue
				}
				if !scores.Degraded {
					scores.Degraded = transcript.AnyDegradedBy(ind.Genotype.Name)
				}
				ind.Scores = scores

				mu.Lock()
				agentTexts[ind.Genotype.Name] = transcript.AuthoredBy(ind.Genotype.Name)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = p.Wait()
	return agentTexts
}
