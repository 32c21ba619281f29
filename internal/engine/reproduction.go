package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/Keyhole-Koro/snackPersona/internal/compiler"
	"github.com/Keyhole-Koro/snackPersona/internal/genetic"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// produceNextGeneration selects elites by shared fitness, then fills the
// remaining slots by tournament selection, crossover, and optional
// mutation (spec.md §4.7 step 8). Selection, crossover, and mutation all
// draw from the shared RNG and so run sequentially; the optional nickname
// hook that follows is independent per child and is fanned out afterward.
//
// used tracks every name already claimed this generation (starting with
// the elites carried over unchanged) so that crossover, mutation, and
// nickname generation can never mint a name that collides with a sibling
// or an elite (spec.md §3: "names are unique within a population at all
// times").
func (e *Engine) produceNextGeneration(ctx context.Context) ([]types.Individual, error) {
	elites := e.selectElites()

	used := make(map[string]bool, e.Config.PopulationSize)
	children := make([]types.Genotype, 0, e.Config.PopulationSize)
	for _, ind := range elites {
		children = append(children, ind.Genotype)
		used[ind.Genotype.Name] = true
	}

	for len(children) < e.Config.PopulationSize {
		p1 := e.tournamentSelect().Genotype
		p2 := e.tournamentSelect().Genotype

		child := genetic.Crossover(e.RNG, p1, p2, e.NamePool)
		child.Name = claimUniqueName(e.RNG, e.NamePool, used, child.Name)

		if e.RNG.Float64() < e.Config.MutationRate {
			mutated, err := e.Mutator.Mutate(ctx, e.RNG, child)
			if err != nil {
				return nil, err
			}
			delete(used, child.Name)
			mutated.Name = claimUniqueName(e.RNG, e.NamePool, used, mutated.Name)
			child = mutated
		}

		children = append(children, child)
	}

	if e.Config.NicknameEnabled {
		e.generateNicknames(ctx, children[len(elites):], used)
	}

	next := make([]types.Individual, len(children))
	for i, child := range children {
		next[i] = types.Individual{Genotype: child, Phenotype: compiler.Compile(child)}
	}

	logging.GetLogger().Info(ctx, "next generation produced: %d individuals", len(next))
	return next, nil
}

// claimUniqueName returns name if it is not already in used, otherwise
// redraws from pool (excluding names already taken), falling back to a
// numeric suffix once the pool itself is exhausted. It marks the
// returned name as used before returning.
func claimUniqueName(rng *rand.Rand, pool []string, used map[string]bool, name string) string {
	if !used[name] {
		used[name] = true
		return name
	}

	var free []string
	for _, n := range pool {
		if !used[n] {
			free = append(free, n)
		}
	}
	if len(free) > 0 {
		picked := free[rng.Intn(len(free))]
		used[picked] = true
		return picked
	}

	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", name, suffix)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// generateNicknames renames each non-elite child concurrently, bounded by
// MaxConcurrentPosts backend calls in flight at once. Individual
// failures fall back silently inside generateNickname, so this needs no
// error propagation and uses a plain semaphore-bounded wait group rather
// than conc/pool's cancel-on-error fan-out. A nickname that collides
// with any name already claimed this generation is discarded and the
// child keeps its pool-drawn name; used is shared across goroutines and
// guarded by mu.
func (e *Engine) generateNicknames(ctx context.Context, children []types.Genotype, used map[string]bool) {
	limit := int64(e.Config.MaxConcurrentPosts)
	if limit <= 0 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := range children {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			renamed := e.generateNickname(ctx, children[i])
			if renamed.Name == children[i].Name {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if used[renamed.Name] {
				logging.GetLogger().Debug(ctx, "generated nickname %q collides, keeping %q", renamed.Name, children[i].Name)
				return
			}
			delete(used, children[i].Name)
			used[renamed.Name] = true
			children[i] = renamed
		}()
	}
	wg.Wait()
}

// selectElites returns the top Config.EliteCount individuals by shared
// fitness, ties broken by raw fitness, then by name (spec.md §4.7 step 8).
func (e *Engine) selectElites() []types.Individual {
	sorted := make([]types.Individual, len(e.population))
	copy(sorted, e.population)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SharedFitness != sorted[j].SharedFitness {
			return sorted[i].SharedFitness > sorted[j].SharedFitness
		}
		if sorted[i].RawFitness != sorted[j].RawFitness {
			return sorted[i].RawFitness > sorted[j].RawFitness
		}
		return sorted[i].Genotype.Name < sorted[j].Genotype.Name
	})

	count := e.Config.EliteCount
	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}

// tournamentSelect draws Config.TournamentSize individuals uniformly at
// random and returns the one with the highest shared fitness.
func (e *Engine) tournamentSelect() types.Individual {
	n := len(e.population)
	size := e.Config.TournamentSize
	if size > n {
		size = n
	}

	best := e.population[e.RNG.Intn(n)]
	for i := 1; i < size; i++ {
		candidate := e.population[e.RNG.Intn(n)]
		if candidate.SharedFitness > best.SharedFitness {
			best = candidate
		}
	}
	return best
}

const nicknameSystemPrompt = "You are a creative username generator."

// generateNickname asks the backend for a fresh nickname, falling back
// to the pool-drawn name already on child when the request fails or
// produces an unusable result (spec.md §9: "optional post-reproduction
// hook... with the pool-drawn name used as fallback").
func (e *Engine) generateNickname(ctx context.Context, child types.Genotype) types.Genotype {
	backstory, _ := child.Backstory()
	preview := backstory
	if len(preview) > 300 {
		preview = preview[:300]
	}

	prompt := "Create a short, creative social-media nickname (one word, no spaces, " +
		"no special characters) for this person:\n" + preview +
		"\n\nReply with ONLY the nickname, nothing else."

	response, err := e.Backend.Generate(ctx, nicknameSystemPrompt, prompt)
	if err != nil {
		logging.GetLogger().Debug(ctx, "nickname generation failed: %v", err)
		return child
	}

	nickname := firstWord(response)
	if nickname == "" || len(nickname) > 20 {
		return child
	}

	child.Name = nickname
	return child
}

func firstWord(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
