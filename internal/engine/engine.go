// Package engine orchestrates the evolutionary loop: population
// initialization, group simulation, evaluation, fitness sharing,
// selection, reproduction, and persistence (spec.md §4.7). Grounded on
// original_source/orchestrator/engine.py's EvolutionEngine, translated
// to explicit Go types and an injected *rand.Rand instead of the
// `random` module singleton.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/compiler"
	"github.com/Keyhole-Koro/snackPersona/internal/config"
	"github.com/Keyhole-Koro/snackPersona/internal/diversity"
	"github.com/Keyhole-Koro/snackPersona/internal/evaluator"
	"github.com/Keyhole-Koro/snackPersona/internal/genetic"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/simulation"
	"github.com/Keyhole-Koro/snackPersona/internal/store"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
	"github.com/Keyhole-Koro/snackPersona/internal/xerrors"
)

// Engine drives the full evolutionary loop over one run directory.
type Engine struct {
	Backend   backend.Backend
	Store     store.Store
	Evaluator evaluator.Evaluator
	Mutator   genetic.Mutator
	Diversity *diversity.Kit
	Runner    *simulation.Runner
	NamePool  []string

	Config config.EvolutionConfig
	RNG    *rand.Rand

	population []types.Individual
}

// New creates an Engine from its collaborators and configuration.
func New(
	b backend.Backend,
	st store.Store,
	eval evaluator.Evaluator,
	mutator genetic.Mutator,
	kit *diversity.Kit,
	namePool []string,
	cfg config.EvolutionConfig,
	rng *rand.Rand,
) *Engine {
	runner := simulation.NewRunner(b, cfg.MaxConcurrentPosts)
	runner.EngageTimeout = time.Duration(cfg.EngageTimeoutSeconds) * time.Second

	if be, ok := eval.(*evaluator.BackendEvaluator); ok {
		be.Timeout = time.Duration(cfg.JudgeTimeoutSeconds) * time.Second
	}

	return &Engine{
		Backend:   b,
		Store:     st,
		Evaluator: eval,
		Mutator:   mutator,
		Diversity: kit,
		Runner:    runner,
		NamePool:  namePool,
		Config:    cfg,
		RNG:       rng,
	}
}

// InitializePopulation seeds the population from seedGenotypes,
// truncating or filling by mutation to reach the configured population
// size (spec.md §4.7 step 1).
func (e *Engine) InitializePopulation(ctx context.Context, seedGenotypes []types.Genotype) error {
	population := make([]types.Individual, 0, e.Config.PopulationSize)
	for _, g := range seedGenotypes {
		if len(population) >= e.Config.PopulationSize {
			break
		}
		population = append(population, types.Individual{Genotype: g, Phenotype: compiler.Compile(g)})
	}

	for len(population) < e.Config.PopulationSize && len(population) > 0 {
		parent := population[e.RNG.Intn(len(population))].Genotype
		mutant, err := e.Mutator.Mutate(ctx, e.RNG, parent)
		if err != nil {
			return xerrors.Wrap(err, xerrors.InvariantViolation, "seeding population by mutation")
		}
		population = append(population, types.Individual{Genotype: mutant, Phenotype: compiler.Compile(mutant)})
	}

	if len(population) == 0 {
		return xerrors.New(xerrors.InvalidInput, "cannot initialize population from zero seed genotypes")
	}

	e.population = population
	logging.GetLogger().Info(ctx, "population initialized with %d individuals", len(e.population))
	return nil
}

// Run executes the generation loop from startGen through
// Config.Generations-1 inclusive (spec.md §4.7's "Generation loop"). When
// Config.GenerationTimeoutSeconds is set, each generation's evaluation
// phase is bounded by it; on expiry the groups that finished in time are
// still persisted and Run returns a non-fatal timeout error rather than
// continuing to the next generation (spec.md §5's "generation-level
// timeout... partial results for completed groups are persisted").
func (e *Engine) Run(ctx context.Context, startGen int) error {
	for gen := startGen; gen < e.Config.Generations; gen++ {
		genCtx := logging.WithGeneration(ctx, gen)
		logging.GetLogger().Info(genCtx, "starting generation %d", gen)

		evalCtx := genCtx
		var cancel context.CancelFunc
		hasDeadline := e.Config.GenerationTimeoutSeconds > 0
		if hasDeadline {
			evalCtx, cancel = context.WithTimeout(genCtx, time.Duration(e.Config.GenerationTimeoutSeconds)*time.Second)
		}

		transcripts, popDiversity, err := e.evaluatePopulation(evalCtx)
		timedOut := hasDeadline && evalCtx.Err() == context.DeadlineExceeded
		if cancel != nil {
			cancel()
		}
		if err != nil {
			return err
		}

		e.applyFitnessSharing()

		// Persistence always uses the un-timed-out parent context: a
		// generation timeout must not also cut off writing out whatever
		// was completed.
		if err := e.persistGeneration(genCtx, gen, transcripts, popDiversity); err != nil {
			return err
		}

		if timedOut {
			return xerrors.Wrap(evalCtx.Err(), xerrors.Timeout,
				fmt.Sprintf("generation %d exceeded its timeout; partial results persisted", gen))
		}

		if gen == e.Config.Generations-1 {
			break
		}

		next, err := e.produceNextGeneration(genCtx)
		if err != nil {
			return err
		}
		e.population = next
	}

	return nil
}

// Resume inspects the store for existing generations and returns the
// generation index Run should start from, loading that generation's
// population if one exists (spec.md §4.7's "Resume semantics"). It
// returns done=true when the run has already reached its target
// generation count.
func (e *Engine) Resume(ctx context.Context) (startGen int, done bool, err error) {
	gens, err := e.Store.ListGenerations(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(gens) == 0 {
		return 0, false, nil
	}

	last := gens[len(gens)-1]
	if last >= e.Config.Generations-1 {
		return 0, true, nil
	}

	genotypes, err := e.Store.LoadGeneration(ctx, last)
	if err != nil {
		return 0, false, err
	}

	population := make([]types.Individual, len(genotypes))
	for i, g := range genotypes {
		population[i] = types.Individual{Genotype: g, Phenotype: compiler.Compile(g)}
	}
	e.population = population

	return last + 1, false, nil
}

// Population returns the engine's current population, for inspection or
// testing.
func (e *Engine) Population() []types.Individual {
	return e.population
}
