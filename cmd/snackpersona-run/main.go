// Command snackpersona-run drives one evolutionary run: load
// configuration, resume or initialize a population, and run the
// generation loop to completion. Flag parsing is intentionally thin
// (spec.md §1: "CLI parsing... out of scope") — this wires collaborators
// and defers all behavior to internal/engine.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/config"
	"github.com/Keyhole-Koro/snackPersona/internal/diversity"
	"github.com/Keyhole-Koro/snackPersona/internal/engine"
	"github.com/Keyhole-Koro/snackPersona/internal/evaluator"
	"github.com/Keyhole-Koro/snackPersona/internal/genetic"
	"github.com/Keyhole-Koro/snackPersona/internal/logging"
	"github.com/Keyhole-Koro/snackPersona/internal/store"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
	"github.com/Keyhole-Koro/snackPersona/internal/xerrors"
)

const (
	exitOK                = 0
	exitConfigurationErr  = 2
	exitInitialBackendErr = 3
	exitInterrupted       = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "", "path to evolution_config.yaml")
		seedsPath  = flag.String("seeds", "", "path to seed_personas.json")
		poolsPath  = flag.String("pools", "", "path to mutation_pools.json")
		judge      = flag.Bool("judge-backend", false, "score fitness via backend judge instead of heuristics")
	)
	flag.Parse()

	logger := logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(os.Getenv("SNACKPERSONA_LOG_LEVEL")),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
	})
	logging.SetLogger(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	logger.Info(ctx, "starting run %s", runID)

	cfg, err := config.LoadEvolutionConfig(ctx, *configPath)
	if err != nil {
		logger.Error(ctx, "loading evolution config: %v", err)
		return exitConfigurationErr
	}

	seeds, err := config.LoadSeedPersonas(*seedsPath)
	if err != nil {
		logger.Error(ctx, "loading seed personas: %v", err)
		return exitConfigurationErr
	}

	pool, err := config.LoadMutationPools(*poolsPath)
	if err != nil {
		logger.Error(ctx, "loading mutation pools: %v", err)
		return exitConfigurationErr
	}

	if len(seeds) == 0 {
		seeds = defaultSeeds(pool, cfg.PopulationSize)
	}

	b := newBackend(cfg)
	embedder := newEmbedder(cfg)
	st, err := store.NewFileStore(cfg.RunDir)
	if err != nil {
		logger.Error(ctx, "opening run directory %q: %v", cfg.RunDir, err)
		return exitConfigurationErr
	}

	kit := diversity.NewKit(embedder)
	eval := newEvaluator(*judge, b, kit)
	mutator := genetic.NewBackendMutator(b, genetic.NewPoolMutator(pool))

	e := engine.New(b, st, eval, mutator, kit, pool.Names, cfg, rand.New(rand.NewSource(cfg.Seed)))

	startGen, done, err := e.Resume(ctx)
	if err != nil {
		logger.Error(ctx, "resuming run: %v", err)
		return exitInterrupted
	}
	if done {
		logger.Info(ctx, "run already complete at %d generations", cfg.Generations)
		return exitOK
	}

	if startGen == 0 {
		if err := e.InitializePopulation(ctx, seeds); err != nil {
			logger.Error(ctx, "initializing population: %v", err)
			return exitConfigurationErr
		}
	}

	if err := e.Run(ctx, startGen); err != nil {
		if code, ok := xerrors.CodeOf(err); ok {
			switch code {
			case xerrors.ConfigurationError:
				logger.Error(ctx, "configuration error: %v", err)
				return exitConfigurationErr
			case xerrors.Timeout:
				logger.Warn(ctx, "generation timeout, partial results persisted: %v", err)
				return exitInterrupted
			}
		}
		if ctx.Err() != nil {
			logger.Warn(ctx, "run interrupted: %v", err)
			return exitInterrupted
		}
		if startGen == 0 {
			logger.Error(ctx, "unrecoverable backend error on initial generation: %v", err)
			return exitInitialBackendErr
		}
		logger.Error(ctx, "run failed: %v", err)
		return exitInterrupted
	}

	logger.Info(ctx, "run complete")
	return exitOK
}

// defaultSeeds fills a starting population from the mutation pool's own
// catalogs when no seed_personas file is supplied.
func defaultSeeds(pool genetic.Pool, n int) []types.Genotype {
	if len(pool.Names) == 0 || n <= 0 {
		return nil
	}
	seeds := make([]types.Genotype, 0, n)
	for i := 0; i < n && i < len(pool.Names); i++ {
		g := types.NewGenotype(pool.Names[i])
		g.Attributes[types.AttrOccupation] = types.StringAttr(pool.Occupations[i%len(pool.Occupations)])
		g.Attributes[types.AttrCoreValues] = types.ListAttr([]string{pool.CoreValues[i%len(pool.CoreValues)]})
		g.Attributes[types.AttrCommunicationStyle] = types.StringAttr(pool.CommunicationStyles[i%len(pool.CommunicationStyles)])
		seeds = append(seeds, g)
	}
	return seeds
}

func newBackend(cfg config.EvolutionConfig) backend.Backend {
	timeout := time.Duration(cfg.BackendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := anthropic.Model(envOr("SNACKPERSONA_MODEL", string(anthropic.ModelClaudeSonnet4_5_20250929)))
	return backend.NewAnthropicBackend(os.Getenv("ANTHROPIC_API_KEY"), model, timeout)
}

func newEmbedder(cfg config.EvolutionConfig) backend.Embedder {
	timeout := time.Duration(cfg.BackendTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return backend.NewHTTPEmbedder(
		envOr("SNACKPERSONA_EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		os.Getenv("SNACKPERSONA_EMBEDDING_API_KEY"),
		envOr("SNACKPERSONA_EMBEDDING_MODEL", "text-embedding-3-small"),
		timeout,
	)
}

func newEvaluator(useJudge bool, b backend.Backend, kit *diversity.Kit) evaluator.Evaluator {
	if useJudge {
		return evaluator.NewBackendEvaluator(b)
	}
	return evaluator.NewHeuristicEvaluator(kit)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
