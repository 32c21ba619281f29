// Package store persists populations, transcripts, and per-generation
// statistics under a run directory, in the flat-file layout of
// spec.md §6. There is no database here: the teacher's domain
// dependencies (SQL/columnar stores) have nothing to attach to since
// the spec fixes the wire format to JSON/JSONL files (see DESIGN.md).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
	"github.com/Keyhole-Koro/snackPersona/internal/xerrors"
)

// Store is the persistence capability for one evolution run.
type Store interface {
	SaveGeneration(ctx context.Context, gen int, population []types.Individual) error
	LoadGeneration(ctx context.Context, gen int) ([]types.Genotype, error)
	ListGenerations(ctx context.Context) ([]int, error)
	SaveTranscripts(ctx context.Context, gen int, transcripts []types.Transcript) error
	AppendStats(ctx context.Context, stats types.GenerationStats) error
}

// FileStore is the JSON-file Store implementation (spec.md §6's layout).
type FileStore struct {
	RunDir string
}

// NewFileStore creates a FileStore rooted at runDir, creating it if
// necessary.
func NewFileStore(runDir string) (*FileStore, error) {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, xerrors.Wrap(err, xerrors.StoreWriteFailed, "creating run directory")
	}
	return &FileStore{RunDir: runDir}, nil
}

func (s *FileStore) genPath(gen int) string {
	return filepath.Join(s.RunDir, fmt.Sprintf("gen_%d.json", gen))
}

func (s *FileStore) transcriptsPath(gen int) string {
	return filepath.Join(s.RunDir, fmt.Sprintf("transcripts_gen_%d.json", gen))
}

func (s *FileStore) statsPath() string {
	return filepath.Join(s.RunDir, "generation_stats.jsonl")
}

// SaveGeneration writes the population's genotypes as a JSON array
// (spec.md §6: "a JSON array of genotypes; each object has a name
// string and an attributes object").
func (s *FileStore) SaveGeneration(ctx context.Context, gen int, population []types.Individual) error {
	genotypes := make([]types.Genotype, len(population))
	for i, ind := range population {
		genotypes[i] = ind.Genotype
	}

	data, err := json.MarshalIndent(genotypes, "", "  ")
	if err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "marshaling generation")
	}
	return writeFileLocked(s.genPath(gen), data)
}

// LoadGeneration reads back a previously saved generation's genotypes.
func (s *FileStore) LoadGeneration(ctx context.Context, gen int) ([]types.Genotype, error) {
	data, err := os.ReadFile(s.genPath(gen))
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.StoreWriteFailed, "reading generation")
	}
	var genotypes []types.Genotype
	if err := json.Unmarshal(data, &genotypes); err != nil {
		return nil, xerrors.Wrap(err, xerrors.StoreWriteFailed, "parsing generation")
	}
	return genotypes, nil
}

// ListGenerations returns the indices of every gen_<N>.json file present,
// sorted ascending, so the engine can resume from the highest one.
func (s *FileStore) ListGenerations(ctx context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.RunDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, xerrors.Wrap(err, xerrors.StoreWriteFailed, "listing run directory")
	}

	var gens []int
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "gen_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, "gen_"), ".json")
		n, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		gens = append(gens, n)
	}
	sort.Ints(gens)
	return gens, nil
}

// SaveTranscripts writes one generation's group transcripts as a JSON
// array of transcripts (spec.md §6).
func (s *FileStore) SaveTranscripts(ctx context.Context, gen int, transcripts []types.Transcript) error {
	data, err := json.MarshalIndent(transcripts, "", "  ")
	if err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "marshaling transcripts")
	}
	return writeFileLocked(s.transcriptsPath(gen), data)
}

// AppendStats appends one JSON object per line to generation_stats.jsonl
// under an advisory lock (spec.md §5: "appended under lock, one record
// per line").
func (s *FileStore) AppendStats(ctx context.Context, stats types.GenerationStats) error {
	line, err := json.Marshal(stats)
	if err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "marshaling stats record")
	}

	unlock, err := acquireLock(s.statsPath())
	if err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "locking stats log")
	}
	defer unlock()

	f, err := os.OpenFile(s.statsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "opening stats log")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "appending stats record")
	}
	return nil
}

// writeFileLocked writes data to path while holding the advisory lock on
// path. Only readers that take the same lock are kept from seeing a
// partially written file; LoadGeneration reads without it.
func writeFileLocked(path string, data []byte) error {
	unlock, err := acquireLock(path)
	if err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "locking output file")
	}
	defer unlock()

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrap(err, xerrors.StoreWriteFailed, "writing output file")
	}
	return nil
}
