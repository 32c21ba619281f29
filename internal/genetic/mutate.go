// Package genetic implements the mutation and crossover operators over
// Genotype values (spec.md §4.2, §4.3). Every operator takes an explicit
// *rand.Rand rather than reaching for a package-level RNG, so a run is
// reproducible end to end given a fixed seed (spec.md §9).
package genetic

import (
	"context"
	"math/rand"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// Mutator produces a variant of a genotype.
type Mutator interface {
	Mutate(ctx context.Context, rng *rand.Rand, g types.Genotype) (types.Genotype, error)
}

type strategy int

const (
	strategyTraitPerturb strategy = iota
	strategyListSwap
	strategyStyleReplace
	strategyAgeShift
	strategyBackstoryEvent
)

var allStrategies = []strategy{
	strategyTraitPerturb,
	strategyListSwap,
	strategyStyleReplace,
	strategyAgeShift,
	strategyBackstoryEvent,
}

// PoolMutator applies 1 or 2 randomly chosen structural strategies from a
// static value catalog (spec.md §4.2's strategy table).
type PoolMutator struct {
	Pool Pool
}

// NewPoolMutator creates a PoolMutator backed by pool.
func NewPoolMutator(pool Pool) *PoolMutator {
	return &PoolMutator{Pool: pool}
}

func (m *PoolMutator) Mutate(ctx context.Context, rng *rand.Rand, g types.Genotype) (types.Genotype, error) {
	child := g.Clone()

	n := 1 + rng.Intn(2) // 1 or 2 strategies
	chosen := pickDistinct(rng, allStrategies, n)

	for _, s := range chosen {
		applyStrategy(rng, &child, s, m.Pool)
	}

	return child, nil
}

func pickDistinct(rng *rand.Rand, options []strategy, n int) []strategy {
	perm := rng.Perm(len(options))
	out := make([]strategy, 0, n)
	for i := 0; i < n && i < len(perm); i++ {
		out = append(out, options[perm[i]])
	}
	return out
}

func applyStrategy(rng *rand.Rand, g *types.Genotype, s strategy, pool Pool) {
	switch s {
	case strategyTraitPerturb:
		traitPerturb(rng, g)
	case strategyListSwap:
		listSwap(rng, g, pool)
	case strategyStyleReplace:
		styleReplace(rng, g, pool)
	case strategyAgeShift:
		ageShift(rng, g)
	case strategyBackstoryEvent:
		backstoryEvent(rng, g, pool)
	}
}

func traitPerturb(rng *rand.Rand, g *types.Genotype) {
	traits, ok := g.Attributes[types.AttrPersonalityTraits].AsTraits()
	if !ok || len(traits) == 0 {
		return
	}
	keys := make([]string, 0, len(traits))
	for k := range traits {
		keys = append(keys, k)
	}
	key := keys[rng.Intn(len(keys))]

	delta := -0.15 + rng.Float64()*0.30
	v := clamp01(traits[key] + delta)

	updated := make(map[string]float64, len(traits))
	for k, val := range traits {
		updated[k] = val
	}
	updated[key] = v
	g.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(updated)
}

func listSwap(rng *rand.Rand, g *types.Genotype, pool Pool) {
	candidates := []struct {
		key  string
		pool []string
	}{
		{types.AttrHobbies, pool.Hobbies},
		{types.AttrCoreValues, pool.CoreValues},
		{types.AttrGoals, pool.Goals},
	}
	field := candidates[rng.Intn(len(candidates))]

	list, ok := g.Attributes[field.key].AsList()
	if !ok || len(field.pool) == 0 {
		return
	}

	present := make(map[string]bool, len(list))
	for _, v := range list {
		present[v] = true
	}

	next := make([]string, len(list))
	copy(next, list)

	if len(next) > 0 {
		removeIdx := rng.Intn(len(next))
		delete(present, next[removeIdx])
		next = append(next[:removeIdx], next[removeIdx+1:]...)
	}

	var candidatesLeft []string
	for _, v := range field.pool {
		if !present[v] {
			candidatesLeft = append(candidatesLeft, v)
		}
	}
	if len(candidatesLeft) > 0 {
		next = append(next, candidatesLeft[rng.Intn(len(candidatesLeft))])
	}

	g.Attributes[field.key] = types.ListAttr(next)
}

func styleReplace(rng *rand.Rand, g *types.Genotype, pool Pool) {
	candidates := []struct {
		key  string
		pool []string
	}{
		{types.AttrCommunicationStyle, pool.CommunicationStyles},
		{types.AttrTopicalFocus, pool.TopicalFocuses},
	}
	field := candidates[rng.Intn(len(candidates))]
	if len(field.pool) == 0 {
		return
	}

	current, _ := g.Attributes[field.key].AsString()
	var options []string
	for _, v := range field.pool {
		if v != current {
			options = append(options, v)
		}
	}
	if len(options) == 0 {
		return
	}
	g.Attributes[field.key] = types.StringAttr(options[rng.Intn(len(options))])
}

func ageShift(rng *rand.Rand, g *types.Genotype) {
	age, ok := g.Age()
	if !ok {
		return
	}
	delta := 1 + rng.Intn(5)
	if rng.Intn(2) == 0 {
		delta = -delta
	}
	g.Attributes[types.AttrAge] = types.IntAttr(clampInt(age+delta, 18, 80))
}

func backstoryEvent(rng *rand.Rand, g *types.Genotype, pool Pool) {
	if len(pool.LifeEvents) == 0 {
		return
	}
	current, _ := g.Backstory()
	event := pool.LifeEvents[rng.Intn(len(pool.LifeEvents))]
	if current == "" {
		g.Attributes[types.AttrBackstory] = types.StringAttr(event)
		return
	}
	g.Attributes[types.AttrBackstory] = types.StringAttr(current + " " + event)
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
