package genetic

import (
	"math/rand"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// Crossover combines two parent genotypes into a child, field by field
// (spec.md §4.3's table). It is pure and deterministic given rng: no
// backend call is ever made here.
func Crossover(rng *rand.Rand, a, b types.Genotype, namePool []string) types.Genotype {
	child := types.NewGenotype(drawName(rng, namePool))

	keys := unionKeys(a, b)
	for key := range keys {
		switch key {
		case types.AttrAge:
			if rng.Intn(2) == 0 {
				copyAttr(child, a, key)
			} else {
				copyAttr(child, b, key)
			}
		case types.AttrOccupation, types.AttrCoreValues, types.AttrPersonalityTraits, types.AttrTopicalFocus:
			copyAttr(child, a, key)
		case types.AttrBackstory, types.AttrHobbies, types.AttrCommunicationStyle, types.AttrInteractionPolicy:
			copyAttr(child, b, key)
		case types.AttrGoals:
			child.Attributes[key] = types.ListAttr(splitGoals(a, b))
		default:
			copyUnknownAttr(child, a, b, key)
		}
	}

	return child
}

func unionKeys(a, b types.Genotype) map[string]struct{} {
	keys := make(map[string]struct{}, len(a.Attributes)+len(b.Attributes))
	for k := range a.Attributes {
		keys[k] = struct{}{}
	}
	for k := range b.Attributes {
		keys[k] = struct{}{}
	}
	return keys
}

func copyAttr(child, src types.Genotype, key string) {
	if v, ok := src.Attributes[key]; ok {
		child.Attributes[key] = v.Clone()
	}
}

// copyUnknownAttr implements the "present in A or B only -> copy through;
// present in both -> A's value" rule for attributes outside the named
// field table.
func copyUnknownAttr(child, a, b types.Genotype, key string) {
	va, inA := a.Attributes[key]
	vb, inB := b.Attributes[key]
	switch {
	case inA && inB:
		child.Attributes[key] = va.Clone()
	case inA:
		child.Attributes[key] = va.Clone()
	case inB:
		child.Attributes[key] = vb.Clone()
	}
}

// splitGoals concatenates the first half of A's goals (ceiling of
// |A.goals|/2) with the second half of B's goals.
func splitGoals(a, b types.Genotype) []string {
	goalsA, _ := a.Goals()
	goalsB, _ := b.Goals()

	halfA := (len(goalsA) + 1) / 2
	firstHalf := goalsA[:halfA]

	halfB := len(goalsB) / 2
	secondHalf := goalsB[halfB:]

	merged := make([]string, 0, len(firstHalf)+len(secondHalf))
	merged = append(merged, firstHalf...)
	merged = append(merged, secondHalf...)
	return merged
}

func drawName(rng *rand.Rand, pool []string) string {
	if len(pool) == 0 {
		return "Unnamed"
	}
	return pool[rng.Intn(len(pool))]
}
