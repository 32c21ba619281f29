package diversity

import (
	"math"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

// GenotypeDistance is the structural distance between two genotypes
// (spec.md §4.4): the arithmetic mean of per-field normalized distances
// over the union of attribute keys present in either genotype. Bounded
// in [0,1], symmetric, and zero iff the genotypes are attribute-equal.
func GenotypeDistance(a, b types.Genotype) float64 {
	keys := unionAttrKeys(a, b)
	if len(keys) == 0 {
		return 0
	}

	var sum float64
	for key := range keys {
		va, inA := a.Attributes[key]
		vb, inB := b.Attributes[key]
		sum += fieldDistance(va, inA, vb, inB, key)
	}
	return sum / float64(len(keys))
}

func unionAttrKeys(a, b types.Genotype) map[string]struct{} {
	keys := make(map[string]struct{}, len(a.Attributes)+len(b.Attributes))
	for k := range a.Attributes {
		keys[k] = struct{}{}
	}
	for k := range b.Attributes {
		keys[k] = struct{}{}
	}
	return keys
}

// fieldDistance compares one attribute across two genotypes. A key present
// in only one genotype is treated as maximally different (1), except for
// trait maps, where the missing side is treated as an all-zero map so the
// per-trait "missing key treated as 0" rule still applies.
func fieldDistance(va types.AttrValue, inA bool, vb types.AttrValue, inB bool, key string) float64 {
	if !inA || !inB {
		if inA && va.Kind == types.KindTraitMap {
			return traitMapDistance(va.Traits, nil)
		}
		if inB && vb.Kind == types.KindTraitMap {
			return traitMapDistance(nil, vb.Traits)
		}
		return 1
	}

	if key == types.AttrAge {
		ai, aok := va.AsInt()
		bi, bok := vb.AsInt()
		if !aok || !bok {
			return scalarDistance(va, vb)
		}
		return math.Min(1, math.Abs(float64(ai-bi))/62)
	}

	if listA, okA := va.AsList(); okA {
		listB, _ := vb.AsList()
		return 1 - jaccard(listA, listB)
	}

	if traitsA, okA := va.AsTraits(); okA {
		traitsB, _ := vb.AsTraits()
		return traitMapDistance(traitsA, traitsB)
	}

	return scalarDistance(va, vb)
}

func scalarDistance(va, vb types.AttrValue) float64 {
	sa, aok := va.AsString()
	sb, bok := vb.AsString()
	if aok || bok {
		if sa == sb {
			return 0
		}
		return 1
	}

	if va.Scalar == vb.Scalar {
		return 0
	}
	return 1
}

func jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1 // both empty -> distance 0, handled by caller as 1-jaccard
	}

	var intersection, union int
	seen := make(map[string]bool, len(setA)+len(setB))
	for k := range setA {
		seen[k] = true
	}
	for k := range setB {
		seen[k] = true
	}
	union = len(seen)

	for k := range setA {
		if setB[k] {
			intersection++
		}
	}

	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func traitMapDistance(a, b map[string]float64) float64 {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return 0
	}

	var sum float64
	for k := range keys {
		va := a[k]
		vb := b[k]
		sum += math.Min(1, math.Abs(va-vb))
	}
	return sum / float64(len(keys))
}
