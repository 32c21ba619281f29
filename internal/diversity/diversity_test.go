package diversity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/testutil"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func sampleGenotype(name string, age int) types.Genotype {
	g := types.NewGenotype(name)
	g.Attributes[types.AttrAge] = types.IntAttr(age)
	g.Attributes[types.AttrOccupation] = types.StringAttr("teacher")
	g.Attributes[types.AttrCoreValues] = types.ListAttr([]string{"honesty", "curiosity"})
	g.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(map[string]float64{"openness": 0.5, "warmth": 0.3})
	return g
}

func TestGenotypeDistanceIsZeroForIdenticalGenotype(t *testing.T) {
	g := sampleGenotype("Alpha", 30)
	require.Equal(t, 0.0, GenotypeDistance(g, g))
}

func TestGenotypeDistanceIsSymmetric(t *testing.T) {
	a := sampleGenotype("Alpha", 30)
	b := sampleGenotype("Beta", 55)
	b.Attributes[types.AttrCoreValues] = types.ListAttr([]string{"ambition"})

	require.Equal(t, GenotypeDistance(a, b), GenotypeDistance(b, a))
}

func TestGenotypeDistanceIsBounded(t *testing.T) {
	a := sampleGenotype("Alpha", 30)
	b := types.NewGenotype("Empty")

	d := GenotypeDistance(a, b)
	require.GreaterOrEqual(t, d, 0.0)
	require.LessOrEqual(t, d, 1.0)
}

func TestGenotypeDistanceTraitMapMissingKeyTreatedAsZero(t *testing.T) {
	a := types.NewGenotype("A")
	a.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(map[string]float64{"openness": 1.0})
	b := types.NewGenotype("B")
	b.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(map[string]float64{"openness": 1.0, "warmth": 1.0})

	// openness matches (0), warmth missing on A treated as 0 vs 1.0 -> 1.0. Mean over 2 keys = 0.5.
	require.InDelta(t, 0.5, GenotypeDistance(a, b), 1e-9)
}

func TestGenotypeDistanceListBothEmptyIsZero(t *testing.T) {
	a := types.NewGenotype("A")
	a.Attributes[types.AttrCoreValues] = types.ListAttr(nil)
	b := types.NewGenotype("B")
	b.Attributes[types.AttrCoreValues] = types.ListAttr(nil)

	require.Equal(t, 0.0, GenotypeDistance(a, b))
}

func TestTextualDiversityZeroForIdenticalTexts(t *testing.T) {
	kit := NewKit(testutil.NewStubEmbedder())
	d, err := kit.TextualDiversity(context.Background(), []string{"hello world", "hello world"})
	require.NoError(t, err)
	require.Equal(t, 0.0, d)
}

func TestTextualDiversityPositiveForDistinctTexts(t *testing.T) {
	kit := NewKit(testutil.NewStubEmbedder())
	d, err := kit.TextualDiversity(context.Background(), []string{"the cat sat on the mat", "quantum entanglement is weird"})
	require.NoError(t, err)
	require.Greater(t, d, 0.0)
	require.LessOrEqual(t, d, 1.0)
}

func TestTextualDiversityFewerThanTwoIsZero(t *testing.T) {
	kit := NewKit(testutil.NewStubEmbedder())
	d, err := kit.TextualDiversity(context.Background(), []string{"solo"})
	require.NoError(t, err)
	require.Equal(t, 0.0, d)

	d, err = kit.TextualDiversity(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0.0, d)
}

func TestPopulationTextualDiversityAcrossAgents(t *testing.T) {
	kit := NewKit(testutil.NewStubEmbedder())
	d, err := kit.PopulationTextualDiversity(context.Background(), map[string][]string{
		"Alpha": {"talking about coffee", "still on coffee"},
		"Beta":  {"discussing rocket science"},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, d, 0.0)
	require.LessOrEqual(t, d, 1.0)
}

func TestPopulationTextualDiversitySingleAgentIsZero(t *testing.T) {
	kit := NewKit(testutil.NewStubEmbedder())
	d, err := kit.PopulationTextualDiversity(context.Background(), map[string][]string{
		"Alpha": {"only one voice here"},
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, d)
}
