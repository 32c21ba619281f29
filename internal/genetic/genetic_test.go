package genetic

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/backend"
	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func parentA() types.Genotype {
	g := types.NewGenotype("Alpha")
	g.Attributes[types.AttrAge] = types.IntAttr(30)
	g.Attributes[types.AttrOccupation] = types.StringAttr("teacher")
	g.Attributes[types.AttrCoreValues] = types.ListAttr([]string{"honesty"})
	g.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(map[string]float64{"openness": 0.5})
	g.Attributes[types.AttrTopicalFocus] = types.StringAttr("education")
	g.Attributes[types.AttrBackstory] = types.StringAttr("grew up in a small town")
	g.Attributes[types.AttrHobbies] = types.ListAttr([]string{"reading"})
	g.Attributes[types.AttrCommunicationStyle] = types.StringAttr("formal")
	g.Attributes[types.AttrInteractionPolicy] = types.StringAttr("replies to everyone")
	g.Attributes[types.AttrGoals] = types.ListAttr([]string{"g1", "g2", "g3"})
	g.Attributes["unique_to_a"] = types.StringAttr("onlyA")
	return g
}

func parentB() types.Genotype {
	g := types.NewGenotype("Beta")
	g.Attributes[types.AttrAge] = types.IntAttr(40)
	g.Attributes[types.AttrOccupation] = types.StringAttr("barista")
	g.Attributes[types.AttrCoreValues] = types.ListAttr([]string{"curiosity"})
	g.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(map[string]float64{"openness": 0.9})
	g.Attributes[types.AttrTopicalFocus] = types.StringAttr("coffee")
	g.Attributes[types.AttrBackstory] = types.StringAttr("moved to the city")
	g.Attributes[types.AttrHobbies] = types.ListAttr([]string{"cycling"})
	g.Attributes[types.AttrCommunicationStyle] = types.StringAttr("casual")
	g.Attributes[types.AttrInteractionPolicy] = types.StringAttr("rarely engages")
	g.Attributes[types.AttrGoals] = types.ListAttr([]string{"h1", "h2"})
	g.Attributes["unique_to_a"] = types.StringAttr("sharedKeyFromB")
	return g
}

func TestCrossoverFieldSources(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a, b := parentA(), parentB()

	child := Crossover(rng, a, b, []string{"Placeholder"})

	occ, _ := child.Occupation()
	require.Equal(t, "teacher", occ)

	backstory, _ := child.Backstory()
	require.Equal(t, "moved to the city", backstory)

	style, _ := child.CommunicationStyle()
	require.Equal(t, "casual", style)

	policy, _ := child.InteractionPolicy()
	require.Equal(t, "rarely engages", policy)

	goals, _ := child.Goals()
	require.Equal(t, []string{"g1", "g2", "h2"}, goals)

	dup, ok := child.Attributes["unique_to_a"].AsString()
	require.True(t, ok)
	require.Equal(t, "onlyA", dup) // present in both -> A wins
}

func TestCrossoverIsPureAndDeterministic(t *testing.T) {
	a, b := parentA(), parentB()

	c1 := Crossover(rand.New(rand.NewSource(42)), a, b, []string{"X"})
	c2 := Crossover(rand.New(rand.NewSource(42)), a, b, []string{"X"})

	require.Equal(t, c1, c2)
}

func TestPoolMutatorPreservesName(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	mutator := NewPoolMutator(DefaultPool())
	g := parentA()

	mutant, err := mutator.Mutate(context.Background(), rng, g)
	require.NoError(t, err)
	require.NotEqual(t, g.Name, "")
	require.Equal(t, g.Name, mutant.Name) // pool mutation preserves name; engine renames
}

func TestPoolMutatorAgeShiftClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := types.NewGenotype("Edge")
	g.Attributes[types.AttrAge] = types.IntAttr(80)

	for i := 0; i < 50; i++ {
		ageShift(rng, &g)
		age, _ := g.Age()
		require.GreaterOrEqual(t, age, 18)
		require.LessOrEqual(t, age, 80)
	}
}

type stubEmptyBackend struct{}

func (stubEmptyBackend) Generate(ctx context.Context, systemPrompt, userPrompt string, opts ...backend.GenerateOption) (string, error) {
	return "", nil
}

func TestBackendMutatorFallsBackOnEmptyResponse(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	fallback := NewPoolMutator(DefaultPool())
	mutator := &BackendMutator{Backend: stubEmptyBackend{}, Fallback: fallback}

	g := parentA()
	mutant, err := mutator.Mutate(context.Background(), rng, g)
	require.NoError(t, err)
	require.Equal(t, g.Name, mutant.Name)
}
