package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

func sampleGenotype() types.Genotype {
	g := types.NewGenotype("PixelForge")
	g.Attributes[types.AttrAge] = types.IntAttr(27)
	g.Attributes[types.AttrOccupation] = types.StringAttr("graphic designer")
	g.Attributes[types.AttrCoreValues] = types.ListAttr([]string{"honesty", "creativity"})
	g.Attributes[types.AttrHobbies] = types.ListAttr([]string{"sketching", "hiking"})
	g.Attributes[types.AttrPersonalityTraits] = types.TraitAttr(map[string]float64{"openness": 0.8})
	g.Attributes[types.AttrGoals] = types.ListAttr([]string{"grow audience"})
	g.Attributes["favorite_color"] = types.StringAttr("teal")
	return g
}

func TestCompileIsDeterministic(t *testing.T) {
	g := sampleGenotype()

	p1 := Compile(g)
	p2 := Compile(g.Clone())

	require.Equal(t, p1.SystemPrompt, p2.SystemPrompt)
	require.Equal(t, p1.PolicyInstructions, p2.PolicyInstructions)
}

func TestCompileIncludesRecognizedAndUnknownAttributes(t *testing.T) {
	g := sampleGenotype()
	p := Compile(g)

	require.Contains(t, p.SystemPrompt, "PixelForge")
	require.Contains(t, p.SystemPrompt, "graphic designer")
	require.Contains(t, p.SystemPrompt, "honesty, creativity")
	require.Contains(t, p.SystemPrompt, "openness: 0.80")
	require.Contains(t, p.SystemPrompt, "Additional Attributes")
	require.Contains(t, p.SystemPrompt, "Favorite Color: teal")
	require.Contains(t, p.PolicyInstructions, "grow audience")
}

func TestCompileSkipsMissingRecognizedAttributes(t *testing.T) {
	g := types.NewGenotype("Minimal")
	p := Compile(g)

	require.Contains(t, p.SystemPrompt, "Minimal")
	require.NotContains(t, p.SystemPrompt, "Age:")
	require.NotContains(t, p.SystemPrompt, "Additional Attributes")
}
