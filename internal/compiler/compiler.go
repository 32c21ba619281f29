// Package compiler renders a Genotype into its Phenotype: a
// system-prompt/policy-instructions pair (spec.md §4.1). Compile is a
// pure function — the same genotype always yields a byte-identical
// phenotype.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Keyhole-Koro/snackPersona/internal/types"
)

var recognizedKeys = map[string]bool{
	types.AttrAge:                true,
	types.AttrOccupation:         true,
	types.AttrBackstory:          true,
	types.AttrCoreValues:         true,
	types.AttrHobbies:            true,
	types.AttrPersonalityTraits:  true,
	types.AttrCommunicationStyle: true,
	types.AttrTopicalFocus:       true,
	types.AttrInteractionPolicy:  true,
	types.AttrGoals:              true,
}

// Compile renders a genotype into its phenotype. Missing recognized
// attributes are silently skipped; unrecognized attributes are appended
// verbatim in an "Additional Attributes" section with humanized keys.
func Compile(g types.Genotype) types.Phenotype {
	return types.Phenotype{
		SystemPrompt:       compileSystemPrompt(g),
		PolicyInstructions: compilePolicy(g),
	}
}

func compileSystemPrompt(g types.Genotype) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a real person on a social network. Fully embody this identity.\n\n", g.Name)

	if age, ok := g.Age(); ok {
		fmt.Fprintf(&b, "Age: %d\n", age)
	}
	if occupation, ok := g.Occupation(); ok {
		fmt.Fprintf(&b, "Occupation: %s\n", occupation)
	}
	if backstory, ok := g.Backstory(); ok && backstory != "" {
		fmt.Fprintf(&b, "Backstory: %s\n", backstory)
	}
	if values, ok := g.CoreValues(); ok && len(values) > 0 {
		fmt.Fprintf(&b, "Core values: %s\n", strings.Join(values, ", "))
	}
	if hobbies, ok := g.Hobbies(); ok && len(hobbies) > 0 {
		fmt.Fprintf(&b, "Hobbies: %s\n", strings.Join(hobbies, ", "))
	}
	if traits, ok := g.PersonalityTraits(); ok && len(traits) > 0 {
		b.WriteString("Personality traits:\n")
		for _, name := range sortedKeys(traits) {
			fmt.Fprintf(&b, "  - %s: %.2f\n", name, traits[name])
		}
	}
	if style, ok := g.CommunicationStyle(); ok && style != "" {
		fmt.Fprintf(&b, "Communication style: %s\n", style)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("1. Always stay in character.\n")
	b.WriteString("2. Never reveal that you are an AI.\n")
	b.WriteString("3. Write in a natural, informal social-media style.\n")

	if extra := additionalAttributes(g); extra != "" {
		b.WriteString("\nAdditional Attributes:\n")
		b.WriteString(extra)
	}

	return strings.TrimRight(b.String(), "\n")
}

func compilePolicy(g types.Genotype) string {
	var b strings.Builder

	if goals, ok := g.Goals(); ok && len(goals) > 0 {
		fmt.Fprintf(&b, "Primary goals: %s\n", strings.Join(goals, "; "))
	}
	if focus, ok := g.TopicalFocus(); ok && focus != "" {
		fmt.Fprintf(&b, "Topical focus: %s\n", focus)
	}
	if policy, ok := g.InteractionPolicy(); ok && policy != "" {
		fmt.Fprintf(&b, "Interaction rule: %s\n", policy)
	}
	b.WriteString("Consistency rule: never contradict previously stated facts about yourself.\n")

	return strings.TrimRight(b.String(), "\n")
}

// additionalAttributes renders every attribute key not in the
// recognized set, humanizing the key (snake_case -> Title Case).
func additionalAttributes(g types.Genotype) string {
	var keys []string
	for k := range g.Attributes {
		if !recognizedKeys[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", humanize(k), renderValue(g.Attributes[k]))
	}
	return b.String()
}

func humanize(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func renderValue(v types.AttrValue) string {
	switch v.Kind {
	case types.KindStringList:
		list, _ := v.AsList()
		return strings.Join(list, ", ")
	case types.KindTraitMap:
		traits, _ := v.AsTraits()
		var parts []string
		for _, k := range sortedKeys(traits) {
			parts = append(parts, fmt.Sprintf("%s=%.2f", k, traits[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v.Scalar)
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
