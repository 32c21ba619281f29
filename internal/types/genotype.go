// Package types holds the evolvable data model shared by every component:
// genotypes, phenotypes, fitness scores, individuals and transcripts.
package types

import (
	"encoding/json"
	"fmt"
)

// AttrKind discriminates the shape of an attribute value.
type AttrKind int

const (
	KindScalar AttrKind = iota
	KindStringList
	KindTraitMap
)

// AttrValue is a tagged union over the three shapes a genotype attribute
// can take: a scalar (string, number, bool), an ordered list of strings,
// or a mapping from trait name to intensity in [0,1]. Operators and the
// compiler must always go through this type rather than assuming a Go
// struct field exists, so unrecognized keys round-trip untouched.
type AttrValue struct {
	Kind   AttrKind
	Scalar interface{}
	List   []string
	Traits map[string]float64
}

// Scalars for the common cases, used pervasively enough to earn constructors.
func StringAttr(s string) AttrValue  { return AttrValue{Kind: KindScalar, Scalar: s} }
func IntAttr(i int) AttrValue        { return AttrValue{Kind: KindScalar, Scalar: float64(i)} }
func FloatAttr(f float64) AttrValue  { return AttrValue{Kind: KindScalar, Scalar: f} }
func BoolAttr(b bool) AttrValue      { return AttrValue{Kind: KindScalar, Scalar: b} }
func ListAttr(items []string) AttrValue {
	cp := make([]string, len(items))
	copy(cp, items)
	return AttrValue{Kind: KindStringList, List: cp}
}
func TraitAttr(traits map[string]float64) AttrValue {
	cp := make(map[string]float64, len(traits))
	for k, v := range traits {
		cp[k] = v
	}
	return AttrValue{Kind: KindTraitMap, Traits: cp}
}

// AsString returns the scalar's string form if it is a string scalar.
func (a AttrValue) AsString() (string, bool) {
	if a.Kind != KindScalar {
		return "", false
	}
	s, ok := a.Scalar.(string)
	return s, ok
}

// AsInt returns the scalar's integer value if it is a numeric scalar.
func (a AttrValue) AsInt() (int, bool) {
	if a.Kind != KindScalar {
		return 0, false
	}
	switch v := a.Scalar.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// AsList returns the string list if this is a list-shaped attribute.
func (a AttrValue) AsList() ([]string, bool) {
	if a.Kind != KindStringList {
		return nil, false
	}
	return a.List, true
}

// AsTraits returns the trait map if this is a trait-map-shaped attribute.
func (a AttrValue) AsTraits() (map[string]float64, bool) {
	if a.Kind != KindTraitMap {
		return nil, false
	}
	return a.Traits, true
}

// Clone returns a deep copy of the attribute value.
func (a AttrValue) Clone() AttrValue {
	switch a.Kind {
	case KindStringList:
		return ListAttr(a.List)
	case KindTraitMap:
		return TraitAttr(a.Traits)
	default:
		return AttrValue{Kind: KindScalar, Scalar: a.Scalar}
	}
}

// MarshalJSON emits the value in its natural JSON shape: a scalar, an
// array of strings, or an object of numbers.
func (a AttrValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindStringList:
		return json.Marshal(a.List)
	case KindTraitMap:
		return json.Marshal(a.Traits)
	default:
		return json.Marshal(a.Scalar)
	}
}

// UnmarshalJSON infers the AttrKind from the JSON shape on the wire: an
// array decodes to a string list, an object decodes to a trait map, and
// everything else is a scalar.
func (a *AttrValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("attribute list element %v is not a string", item)
			}
			list = append(list, s)
		}
		*a = ListAttr(list)
	case map[string]interface{}:
		traits := make(map[string]float64, len(v))
		for k, val := range v {
			f, ok := val.(float64)
			if !ok {
				return fmt.Errorf("trait %q value %v is not numeric", k, val)
			}
			traits[k] = f
		}
		*a = TraitAttr(traits)
	default:
		*a = AttrValue{Kind: KindScalar, Scalar: v}
	}
	return nil
}

// Genotype is the evolvable persona definition: a unique name plus an
// open-ended attribute bag.
type Genotype struct {
	Name       string               `json:"name"`
	Attributes map[string]AttrValue `json:"attributes"`
}

// NewGenotype creates a Genotype with an initialized attribute map.
func NewGenotype(name string) Genotype {
	return Genotype{Name: name, Attributes: make(map[string]AttrValue)}
}

// Clone returns a deep copy of the genotype.
func (g Genotype) Clone() Genotype {
	attrs := make(map[string]AttrValue, len(g.Attributes))
	for k, v := range g.Attributes {
		attrs[k] = v.Clone()
	}
	return Genotype{Name: g.Name, Attributes: attrs}
}

// Recognized conventional attribute keys (spec.md §3).
const (
	AttrAge                = "age"
	AttrOccupation         = "occupation"
	AttrBackstory          = "backstory"
	AttrCoreValues         = "core_values"
	AttrHobbies            = "hobbies"
	AttrPersonalityTraits  = "personality_traits"
	AttrCommunicationStyle = "communication_style"
	AttrTopicalFocus       = "topical_focus"
	AttrInteractionPolicy  = "interaction_policy"
	AttrGoals              = "goals"
)

func (g Genotype) Age() (int, bool) {
	v, ok := g.Attributes[AttrAge]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (g Genotype) Occupation() (string, bool) {
	v, ok := g.Attributes[AttrOccupation]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (g Genotype) Backstory() (string, bool) {
	v, ok := g.Attributes[AttrBackstory]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (g Genotype) CoreValues() ([]string, bool) {
	v, ok := g.Attributes[AttrCoreValues]
	if !ok {
		return nil, false
	}
	return v.AsList()
}

func (g Genotype) Hobbies() ([]string, bool) {
	v, ok := g.Attributes[AttrHobbies]
	if !ok {
		return nil, false
	}
	return v.AsList()
}

func (g Genotype) PersonalityTraits() (map[string]float64, bool) {
	v, ok := g.Attributes[AttrPersonalityTraits]
	if !ok {
		return nil, false
	}
	return v.AsTraits()
}

func (g Genotype) CommunicationStyle() (string, bool) {
	v, ok := g.Attributes[AttrCommunicationStyle]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (g Genotype) TopicalFocus() (string, bool) {
	v, ok := g.Attributes[AttrTopicalFocus]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (g Genotype) InteractionPolicy() (string, bool) {
	v, ok := g.Attributes[AttrInteractionPolicy]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (g Genotype) Goals() ([]string, bool) {
	v, ok := g.Attributes[AttrGoals]
	if !ok {
		return nil, false
	}
	return v.AsList()
}
