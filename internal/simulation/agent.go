// Package simulation runs the group-episode protocol of spec.md §4.5:
// agents post to a shared feed, then take turns deciding whether to
// engage with a random feed entry.
package simulation

import "github.com/Keyhole-Koro/snackPersona/internal/types"

// Agent wraps a genotype and its compiled phenotype for one episode,
// plus a per-episode memory buffer of its own actions. The buffer is
// episode-local: created empty, discarded at episode end, never fed
// back into prompts in the baseline protocol.
type Agent struct {
	Name      string
	Genotype  types.Genotype
	Phenotype types.Phenotype

	memory []types.TranscriptEvent
}

// NewAgent creates an Agent from a genotype and its compiled phenotype.
func NewAgent(g types.Genotype, p types.Phenotype) *Agent {
	return &Agent{Name: g.Name, Genotype: g, Phenotype: p}
}

func (a *Agent) remember(ev types.TranscriptEvent) {
	a.memory = append(a.memory, ev)
}

// Memory returns the events this agent authored during the current
// episode, in the order they occurred.
func (a *Agent) Memory() []types.TranscriptEvent {
	return a.memory
}
