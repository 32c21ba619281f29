package engine

import (
	"math"

	"github.com/Keyhole-Koro/snackPersona/internal/diversity"
)

// rawFitness is the weighted sum of an individual's scores under
// Config.FitnessWeights (spec.md §4.7 step 5). Unreferenced dimensions
// contribute 0, per spec.md §9's design note on missing weight
// dimensions.
func (e *Engine) rawFitness(ind int) float64 {
	scores := e.population[ind].Scores
	var sum float64
	for name, weight := range e.Config.FitnessWeights {
		sum += weight * scores.Get(name)
	}
	return sum
}

// sharingFunction is sh(d) = 1 - (d/sigma)^alpha for d < sigma, else 0.
func (e *Engine) sharingFunction(d float64) float64 {
	if d >= e.Config.Niching.Sigma {
		return 0
	}
	return 1 - math.Pow(d/e.Config.Niching.Sigma, e.Config.Niching.Alpha)
}

// applyFitnessSharing computes raw and shared fitness for every
// individual (spec.md §4.7 step 6): niche count nᵢ = Σⱼ sh(d(i,j))
// including self (d(i,i)=0 ⇒ sh=1, so nᵢ ≥ 1), shared_fitness =
// raw / max(nᵢ, 1).
func (e *Engine) applyFitnessSharing() {
	n := len(e.population)

	distances := make([][]float64, n)
	for i := range distances {
		distances[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := diversity.GenotypeDistance(e.population[i].Genotype, e.population[j].Genotype)
			distances[i][j] = d
			distances[j][i] = d
		}
	}

	raws := make([]float64, n)
	for i := 0; i < n; i++ {
		raws[i] = e.rawFitness(i)
	}

	for i := 0; i < n; i++ {
		var nicheCount float64
		for j := 0; j < n; j++ {
			if i == j {
				nicheCount += 1 // sh(0) = 1
				continue
			}
			nicheCount += e.sharingFunction(distances[i][j])
		}

		e.population[i].RawFitness = raws[i]
		e.population[i].SharedFitness = raws[i] / math.Max(nicheCount, 1)
	}
}
