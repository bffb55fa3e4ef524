package evolve

import (
	"harmonia/internal/theory"
)

// Individual is one candidate harmonization: an ordered chord sequence
// with exactly one label per harmonic slot. Individuals are owned by the
// population holding them for one generation; anything that crosses a
// generation boundary is cloned first so mutation never aliases.
type Individual []theory.ChordLabel

// Clone returns an independent copy of the individual.
func (ind Individual) Clone() Individual {
	return append(Individual(nil), ind...)
}

// Scored pairs an individual with its fitness for one generation.
type Scored struct {
	Individual Individual
	Fitness    float64
}
