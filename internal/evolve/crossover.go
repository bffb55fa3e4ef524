package evolve

import (
	"math/rand"
)

// Crossover recombines two parents into one child of the same length.
// Implementations must not alias either parent's backing array.
type Crossover interface {
	Name() string
	Combine(rng *rand.Rand, a, b Individual) Individual
}

// OnePointCrossover cuts both parents at one slot position and joins the
// left part of the first to the right part of the second.
type OnePointCrossover struct{}

func (OnePointCrossover) Name() string {
	return "one_point"
}

func (OnePointCrossover) Combine(rng *rand.Rand, a, b Individual) Individual {
	if len(a) < 2 {
		return a.Clone()
	}
	cut := 1 + rng.Intn(len(a)-1)
	child := make(Individual, 0, len(a))
	child = append(child, a[:cut]...)
	child = append(child, b[cut:]...)
	return child
}

// TwoPointCrossover swaps the segment between two cut positions from the
// second parent into the first.
type TwoPointCrossover struct{}

func (TwoPointCrossover) Name() string {
	return "two_point"
}

func (TwoPointCrossover) Combine(rng *rand.Rand, a, b Individual) Individual {
	if len(a) < 3 {
		return OnePointCrossover{}.Combine(rng, a, b)
	}
	first := 1 + rng.Intn(len(a)-1)
	second := 1 + rng.Intn(len(a)-1)
	if first > second {
		first, second = second, first
	}
	child := make(Individual, 0, len(a))
	child = append(child, a[:first]...)
	child = append(child, b[first:second]...)
	child = append(child, a[second:]...)
	return child
}
