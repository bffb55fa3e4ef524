package evolve

import (
	"fmt"
	"math/rand"
)

// Selector chooses a parent from a scored population for breeding.
// Higher fitness must not decrease selection probability. Ties are
// resolved by the stable order of the scored slice, never by inspecting
// the chord sequences themselves.
type Selector interface {
	Name() string
	Pick(rng *rand.Rand, scored []Scored) (Individual, error)
}

// RouletteSelector samples parents with probability proportional to raw
// fitness. When every fitness is zero (an all-zero weight table, for
// example) it falls back to a uniform pick so evolution still proceeds.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) Pick(rng *rand.Rand, scored []Scored) (Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(scored) == 0 {
		return nil, fmt.Errorf("cannot select from an empty population")
	}

	total := 0.0
	for _, item := range scored {
		if item.Fitness < 0 {
			return nil, fmt.Errorf("roulette selection requires non-negative fitness, got %v", item.Fitness)
		}
		total += item.Fitness
	}
	if total <= 0 {
		return scored[rng.Intn(len(scored))].Individual, nil
	}

	pick := rng.Float64() * total
	acc := 0.0
	for _, item := range scored {
		acc += item.Fitness
		if pick <= acc {
			return item.Individual, nil
		}
	}
	return scored[len(scored)-1].Individual, nil
}

// TournamentSelector samples a fixed number of candidates uniformly and
// keeps the fittest; earlier-sampled candidates win ties.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) Pick(rng *rand.Rand, scored []Scored) (Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(scored) == 0 {
		return nil, fmt.Errorf("cannot select from an empty population")
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}
	if size > len(scored) {
		size = len(scored)
	}

	best := scored[rng.Intn(len(scored))]
	for i := 1; i < size; i++ {
		candidate := scored[rng.Intn(len(scored))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Individual, nil
}
