package evolve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"harmonia/internal/theory"
)

// ErrInvalidConfiguration reports run parameters rejected before any
// generation executes.
var ErrInvalidConfiguration = errors.New("invalid harmonizer configuration")

// Evaluator scores one chord sequence. Implementations must be pure:
// the same sequence always yields the same fitness.
type Evaluator interface {
	Evaluate(seq []theory.ChordLabel) float64
}

// Config holds everything a run needs. It is supplied once before Run
// and never changes afterwards.
type Config struct {
	// Alphabet is the chord labels individuals draw slots from.
	Alphabet []theory.ChordLabel
	// SlotCount is the number of harmonic slots, i.e. individual length.
	SlotCount int
	// Evaluator scores candidates.
	Evaluator Evaluator

	PopulationSize int
	Generations    int
	// MutationRate is the per-slot probability of replacing a slot's
	// chord with a uniform draw from the alphabet.
	MutationRate float64
	// EliteCount individuals are carried forward unchanged each
	// generation. Zero disables elitism.
	EliteCount int

	Seed    int64
	Workers int

	Selector  Selector
	Crossover Crossover

	// PlateauGenerations, when positive, stops the run early once the
	// best fitness has not improved for that many consecutive
	// generations. Off by default: runs use the plain generation
	// budget unless a plateau window is asked for.
	PlateauGenerations int
}

// GenerationDiagnostics summarizes one evaluated generation.
type GenerationDiagnostics struct {
	Generation      int     `json:"generation"`
	BestFitness     float64 `json:"best_fitness"`
	MeanFitness     float64 `json:"mean_fitness"`
	MinFitness      float64 `json:"min_fitness"`
	DistinctChords  int     `json:"distinct_chords"`
	DistinctMembers int     `json:"distinct_members"`
}

// Result is what a finished run returns: the fittest individual seen at
// any point of the run, not merely in the final generation.
type Result struct {
	Best             Individual
	BestFitness      float64
	BestGeneration   int
	BestByGeneration []float64
	Diagnostics      []GenerationDiagnostics
	Generations      int
	FinalPopulation  []Scored
}

type runState int

const (
	stateUninitialized runState = iota
	stateEvolving
	stateConverged
)

// Harmonizer evolves chord sequences against a fixed melody. Each
// instance owns its random source, so independent harmonizers never
// interfere even when run concurrently.
type Harmonizer struct {
	cfg Config
	rng *rand.Rand

	mu    sync.Mutex
	state runState
}

// NewHarmonizer validates the configuration and prepares a run.
func NewHarmonizer(cfg Config) (*Harmonizer, error) {
	if len(cfg.Alphabet) == 0 {
		return nil, fmt.Errorf("%w: chord alphabet is empty", ErrInvalidConfiguration)
	}
	if cfg.SlotCount < 1 {
		return nil, fmt.Errorf("%w: slot count must be >= 1, got %d", ErrInvalidConfiguration, cfg.SlotCount)
	}
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator is required", ErrInvalidConfiguration)
	}
	if cfg.PopulationSize < 2 {
		return nil, fmt.Errorf("%w: population size must be >= 2, got %d", ErrInvalidConfiguration, cfg.PopulationSize)
	}
	if cfg.Generations < 1 {
		return nil, fmt.Errorf("%w: generations must be >= 1, got %d", ErrInvalidConfiguration, cfg.Generations)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("%w: mutation rate must be in [0, 1], got %v", ErrInvalidConfiguration, cfg.MutationRate)
	}
	if cfg.EliteCount < 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("%w: elite count must be in [0, population size], got %d", ErrInvalidConfiguration, cfg.EliteCount)
	}
	if cfg.PlateauGenerations < 0 {
		return nil, fmt.Errorf("%w: plateau generations must be >= 0, got %d", ErrInvalidConfiguration, cfg.PlateauGenerations)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Selector == nil {
		cfg.Selector = RouletteSelector{}
	}
	if cfg.Crossover == nil {
		cfg.Crossover = OnePointCrossover{}
	}

	return &Harmonizer{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the evolutionary loop to completion and returns the best
// individual seen across the whole run. A harmonizer runs exactly once.
// Cancellation is honored between generations only, so a generation's
// semantics stay atomic.
func (h *Harmonizer) Run(ctx context.Context) (Result, error) {
	h.mu.Lock()
	if h.state != stateUninitialized {
		h.mu.Unlock()
		return Result{}, fmt.Errorf("harmonizer has already run")
	}
	h.state = stateEvolving
	h.mu.Unlock()

	population := h.initialPopulation()

	best := Individual(nil)
	bestFitness := math.Inf(-1)
	bestGeneration := 0
	sinceImprovement := 0

	bestByGeneration := make([]float64, 0, h.cfg.Generations)
	diagnostics := make([]GenerationDiagnostics, 0, h.cfg.Generations)

	executed := 0
	var scored []Scored
	for gen := 0; gen < h.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var err error
		scored, err = h.evaluatePopulation(ctx, population)
		if err != nil {
			return Result{}, err
		}
		executed = gen + 1

		genBest := scored[0]
		for _, item := range scored[1:] {
			if item.Fitness > genBest.Fitness {
				genBest = item
			}
		}
		if genBest.Fitness > bestFitness {
			best = genBest.Individual.Clone()
			bestFitness = genBest.Fitness
			bestGeneration = gen
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		bestByGeneration = append(bestByGeneration, genBest.Fitness)
		diagnostics = append(diagnostics, summarizeGeneration(scored, gen))

		if h.cfg.PlateauGenerations > 0 && sinceImprovement >= h.cfg.PlateauGenerations {
			break
		}
		if gen == h.cfg.Generations-1 {
			break
		}

		population, err = h.nextGeneration(scored)
		if err != nil {
			return Result{}, err
		}
	}

	h.mu.Lock()
	h.state = stateConverged
	h.mu.Unlock()

	return Result{
		Best:             best,
		BestFitness:      bestFitness,
		BestGeneration:   bestGeneration,
		BestByGeneration: bestByGeneration,
		Diagnostics:      diagnostics,
		Generations:      executed,
		FinalPopulation:  scored,
	}, nil
}

func (h *Harmonizer) initialPopulation() []Individual {
	population := make([]Individual, h.cfg.PopulationSize)
	for i := range population {
		individual := make(Individual, h.cfg.SlotCount)
		for slot := range individual {
			individual[slot] = h.cfg.Alphabet[h.rng.Intn(len(h.cfg.Alphabet))]
		}
		population[i] = individual
	}
	return population
}

// evaluatePopulation scores every individual, fanning out across workers
// when configured. Results are collected back into population order so
// ranking and elitism stay reproducible regardless of worker count.
func (h *Harmonizer) evaluatePopulation(ctx context.Context, population []Individual) ([]Scored, error) {
	if h.cfg.Workers == 1 || len(population) == 1 {
		scored := make([]Scored, len(population))
		for i, individual := range population {
			scored[i] = Scored{Individual: individual, Fitness: h.cfg.Evaluator.Evaluate(individual)}
		}
		return scored, nil
	}

	type job struct {
		idx        int
		individual Individual
	}
	type result struct {
		idx    int
		scored Scored
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	workerCount := h.cfg.Workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				results <- result{idx: j.idx, scored: Scored{
					Individual: j.individual,
					Fitness:    h.cfg.Evaluator.Evaluate(j.individual),
				}}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i, individual: population[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scored := make([]Scored, len(population))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scored[res.idx] = res.scored
	}
	return scored, nil
}

func (h *Harmonizer) nextGeneration(scored []Scored) ([]Individual, error) {
	ranked := make([]Scored, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})

	next := make([]Individual, 0, h.cfg.PopulationSize)
	for i := 0; i < h.cfg.EliteCount; i++ {
		next = append(next, ranked[i].Individual.Clone())
	}

	for len(next) < h.cfg.PopulationSize {
		first, err := h.cfg.Selector.Pick(h.rng, scored)
		if err != nil {
			return nil, err
		}
		second, err := h.cfg.Selector.Pick(h.rng, scored)
		if err != nil {
			return nil, err
		}
		child := h.cfg.Crossover.Combine(h.rng, first, second)
		h.mutate(child)
		next = append(next, child)
	}
	return next, nil
}

func (h *Harmonizer) mutate(individual Individual) {
	if h.cfg.MutationRate == 0 {
		return
	}
	for slot := range individual {
		if h.rng.Float64() < h.cfg.MutationRate {
			individual[slot] = h.cfg.Alphabet[h.rng.Intn(len(h.cfg.Alphabet))]
		}
	}
}

func summarizeGeneration(scored []Scored, generation int) GenerationDiagnostics {
	total := 0.0
	best := scored[0].Fitness
	minFitness := scored[0].Fitness
	chords := make(map[theory.ChordLabel]struct{})
	members := make(map[string]struct{}, len(scored))
	for _, item := range scored {
		total += item.Fitness
		if item.Fitness > best {
			best = item.Fitness
		}
		if item.Fitness < minFitness {
			minFitness = item.Fitness
		}
		key := make([]byte, 0, len(item.Individual)*8)
		for _, label := range item.Individual {
			chords[label] = struct{}{}
			key = append(key, label...)
			key = append(key, 0)
		}
		members[string(key)] = struct{}{}
	}
	return GenerationDiagnostics{
		Generation:      generation,
		BestFitness:     best,
		MeanFitness:     total / float64(len(scored)),
		MinFitness:      minFitness,
		DistinctChords:  len(chords),
		DistinctMembers: len(members),
	}
}
