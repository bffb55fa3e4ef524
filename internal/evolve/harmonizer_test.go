package evolve

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"harmonia/internal/theory"
)

// matchEvaluator scores the fraction of slots holding the target label.
// It is pure, bounded in [0, 1], and maximized by a known individual, so
// convergence is easy to assert.
type matchEvaluator struct {
	target theory.ChordLabel
}

func (e matchEvaluator) Evaluate(seq []theory.ChordLabel) float64 {
	matches := 0
	for _, label := range seq {
		if label == e.target {
			matches++
		}
	}
	return float64(matches) / float64(len(seq))
}

var testAlphabet = []theory.ChordLabel{"Cmaj7", "Dm7", "G7", "Am7", "Fmaj7"}

func testConfig() Config {
	return Config{
		Alphabet:       testAlphabet,
		SlotCount:      16,
		Evaluator:      matchEvaluator{target: "G7"},
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.05,
		EliteCount:     2,
		Seed:           1,
	}
}

func TestNewHarmonizerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty alphabet", func(c *Config) { c.Alphabet = nil }},
		{"zero slots", func(c *Config) { c.SlotCount = 0 }},
		{"nil evaluator", func(c *Config) { c.Evaluator = nil }},
		{"population below two", func(c *Config) { c.PopulationSize = 1 }},
		{"zero generations", func(c *Config) { c.Generations = 0 }},
		{"negative mutation rate", func(c *Config) { c.MutationRate = -0.1 }},
		{"mutation rate above one", func(c *Config) { c.MutationRate = 1.1 }},
		{"negative elites", func(c *Config) { c.EliteCount = -1 }},
		{"elites above population", func(c *Config) { c.EliteCount = 51 }},
		{"negative plateau", func(c *Config) { c.PlateauGenerations = -1 }},
	}
	for _, tc := range cases {
		cfg := testConfig()
		tc.mutate(&cfg)
		_, err := NewHarmonizer(cfg)
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: err = %v, want ErrInvalidConfiguration", tc.name, err)
		}
	}
}

func TestRunConvergesOnTarget(t *testing.T) {
	harmonizer, err := NewHarmonizer(testConfig())
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	result, err := harmonizer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Best) != 16 {
		t.Fatalf("best length = %d, want 16", len(result.Best))
	}
	if result.BestFitness < 0.75 {
		t.Fatalf("best fitness = %v, want >= 0.75 after 100 generations", result.BestFitness)
	}
	if result.Generations != 100 {
		t.Fatalf("generations executed = %d, want 100", result.Generations)
	}
	if len(result.BestByGeneration) != 100 || len(result.Diagnostics) != 100 {
		t.Fatalf("history lengths = %d/%d, want 100", len(result.BestByGeneration), len(result.Diagnostics))
	}
	if len(result.FinalPopulation) != 50 {
		t.Fatalf("final population = %d, want 50", len(result.FinalPopulation))
	}
	for _, item := range result.FinalPopulation {
		if len(item.Individual) != 16 {
			t.Fatalf("individual length = %d, want 16", len(item.Individual))
		}
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	run := func() Result {
		harmonizer, err := NewHarmonizer(testConfig())
		if err != nil {
			t.Fatalf("new harmonizer: %v", err)
		}
		result, err := harmonizer.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first.Best, second.Best) {
		t.Fatal("same seed should reproduce the best individual")
	}
	if !reflect.DeepEqual(first.BestByGeneration, second.BestByGeneration) {
		t.Fatal("same seed should reproduce the fitness history")
	}
}

func TestRunWorkerCountDoesNotChangeResult(t *testing.T) {
	run := func(workers int) Result {
		cfg := testConfig()
		cfg.Workers = workers
		harmonizer, err := NewHarmonizer(cfg)
		if err != nil {
			t.Fatalf("new harmonizer: %v", err)
		}
		result, err := harmonizer.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	serial := run(1)
	parallel := run(4)
	if !reflect.DeepEqual(serial.Best, parallel.Best) {
		t.Fatal("worker count should not change the best individual")
	}
	if !reflect.DeepEqual(serial.BestByGeneration, parallel.BestByGeneration) {
		t.Fatal("worker count should not change the fitness history")
	}
}

func TestRunBestNeverDecreasesWithElitism(t *testing.T) {
	harmonizer, err := NewHarmonizer(testConfig())
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	result, err := harmonizer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for i := 1; i < len(result.BestByGeneration); i++ {
		if result.BestByGeneration[i] < result.BestByGeneration[i-1]-1e-9 {
			t.Fatalf("generation %d best %v dropped below %v despite elitism",
				i, result.BestByGeneration[i], result.BestByGeneration[i-1])
		}
	}
}

func TestRunReportsBestAcrossWholeRun(t *testing.T) {
	harmonizer, err := NewHarmonizer(testConfig())
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	result, err := harmonizer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	maxSeen := math.Inf(-1)
	for _, best := range result.BestByGeneration {
		if best > maxSeen {
			maxSeen = best
		}
	}
	if result.BestFitness != maxSeen {
		t.Fatalf("best fitness %v does not match history maximum %v", result.BestFitness, maxSeen)
	}
	if got := (matchEvaluator{target: "G7"}).Evaluate(result.Best); got != result.BestFitness {
		t.Fatalf("re-evaluating the best gives %v, recorded %v", got, result.BestFitness)
	}
	if result.BestGeneration < 0 || result.BestGeneration >= result.Generations {
		t.Fatalf("best generation %d out of range", result.BestGeneration)
	}
	if result.BestByGeneration[result.BestGeneration] != result.BestFitness {
		t.Fatal("best generation does not point at the recorded best fitness")
	}
}

func TestRunDegenerateIdenticalPopulation(t *testing.T) {
	cfg := testConfig()
	cfg.Alphabet = []theory.ChordLabel{"Cmaj7"}
	cfg.PopulationSize = 2
	cfg.Generations = 3
	cfg.MutationRate = 0
	cfg.EliteCount = 0
	cfg.Evaluator = matchEvaluator{target: "Cmaj7"}

	harmonizer, err := NewHarmonizer(cfg)
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	result, err := harmonizer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.BestFitness != 1 {
		t.Fatalf("best fitness = %v, want 1 for a single-label alphabet", result.BestFitness)
	}
	for _, d := range result.Diagnostics {
		if d.DistinctMembers != 1 || d.DistinctChords != 1 {
			t.Fatalf("diagnostics = %+v, want a fully converged population", d)
		}
	}
}

func TestRunPlateauStopsEarly(t *testing.T) {
	cfg := testConfig()
	cfg.Alphabet = []theory.ChordLabel{"Cmaj7"}
	cfg.Evaluator = matchEvaluator{target: "Cmaj7"}
	cfg.MutationRate = 0
	cfg.Generations = 100
	cfg.PlateauGenerations = 5

	harmonizer, err := NewHarmonizer(cfg)
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	result, err := harmonizer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Fitness is 1 from the first generation, so the plateau trips after
	// five stagnant generations.
	if result.Generations != 6 {
		t.Fatalf("generations executed = %d, want 6", result.Generations)
	}
	if result.BestFitness != 1 {
		t.Fatalf("best fitness = %v, want 1", result.BestFitness)
	}
}

func TestRunExactlyOnce(t *testing.T) {
	harmonizer, err := NewHarmonizer(testConfig())
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	if _, err := harmonizer.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := harmonizer.Run(context.Background()); err == nil {
		t.Fatal("expected error for a second run")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	harmonizer, err := NewHarmonizer(testConfig())
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := harmonizer.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunIndividualsStayInAlphabet(t *testing.T) {
	cfg := testConfig()
	cfg.MutationRate = 0.5
	cfg.Generations = 20
	harmonizer, err := NewHarmonizer(cfg)
	if err != nil {
		t.Fatalf("new harmonizer: %v", err)
	}
	result, err := harmonizer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	allowed := make(map[theory.ChordLabel]bool, len(testAlphabet))
	for _, label := range testAlphabet {
		allowed[label] = true
	}
	for _, item := range result.FinalPopulation {
		for _, label := range item.Individual {
			if !allowed[label] {
				t.Fatalf("individual contains %q, which is outside the alphabet", label)
			}
		}
	}
}
