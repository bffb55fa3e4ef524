package metric

import (
	"errors"
	"fmt"
)

// defaultOrder fixes the canonical metric order used by the default set
// and by fitness breakdowns.
var defaultOrder = []string{
	"chord_melody_congruence",
	"chord_variety",
	"harmonic_flow",
	"functional_harmony",
	"voice_leading",
	"chord_repetitions",
	"functional_progressions",
	"non_diatonic_chords",
	"parallel_fifths",
}

func init() {
	registerDefaults()
}

func registerDefaults() {
	builders := map[string]Builder{
		"chord_melody_congruence": func(ctx Context) (Metric, error) {
			if len(ctx.Slots) == 0 {
				return nil, errors.New("chord_melody_congruence requires harmonic slots")
			}
			return NewChordMelodyCongruence(ctx.Slots, ctx.Vocabulary), nil
		},
		"chord_variety": func(ctx Context) (Metric, error) {
			return NewChordVariety(ctx.Vocabulary), nil
		},
		"harmonic_flow": func(ctx Context) (Metric, error) {
			return NewHarmonicFlow(ctx.Vocabulary), nil
		},
		"functional_harmony": func(ctx Context) (Metric, error) {
			return NewFunctionalHarmony(ctx.Vocabulary), nil
		},
		"voice_leading": func(ctx Context) (Metric, error) {
			return NewVoiceLeading(ctx.Vocabulary), nil
		},
		"chord_repetitions": func(ctx Context) (Metric, error) {
			return NewChordRepetitions(), nil
		},
		"functional_progressions": func(ctx Context) (Metric, error) {
			return NewFunctionalProgressions(ctx.Vocabulary), nil
		},
		"non_diatonic_chords": func(ctx Context) (Metric, error) {
			return NewNonDiatonicChords(ctx.Vocabulary), nil
		},
		"parallel_fifths": func(ctx Context) (Metric, error) {
			return NewParallelFifths(ctx.Vocabulary), nil
		},
	}
	for name, builder := range builders {
		wrapped := builder
		if err := RegisterMetric(name, func(ctx Context) (Metric, error) {
			if ctx.Vocabulary == nil {
				return nil, errors.New("metric context requires a vocabulary")
			}
			return wrapped(ctx)
		}); err != nil {
			panic(fmt.Sprintf("harmonia: register default metric %s: %v", name, err))
		}
	}
}

// NewDefaultSet builds the nine standard metrics in canonical order.
func NewDefaultSet(ctx Context) ([]Metric, error) {
	out := make([]Metric, 0, len(defaultOrder))
	for _, name := range defaultOrder {
		m, err := ResolveMetric(name, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// DefaultWeights returns the stock weighting of the default metric set.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"chord_melody_congruence": 0.24,
		"chord_variety":           0.08,
		"harmonic_flow":           0.18,
		"functional_harmony":      0.10,
		"voice_leading":           0.02,
		"chord_repetitions":       0.06,
		"non_diatonic_chords":     0.06,
		"functional_progressions": 0.25,
		"parallel_fifths":         0.01,
	}
}
