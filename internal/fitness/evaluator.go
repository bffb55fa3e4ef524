package fitness

import (
	"errors"
	"fmt"

	"harmonia/internal/metric"
	"harmonia/internal/theory"
)

// ErrMisconfiguredWeights reports a mismatch between the weight table
// and the provided metric set.
var ErrMisconfiguredWeights = errors.New("misconfigured metric weights")

// MetricScore is one line of a fitness breakdown.
type MetricScore struct {
	Name     string
	Raw      float64
	Weight   float64
	Weighted float64
}

type weightedMetric struct {
	metric metric.Metric
	weight float64
}

// Evaluator combines weighted metric scores into a single fitness value.
// It is configured once and immutable for the duration of a run: given
// the same sequence it always produces the same fitness. A metric absent
// from the weight table is excluded from scoring entirely, not defaulted
// to zero weight.
type Evaluator struct {
	active []weightedMetric
}

// NewEvaluator validates the weight table against the metric set. Every
// weight key must name a provided metric and be non-negative; in strict
// mode every metric must also carry a weight.
func NewEvaluator(metrics []metric.Metric, weights map[string]float64, strict bool) (*Evaluator, error) {
	byName := make(map[string]metric.Metric, len(metrics))
	for _, m := range metrics {
		if _, exists := byName[m.Name()]; exists {
			return nil, fmt.Errorf("%w: duplicate metric %s", ErrMisconfiguredWeights, m.Name())
		}
		byName[m.Name()] = m
	}

	for name, weight := range weights {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("%w: weight for unknown metric %s", ErrMisconfiguredWeights, name)
		}
		if weight < 0 {
			return nil, fmt.Errorf("%w: metric %s has negative weight %v", ErrMisconfiguredWeights, name, weight)
		}
	}
	if strict {
		for _, m := range metrics {
			if _, ok := weights[m.Name()]; !ok {
				return nil, fmt.Errorf("%w: metric %s has no weight in strict mode", ErrMisconfiguredWeights, m.Name())
			}
		}
	}

	active := make([]weightedMetric, 0, len(weights))
	for _, m := range metrics {
		weight, ok := weights[m.Name()]
		if !ok {
			continue
		}
		active = append(active, weightedMetric{metric: m, weight: weight})
	}
	return &Evaluator{active: active}, nil
}

// Evaluate returns the weighted sum of metric scores for the sequence.
func (e *Evaluator) Evaluate(seq []theory.ChordLabel) float64 {
	total := 0.0
	for _, item := range e.active {
		total += item.weight * item.metric.Score(seq)
	}
	return total
}

// EvaluateBreakdown returns the fitness together with the per-metric
// scores that produced it, in metric-set order.
func (e *Evaluator) EvaluateBreakdown(seq []theory.ChordLabel) (float64, []MetricScore) {
	total := 0.0
	breakdown := make([]MetricScore, 0, len(e.active))
	for _, item := range e.active {
		raw := item.metric.Score(seq)
		weighted := item.weight * raw
		total += weighted
		breakdown = append(breakdown, MetricScore{
			Name:     item.metric.Name(),
			Raw:      raw,
			Weight:   item.weight,
			Weighted: weighted,
		})
	}
	return total, breakdown
}

// Metrics returns the names of the metrics that participate in scoring.
func (e *Evaluator) Metrics() []string {
	names := make([]string, 0, len(e.active))
	for _, item := range e.active {
		names = append(names, item.metric.Name())
	}
	return names
}
