package metric

import (
	"errors"
	"testing"

	"harmonia/internal/theory"
)

func defaultContext(t *testing.T) Context {
	t.Helper()
	melody := theory.BuiltinMelody()
	slots, err := melody.Slots(theory.DefaultConvention)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	return Context{Slots: slots, Vocabulary: theory.BuiltinVocabulary()}
}

func TestRegisterMetricRejectsDuplicates(t *testing.T) {
	defer resetMetricRegistryForTests()

	builder := func(ctx Context) (Metric, error) {
		return NewChordRepetitions(), nil
	}
	if err := RegisterMetric("custom_metric", builder); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := RegisterMetric("custom_metric", builder)
	if !errors.Is(err, ErrMetricExists) {
		t.Fatalf("err = %v, want ErrMetricExists", err)
	}
}

func TestRegisterMetricRequiresNameAndBuilder(t *testing.T) {
	defer resetMetricRegistryForTests()

	if err := RegisterMetric("", func(Context) (Metric, error) { return nil, nil }); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := RegisterMetric("no_builder", nil); err == nil {
		t.Fatal("expected error for nil builder")
	}
}

func TestResolveMetricUnknown(t *testing.T) {
	_, err := ResolveMetric("no_such_metric", defaultContext(t))
	if !errors.Is(err, ErrMetricNotFound) {
		t.Fatalf("err = %v, want ErrMetricNotFound", err)
	}
}

func TestResolveMetricRequiresVocabulary(t *testing.T) {
	_, err := ResolveMetric("chord_variety", Context{})
	if err == nil {
		t.Fatal("expected error for missing vocabulary")
	}
}

func TestListMetricsIncludesDefaults(t *testing.T) {
	names := ListMetrics()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	for _, name := range defaultOrder {
		if !seen[name] {
			t.Fatalf("default metric %s is not registered", name)
		}
	}
}

func TestNewDefaultSetBuildsCanonicalOrder(t *testing.T) {
	metrics, err := NewDefaultSet(defaultContext(t))
	if err != nil {
		t.Fatalf("new default set: %v", err)
	}
	if len(metrics) != len(defaultOrder) {
		t.Fatalf("metric count = %d, want %d", len(metrics), len(defaultOrder))
	}
	for i, m := range metrics {
		if m.Name() != defaultOrder[i] {
			t.Fatalf("metric %d = %s, want %s", i, m.Name(), defaultOrder[i])
		}
	}
}

func TestDefaultWeightsCoverDefaultSet(t *testing.T) {
	weights := DefaultWeights()
	if len(weights) != len(defaultOrder) {
		t.Fatalf("weight count = %d, want %d", len(weights), len(defaultOrder))
	}
	for _, name := range defaultOrder {
		weight, ok := weights[name]
		if !ok {
			t.Fatalf("no weight for %s", name)
		}
		if weight < 0 {
			t.Fatalf("weight for %s is negative", name)
		}
	}
}

func TestNewDefaultSetRequiresSlotsForCongruence(t *testing.T) {
	_, err := NewDefaultSet(Context{Vocabulary: theory.BuiltinVocabulary()})
	if err == nil {
		t.Fatal("expected error without harmonic slots")
	}
}
