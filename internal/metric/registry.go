package metric

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrMetricExists   = errors.New("metric already registered")
	ErrMetricNotFound = errors.New("metric not found")
)

// Builder constructs a metric from the run's reference data.
type Builder func(ctx Context) (Metric, error)

var metricRegistry = struct {
	mu sync.RWMutex
	m  map[string]Builder
}{
	m: make(map[string]Builder),
}

// RegisterMetric registers a metric builder under a unique name.
func RegisterMetric(name string, builder Builder) error {
	if name == "" {
		return errors.New("metric name is required")
	}
	if builder == nil {
		return errors.New("metric builder is required")
	}

	metricRegistry.mu.Lock()
	defer metricRegistry.mu.Unlock()

	if _, exists := metricRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrMetricExists, name)
	}
	metricRegistry.m[name] = builder
	return nil
}

// ResolveMetric builds the named metric against the given context.
func ResolveMetric(name string, ctx Context) (Metric, error) {
	metricRegistry.mu.RLock()
	builder, ok := metricRegistry.m[name]
	metricRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMetricNotFound, name)
	}
	return builder(ctx)
}

// ListMetrics returns registered metric names in sorted order.
func ListMetrics() []string {
	metricRegistry.mu.RLock()
	defer metricRegistry.mu.RUnlock()

	names := make([]string, 0, len(metricRegistry.m))
	for name := range metricRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetMetricRegistryForTests() {
	metricRegistry.mu.Lock()
	metricRegistry.m = make(map[string]Builder)
	metricRegistry.mu.Unlock()
	registerDefaults()
}
