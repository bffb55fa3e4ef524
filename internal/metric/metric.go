package metric

import (
	"fmt"

	"harmonia/internal/theory"
)

// Metric is one independent scoring rule over a chord sequence. Metrics
// are pure functions of their construction-time reference data and the
// sequence: no shared state, no side effects. Each implementation
// documents the range its scores fall in so that weighting across
// metrics stays meaningful.
//
// A metric is only defined for sequences the population invariant
// allows: non-empty, one chord per harmonic slot, labels drawn from the
// vocabulary. Anything else is an internal invariant violation and
// panics rather than returning an error.
type Metric interface {
	Name() string
	Score(seq []theory.ChordLabel) float64
}

// Context carries the reference data metrics are built against: the
// melody's slot partition and the chord vocabulary with its tables.
type Context struct {
	Slots      []theory.HarmonicSlot
	Vocabulary *theory.Vocabulary
}

func mustNonEmpty(name string, seq []theory.ChordLabel) {
	if len(seq) == 0 {
		panic(fmt.Sprintf("harmonia: invalid candidate: metric %s given an empty sequence", name))
	}
}
