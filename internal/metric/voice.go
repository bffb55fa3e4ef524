package metric

import (
	"harmonia/internal/theory"
)

// maxStep is the largest distance between two pitch classes on the
// semitone circle.
const maxStep = theory.PitchClassCount / 2

// VoiceLeading rewards smooth motion between adjacent chords: retained
// common tones and small total pitch-class movement under smallest-step
// matching. Each transition scores the mean of a common-tone term and a
// movement term, both in [0, 1], and the metric averages transitions, so
// scores are in [0, 1]. A single-chord sequence scores 0.
type VoiceLeading struct {
	vocabulary *theory.Vocabulary
}

func NewVoiceLeading(vocabulary *theory.Vocabulary) *VoiceLeading {
	return &VoiceLeading{vocabulary: vocabulary}
}

func (m *VoiceLeading) Name() string {
	return "voice_leading"
}

func (m *VoiceLeading) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	transitions := len(seq) - 1
	if transitions <= 0 {
		return 0
	}

	total := 0.0
	for i := 0; i < transitions; i++ {
		current := m.vocabulary.MustChord(seq[i])
		next := m.vocabulary.MustChord(seq[i+1])
		total += transitionSmoothness(current, next)
	}
	return total / float64(transitions)
}

func transitionSmoothness(current, next theory.Chord) float64 {
	common := 0
	movement := 0
	for _, class := range current.Classes {
		step := maxStep
		for _, target := range next.Classes {
			if d := class.Distance(target); d < step {
				step = d
			}
		}
		if step == 0 {
			common++
		}
		movement += step
	}

	size := len(current.Classes)
	if len(next.Classes) > size {
		size = len(next.Classes)
	}
	commonTerm := float64(common) / float64(size)
	movementTerm := 1 - float64(movement)/float64(maxStep*len(current.Classes))
	return (commonTerm + movementTerm) / 2
}

// ParallelFifths penalizes transitions the vocabulary's parallel-fifths
// table flags, in either direction. The table is curated per vocabulary:
// deriving parallels from pitch-class content alone would flag almost
// every pair of seventh chords, since nearly all of them contain a
// fifth. Each flagged transition subtracts an equal share, so scores
// are in [0, 1]; 1 means no parallel fifths. A single-chord sequence
// scores 1.
type ParallelFifths struct {
	vocabulary *theory.Vocabulary
}

func NewParallelFifths(vocabulary *theory.Vocabulary) *ParallelFifths {
	return &ParallelFifths{vocabulary: vocabulary}
}

func (m *ParallelFifths) Name() string {
	return "parallel_fifths"
}

func (m *ParallelFifths) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	transitions := len(seq) - 1
	if transitions <= 0 {
		return 1
	}
	flagged := 0
	for i := 0; i < transitions; i++ {
		if m.vocabulary.ParallelFifthPair(seq[i], seq[i+1]) {
			flagged++
		}
	}
	return 1 - float64(flagged)/float64(transitions)
}
