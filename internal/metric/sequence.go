package metric

import (
	"harmonia/internal/theory"
)

// ChordVariety rewards using distinct chords. The score is the distinct
// label count divided by the smaller of the sequence length and the
// vocabulary size, so variety saturates once every slot (or every chord
// in the alphabet) would need a different label. Scores are in (0, 1].
type ChordVariety struct {
	vocabularySize int
}

func NewChordVariety(vocabulary *theory.Vocabulary) *ChordVariety {
	return &ChordVariety{vocabularySize: vocabulary.Size()}
}

func (m *ChordVariety) Name() string {
	return "chord_variety"
}

func (m *ChordVariety) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	distinct := make(map[theory.ChordLabel]struct{}, len(seq))
	for _, label := range seq {
		distinct[label] = struct{}{}
	}
	limit := len(seq)
	if m.vocabularySize < limit {
		limit = m.vocabularySize
	}
	return float64(len(distinct)) / float64(limit)
}

// defaultAllowedRun is how many identical consecutive chords pass without
// penalty: holding a chord for a whole bar is fine at two slots per bar.
const defaultAllowedRun = 2

// ChordRepetitions penalizes long runs of the same chord. Runs up to the
// allowed length are tolerated; every chord beyond that adds penalty, so
// longer runs cost increasingly more. Scores are in [0, 1]; 1 means no
// run exceeds the allowed length, 0 means the whole sequence is one
// chord.
type ChordRepetitions struct {
	allowedRun int
}

func NewChordRepetitions() *ChordRepetitions {
	return &ChordRepetitions{allowedRun: defaultAllowedRun}
}

func (m *ChordRepetitions) Name() string {
	return "chord_repetitions"
}

func (m *ChordRepetitions) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	maxExcess := len(seq) - m.allowedRun
	if maxExcess <= 0 {
		return 1
	}

	excess := 0
	run := 1
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			run++
			if run > m.allowedRun {
				excess++
			}
			continue
		}
		run = 1
	}
	return 1 - float64(excess)/float64(maxExcess)
}

// NonDiatonicChords rewards chromatic color: the fraction of chords
// flagged non-diatonic relative to the melody's home key. Scores are in
// [0, 1]. The reward direction is deliberately the opposite of a
// stay-in-key rule.
type NonDiatonicChords struct {
	vocabulary *theory.Vocabulary
}

func NewNonDiatonicChords(vocabulary *theory.Vocabulary) *NonDiatonicChords {
	return &NonDiatonicChords{vocabulary: vocabulary}
}

func (m *NonDiatonicChords) Name() string {
	return "non_diatonic_chords"
}

func (m *NonDiatonicChords) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	count := 0
	for _, label := range seq {
		if !m.vocabulary.MustChord(label).Diatonic {
			count++
		}
	}
	return float64(count) / float64(len(seq))
}
