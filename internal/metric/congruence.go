package metric

import (
	"fmt"

	"harmonia/internal/theory"
)

// ChordMelodyCongruence rewards chords that contain the melody notes
// sounding during their slot. Each melody note contributes its duration
// when its pitch class is a member of the slot's chord, and the total is
// normalized by the melody duration, giving partial credit for partial
// membership. Scores are in [0, 1]; 1 means every melody note is a chord
// tone of its slot.
type ChordMelodyCongruence struct {
	slots      []theory.HarmonicSlot
	vocabulary *theory.Vocabulary
	total      float64
}

// NewChordMelodyCongruence builds the metric from the melody's slot
// partition and the chord vocabulary.
func NewChordMelodyCongruence(slots []theory.HarmonicSlot, vocabulary *theory.Vocabulary) *ChordMelodyCongruence {
	total := 0.0
	for _, slot := range slots {
		for _, note := range slot.Notes {
			total += note.Duration
		}
	}
	return &ChordMelodyCongruence{slots: slots, vocabulary: vocabulary, total: total}
}

func (m *ChordMelodyCongruence) Name() string {
	return "chord_melody_congruence"
}

func (m *ChordMelodyCongruence) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)
	if len(seq) != len(m.slots) {
		panic(fmt.Sprintf("harmonia: invalid candidate: sequence length %d does not match %d harmonic slots", len(seq), len(m.slots)))
	}
	if m.total <= 0 {
		return 0
	}

	matched := 0.0
	for i, label := range seq {
		chord := m.vocabulary.MustChord(label)
		for _, note := range m.slots[i].Notes {
			if chord.Contains(note.Class) {
				matched += note.Duration
			}
		}
	}
	return matched / m.total
}
