// Package score turns a finished harmonization into a two-part notated
// score: the melody on top, one block chord per harmonic slot below.
package score

import (
	"fmt"

	"harmonia/internal/theory"
)

// ChordEvent is one chord placed on the timeline.
type ChordEvent struct {
	Offset   float64
	Duration float64
	Chord    theory.Chord
}

// Score is the assembled piece, ready for export.
type Score struct {
	Title  string
	Melody []theory.Note
	Chords []ChordEvent
}

// Build lines the chord sequence up against the melody's harmonic grid.
// The sequence must carry exactly one chord per slot.
func Build(melody theory.Melody, seq []theory.ChordLabel, vocabulary *theory.Vocabulary, convention theory.Convention) (Score, error) {
	slots, err := melody.Slots(convention)
	if err != nil {
		return Score{}, err
	}
	if len(seq) != len(slots) {
		return Score{}, fmt.Errorf("chord sequence length %d does not match %d harmonic slots", len(seq), len(slots))
	}

	chords := make([]ChordEvent, len(seq))
	for i, label := range seq {
		chord, ok := vocabulary.Chord(label)
		if !ok {
			return Score{}, fmt.Errorf("chord %q not in vocabulary %q", label, vocabulary.Name)
		}
		chords[i] = ChordEvent{
			Offset:   slots[i].Offset,
			Duration: slots[i].Duration,
			Chord:    chord,
		}
	}

	return Score{
		Title:  melody.Name,
		Melody: append([]theory.Note(nil), melody.Notes...),
		Chords: chords,
	}, nil
}
