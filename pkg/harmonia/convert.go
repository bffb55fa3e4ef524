package harmonia

import (
	"fmt"

	"harmonia/internal/fitness"
	"harmonia/internal/model"
	"harmonia/internal/storage"
	"harmonia/internal/theory"
)

// Conversions between the theory types the engine works with and the
// versioned records the store persists.

func versioned() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}

func melodyToRecord(melody theory.Melody) model.MelodyRecord {
	notes := make([]model.NoteRecord, 0, len(melody.Notes))
	for _, note := range melody.Notes {
		notes = append(notes, model.NoteRecord{
			Pitch:    note.Pitch.String(),
			Duration: note.Duration,
		})
	}
	return model.MelodyRecord{
		VersionedRecord: versioned(),
		Name:            melody.Name,
		Notes:           notes,
	}
}

func melodyFromRecord(record model.MelodyRecord) (theory.Melody, error) {
	notes := make([]theory.Note, 0, len(record.Notes))
	for i, note := range record.Notes {
		pitch, err := theory.ParsePitch(note.Pitch)
		if err != nil {
			return theory.Melody{}, fmt.Errorf("melody record %q: note %d: %w", record.Name, i, err)
		}
		notes = append(notes, theory.Note{Pitch: pitch, Duration: note.Duration})
	}
	return theory.NewMelody(record.Name, notes)
}

func vocabularyToRecord(vocabulary *theory.Vocabulary) model.VocabularyRecord {
	chords := make([]model.ChordRecord, 0, vocabulary.Size())
	for _, label := range vocabulary.Labels() {
		chord := vocabulary.MustChord(label)
		notes := make([]string, 0, len(chord.Classes))
		for _, class := range chord.Classes {
			notes = append(notes, class.String())
		}
		chords = append(chords, model.ChordRecord{
			Label:    string(chord.Label),
			Notes:    notes,
			Function: chord.Function.String(),
			Diatonic: chord.Diatonic,
		})
	}

	transitions := make(map[string][]string)
	for from, targets := range vocabulary.Transitions() {
		transitions[string(from)] = labelsToStrings(targets)
	}

	progressions := make([][]string, 0)
	for _, progression := range vocabulary.Progressions() {
		progressions = append(progressions, labelsToStrings(progression))
	}

	parallelFifths := make([][]string, 0)
	for _, pair := range vocabulary.ParallelFifthPairs() {
		parallelFifths = append(parallelFifths, []string{string(pair[0]), string(pair[1])})
	}

	return model.VocabularyRecord{
		VersionedRecord: versioned(),
		Name:            vocabulary.Name,
		Chords:          chords,
		Transitions:     transitions,
		Progressions:    progressions,
		ParallelFifths:  parallelFifths,
	}
}

func vocabularyFromRecord(record model.VocabularyRecord) (*theory.Vocabulary, error) {
	entries := make([]theory.VocabularyEntry, 0, len(record.Chords))
	for _, chord := range record.Chords {
		noteClasses := make([]theory.PitchClass, 0, len(chord.Notes))
		for _, note := range chord.Notes {
			class, err := theory.ParsePitchClass(note)
			if err != nil {
				return nil, fmt.Errorf("vocabulary record %q: chord %q: %w", record.Name, chord.Label, err)
			}
			noteClasses = append(noteClasses, class)
		}
		function, err := theory.ParseFunction(chord.Function)
		if err != nil {
			return nil, fmt.Errorf("vocabulary record %q: chord %q: %w", record.Name, chord.Label, err)
		}
		entries = append(entries, theory.VocabularyEntry{
			Label:    theory.ChordLabel(chord.Label),
			Classes:  noteClasses,
			Function: function,
			Diatonic: chord.Diatonic,
		})
	}

	transitions := make(map[theory.ChordLabel][]theory.ChordLabel, len(record.Transitions))
	for from, targets := range record.Transitions {
		transitions[theory.ChordLabel(from)] = stringsToLabels(targets)
	}

	progressions := make([]theory.Progression, 0, len(record.Progressions))
	for _, progression := range record.Progressions {
		progressions = append(progressions, theory.Progression(stringsToLabels(progression)))
	}

	parallelFifths := make([]theory.LabelPair, 0, len(record.ParallelFifths))
	for i, pair := range record.ParallelFifths {
		if len(pair) != 2 {
			return nil, fmt.Errorf("vocabulary record %q: parallel-fifth pair %d has %d chords, want 2", record.Name, i, len(pair))
		}
		parallelFifths = append(parallelFifths, theory.LabelPair{theory.ChordLabel(pair[0]), theory.ChordLabel(pair[1])})
	}

	return theory.NewVocabulary(record.Name, entries, transitions, progressions, parallelFifths)
}

func breakdownToRecords(breakdown []fitness.MetricScore) []model.MetricScoreRecord {
	out := make([]model.MetricScoreRecord, 0, len(breakdown))
	for _, line := range breakdown {
		out = append(out, model.MetricScoreRecord{
			Name:     line.Name,
			Raw:      line.Raw,
			Weight:   line.Weight,
			Weighted: line.Weighted,
		})
	}
	return out
}

func breakdownToLines(breakdown []fitness.MetricScore) []MetricLine {
	out := make([]MetricLine, 0, len(breakdown))
	for _, line := range breakdown {
		out = append(out, MetricLine(line))
	}
	return out
}

func labelsToStrings(labels []theory.ChordLabel) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = string(label)
	}
	return out
}

func stringsToLabels(values []string) []theory.ChordLabel {
	out := make([]theory.ChordLabel, len(values))
	for i, value := range values {
		out[i] = theory.ChordLabel(value)
	}
	return out
}
