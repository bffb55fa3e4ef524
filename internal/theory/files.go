package theory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAML document shapes for vocabulary and melody files. Vocabularies and
// melodies are caller-supplied data, so the file formats live here in the
// theory package next to their validation.

type vocabularyFile struct {
	Name           string              `yaml:"name"`
	Chords         []chordEntryFile    `yaml:"chords"`
	Transitions    map[string][]string `yaml:"transitions"`
	Progressions   [][]string          `yaml:"progressions"`
	ParallelFifths [][]string          `yaml:"parallel_fifths"`
}

type chordEntryFile struct {
	Label    string   `yaml:"label"`
	Notes    []string `yaml:"notes"`
	Function string   `yaml:"function"`
	Diatonic bool     `yaml:"diatonic"`
}

type melodyFile struct {
	Name  string          `yaml:"name"`
	Notes []noteEntryFile `yaml:"notes"`
}

type noteEntryFile struct {
	Pitch    string  `yaml:"pitch"`
	Duration float64 `yaml:"duration"`
}

// LoadVocabularyFile reads and validates a vocabulary YAML file.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary parses a vocabulary YAML document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("vocabulary file is missing a name")
	}

	entries := make([]VocabularyEntry, 0, len(file.Chords))
	for _, chord := range file.Chords {
		noteClasses := make([]PitchClass, 0, len(chord.Notes))
		for _, note := range chord.Notes {
			class, err := ParsePitchClass(note)
			if err != nil {
				return nil, fmt.Errorf("vocabulary %q: chord %q: %w", file.Name, chord.Label, err)
			}
			noteClasses = append(noteClasses, class)
		}
		function, err := ParseFunction(chord.Function)
		if err != nil {
			return nil, fmt.Errorf("vocabulary %q: chord %q: %w", file.Name, chord.Label, err)
		}
		entries = append(entries, VocabularyEntry{
			Label:    ChordLabel(chord.Label),
			Classes:  noteClasses,
			Function: function,
			Diatonic: chord.Diatonic,
		})
	}

	transitions := make(map[ChordLabel][]ChordLabel, len(file.Transitions))
	for from, targets := range file.Transitions {
		list := make([]ChordLabel, len(targets))
		for i, to := range targets {
			list[i] = ChordLabel(to)
		}
		transitions[ChordLabel(from)] = list
	}

	progressions := make([]Progression, len(file.Progressions))
	for i, progression := range file.Progressions {
		labels := make(Progression, len(progression))
		for j, label := range progression {
			labels[j] = ChordLabel(label)
		}
		progressions[i] = labels
	}

	parallelFifths := make([]LabelPair, len(file.ParallelFifths))
	for i, pair := range file.ParallelFifths {
		if len(pair) != 2 {
			return nil, fmt.Errorf("vocabulary %q: parallel-fifth pair %d has %d chords, want 2", file.Name, i, len(pair))
		}
		parallelFifths[i] = LabelPair{ChordLabel(pair[0]), ChordLabel(pair[1])}
	}

	return NewVocabulary(file.Name, entries, transitions, progressions, parallelFifths)
}

// LoadMelodyFile reads and validates a melody YAML file.
func LoadMelodyFile(path string) (Melody, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Melody{}, fmt.Errorf("read melody file %s: %w", path, err)
	}
	return ParseMelody(data)
}

// ParseMelody parses a melody YAML document.
func ParseMelody(data []byte) (Melody, error) {
	var file melodyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Melody{}, fmt.Errorf("parse melody: %w", err)
	}
	if file.Name == "" {
		return Melody{}, fmt.Errorf("melody file is missing a name")
	}

	notes := make([]Note, 0, len(file.Notes))
	for i, note := range file.Notes {
		pitch, err := ParsePitch(note.Pitch)
		if err != nil {
			return Melody{}, fmt.Errorf("melody %q: note %d: %w", file.Name, i, err)
		}
		notes = append(notes, Note{Pitch: pitch, Duration: note.Duration})
	}
	return NewMelody(file.Name, notes)
}
