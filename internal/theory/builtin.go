package theory

import "fmt"

// Built-in library entries. These mirror the C major jazz setup the
// project ships as a default: a 14-chord alphabet, its preferred
// transitions, and the common cadential progressions.

const (
	BuiltinVocabularyName = "c-major-jazz"
	BuiltinMelodyName     = "twinkle-twinkle"
)

func classes(names ...string) []PitchClass {
	out := make([]PitchClass, len(names))
	for i, name := range names {
		class, err := ParsePitchClass(name)
		if err != nil {
			panic(fmt.Sprintf("harmonia: builtin vocabulary: %v", err))
		}
		out[i] = class
	}
	return out
}

// BuiltinVocabulary returns the default C major jazz vocabulary.
func BuiltinVocabulary() *Vocabulary {
	entries := []VocabularyEntry{
		{Label: "Cmaj7", Classes: classes("C", "E", "G", "B"), Function: FunctionTonic, Diatonic: true},
		{Label: "Dm7", Classes: classes("D", "F", "A", "C"), Function: FunctionSubdominant, Diatonic: true},
		{Label: "Em7", Classes: classes("E", "G", "B", "D"), Function: FunctionTonic, Diatonic: true},
		{Label: "Fmaj7", Classes: classes("F", "A", "C", "E"), Function: FunctionSubdominant, Diatonic: true},
		{Label: "G7", Classes: classes("G", "B", "D", "F"), Function: FunctionDominant, Diatonic: true},
		{Label: "Am7", Classes: classes("A", "C", "E", "G"), Function: FunctionTonic, Diatonic: true},
		{Label: "Bm7b5", Classes: classes("B", "D", "F", "A"), Function: FunctionDominant, Diatonic: true},
		{Label: "C7", Classes: classes("C", "E", "G", "Bb"), Function: FunctionDominant, Diatonic: false},
		{Label: "D7", Classes: classes("D", "F#", "A", "C"), Function: FunctionDominant, Diatonic: false},
		{Label: "E7", Classes: classes("E", "G#", "B", "D"), Function: FunctionDominant, Diatonic: false},
		{Label: "A7", Classes: classes("A", "C#", "E", "G"), Function: FunctionDominant, Diatonic: false},
		{Label: "Dm7b5", Classes: classes("D", "F", "Ab", "C"), Function: FunctionSubdominant, Diatonic: false},
		{Label: "Edim7", Classes: classes("E", "G", "Bb", "Db"), Function: FunctionDominant, Diatonic: false},
		{Label: "Gm7", Classes: classes("G", "Bb", "D", "F"), Function: FunctionSubdominant, Diatonic: false},
	}

	transitions := map[ChordLabel][]ChordLabel{
		"Cmaj7": {"Em7", "Fmaj7", "Am7", "C7", "E7", "A7", "Edim7"},
		"Dm7":   {"G7", "Am7", "Bm7b5", "D7"},
		"Em7":   {"Am7", "A7", "Edim7", "Gm7"},
		"Fmaj7": {"Cmaj7", "Em7", "G7", "Bm7b5", "D7", "E7", "Dm7b5"},
		"G7":    {"Cmaj7", "Am7", "Em7"},
		"Am7":   {"Dm7", "Fmaj7", "Gm7", "Dm7b5"},
		"Bm7b5": {"Em7", "E7"},
		"C7":    {"Fmaj7"},
		"D7":    {"G7"},
		"E7":    {"Am7"},
		"A7":    {"Dm7"},
		"Dm7b5": {"Cmaj7", "Em7"},
		"Edim7": {"Dm7", "Fmaj7"},
		"Gm7":   {"C7", "Edim7"},
	}

	progressions := []Progression{
		{"Dm7", "G7", "Cmaj7"},
		{"Fmaj7", "Dm7b5", "Cmaj7"},
		{"Em7", "A7", "Dm7"},
		{"Cmaj7", "Edim7", "Dm7"},
		{"Fmaj7", "Bm7b5", "Em7"},
		{"Fmaj7", "Bm7b5", "E7"},
		{"Gm7", "C7", "Fmaj7"},
		{"Am7", "D7", "G7"},
		{"Am7", "Dm7", "G7"},
		{"Bm7b5", "E7", "Am7"},
		{"Bm7b5", "Em7", "Am7"},
	}

	parallelFifths := []LabelPair{
		{"Cmaj7", "Dm7"},
		{"Cmaj7", "D7"},
		{"Dm7", "Em7"},
		{"Dm7", "E7"},
		{"Em7", "D7"},
		{"Am7", "Bm7b5"},
		{"Bm7b5", "Cmaj7"},
		{"Bm7b5", "C7"},
		{"D7", "E7"},
	}

	vocabulary, err := NewVocabulary(BuiltinVocabularyName, entries, transitions, progressions, parallelFifths)
	if err != nil {
		panic(fmt.Sprintf("harmonia: builtin vocabulary: %v", err))
	}
	return vocabulary
}

// BuiltinMelody returns the default demo melody, Twinkle Twinkle Little
// Star over twelve bars of 4/4.
func BuiltinMelody() Melody {
	specs := []struct {
		pitch    string
		duration float64
	}{
		{"C5", 1}, {"C5", 1}, {"G5", 1}, {"G5", 1},
		{"A5", 1}, {"A5", 1}, {"G5", 2},
		{"F5", 1}, {"F5", 1}, {"E5", 1}, {"E5", 1},
		{"D5", 1}, {"D5", 1}, {"C5", 2},
		{"G5", 1}, {"G5", 1}, {"F5", 1}, {"F5", 1},
		{"E5", 1}, {"E5", 1}, {"D5", 2},
		{"G5", 1}, {"G5", 1}, {"F5", 1}, {"F5", 1},
		{"E5", 1}, {"E5", 1}, {"D5", 2},
		{"C5", 1}, {"C5", 1}, {"G5", 1}, {"G5", 1},
		{"A5", 1}, {"A5", 1}, {"G5", 2},
		{"F5", 1}, {"F5", 1}, {"E5", 1}, {"E5", 1},
		{"D5", 1}, {"D5", 1}, {"C5", 2},
	}

	notes := make([]Note, 0, len(specs))
	for _, spec := range specs {
		pitch, err := ParsePitch(spec.pitch)
		if err != nil {
			panic(fmt.Sprintf("harmonia: builtin melody: %v", err))
		}
		notes = append(notes, Note{Pitch: pitch, Duration: spec.duration})
	}
	melody, err := NewMelody(BuiltinMelodyName, notes)
	if err != nil {
		panic(fmt.Sprintf("harmonia: builtin melody: %v", err))
	}
	return melody
}
