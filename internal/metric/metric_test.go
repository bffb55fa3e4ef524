package metric

import (
	"math"
	"testing"

	"harmonia/internal/theory"
)

// testVocabulary is a small triad alphabet with hand-checkable tables:
// C, F and G are diatonic with the three functions, Db is a chromatic
// dominant, the transitions walk C -> F -> G -> C, and the root-motion
// pairs C/G and C/Db are flagged for parallel fifths.
func testVocabulary(t *testing.T) *theory.Vocabulary {
	t.Helper()
	entries := []theory.VocabularyEntry{
		{Label: "C", Classes: []theory.PitchClass{0, 4, 7}, Function: theory.FunctionTonic, Diatonic: true},
		{Label: "F", Classes: []theory.PitchClass{5, 9, 0}, Function: theory.FunctionSubdominant, Diatonic: true},
		{Label: "G", Classes: []theory.PitchClass{7, 11, 2}, Function: theory.FunctionDominant, Diatonic: true},
		{Label: "Db", Classes: []theory.PitchClass{1, 5, 8}, Function: theory.FunctionDominant, Diatonic: false},
	}
	transitions := map[theory.ChordLabel][]theory.ChordLabel{
		"C": {"F"},
		"F": {"G"},
		"G": {"C"},
	}
	progressions := []theory.Progression{{"F", "G", "C"}}
	parallelFifths := []theory.LabelPair{{"C", "G"}, {"C", "Db"}}

	vocabulary, err := theory.NewVocabulary("test", entries, transitions, progressions, parallelFifths)
	if err != nil {
		t.Fatalf("new vocabulary: %v", err)
	}
	return vocabulary
}

func seq(labels ...theory.ChordLabel) []theory.ChordLabel {
	return labels
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestChordMelodyCongruence(t *testing.T) {
	vocabulary := testVocabulary(t)
	slots := []theory.HarmonicSlot{
		{Offset: 0, Duration: 2, Notes: []theory.SlotNote{{Class: 0, Duration: 1}, {Class: 4, Duration: 1}}},
		{Offset: 2, Duration: 2, Notes: []theory.SlotNote{{Class: 2, Duration: 2}}},
	}
	m := NewChordMelodyCongruence(slots, vocabulary)

	// C covers both first-slot notes, G covers the D in the second slot.
	if got := m.Score(seq("C", "G")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1", got)
	}
	// F misses the D, so only half the melody duration is covered.
	if got := m.Score(seq("C", "F")); !almostEqual(got, 0.5) {
		t.Fatalf("score = %v, want 0.5", got)
	}
}

func TestChordMelodyCongruencePanicsOnLengthMismatch(t *testing.T) {
	vocabulary := testVocabulary(t)
	slots := []theory.HarmonicSlot{{Duration: 2, Notes: []theory.SlotNote{{Class: 0, Duration: 2}}}}
	m := NewChordMelodyCongruence(slots, vocabulary)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for sequence longer than slot count")
		}
	}()
	m.Score(seq("C", "C"))
}

func TestChordVariety(t *testing.T) {
	m := NewChordVariety(testVocabulary(t))

	if got := m.Score(seq("C", "C", "F", "G")); !almostEqual(got, 0.75) {
		t.Fatalf("score = %v, want 0.75", got)
	}
	if got := m.Score(seq("C", "C")); !almostEqual(got, 0.5) {
		t.Fatalf("score = %v, want 0.5", got)
	}
	// Longer than the vocabulary: variety saturates at vocabulary size.
	if got := m.Score(seq("C", "F", "G", "Db", "C", "F")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1", got)
	}
}

func TestChordRepetitions(t *testing.T) {
	m := NewChordRepetitions()

	if got := m.Score(seq("C", "C", "G", "G")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1 for runs within the allowance", got)
	}
	if got := m.Score(seq("C", "C", "C", "G")); !almostEqual(got, 0.5) {
		t.Fatalf("score = %v, want 0.5 for one excess chord", got)
	}
	if got := m.Score(seq("C", "C", "C", "C")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0 for a single run", got)
	}
	if got := m.Score(seq("C", "C")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1 for a sequence no longer than the allowance", got)
	}
}

func TestNonDiatonicChords(t *testing.T) {
	m := NewNonDiatonicChords(testVocabulary(t))

	if got := m.Score(seq("C", "Db", "G", "F")); !almostEqual(got, 0.25) {
		t.Fatalf("score = %v, want 0.25", got)
	}
	if got := m.Score(seq("C", "F")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestHarmonicFlow(t *testing.T) {
	m := NewHarmonicFlow(testVocabulary(t))

	if got := m.Score(seq("C", "F", "G", "C")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1 for all-preferred transitions", got)
	}
	if got := m.Score(seq("C", "G", "F")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0 for no preferred transitions", got)
	}
	if got := m.Score(seq("C", "F", "F")); !almostEqual(got, 0.5) {
		t.Fatalf("score = %v, want 0.5", got)
	}
	if got := m.Score(seq("C")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0 for a single chord", got)
	}
}

func TestFunctionalHarmony(t *testing.T) {
	m := NewFunctionalHarmony(testVocabulary(t))

	if got := m.Score(seq("C")); !almostEqual(got, 1.0/3.0) {
		t.Fatalf("score = %v, want 1/3", got)
	}
	if got := m.Score(seq("C", "F")); !almostEqual(got, 2.0/3.0) {
		t.Fatalf("score = %v, want 2/3", got)
	}
	if got := m.Score(seq("C", "F", "G")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1", got)
	}
	// Db is a dominant, so it covers the same class as G.
	if got := m.Score(seq("Db")); !almostEqual(got, 1.0/3.0) {
		t.Fatalf("score = %v, want 1/3", got)
	}
}

func TestFunctionalProgressions(t *testing.T) {
	m := NewFunctionalProgressions(testVocabulary(t))

	if got := m.Score(seq("F", "G", "C")); !almostEqual(got, 3) {
		t.Fatalf("score = %v, want 3 for an exact cadence", got)
	}
	if got := m.Score(seq("C", "F", "G", "C")); !almostEqual(got, 1.5) {
		t.Fatalf("score = %v, want 1.5", got)
	}
	if got := m.Score(seq("C", "C", "C")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0", got)
	}
	if got := m.Score(seq("C", "C")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0 for sequences shorter than a template", got)
	}
}

func TestVoiceLeading(t *testing.T) {
	m := NewVoiceLeading(testVocabulary(t))

	// Identical chords: all tones retained, no movement.
	if got := m.Score(seq("C", "C")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1", got)
	}
	// C -> G: one common tone, total movement 3 over an 18 ceiling.
	want := (1.0/3.0 + 1.0 - 3.0/18.0) / 2
	if got := m.Score(seq("C", "G")); !almostEqual(got, want) {
		t.Fatalf("score = %v, want %v", got, want)
	}
	if got := m.Score(seq("C")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0 for a single chord", got)
	}
}

func TestParallelFifths(t *testing.T) {
	m := NewParallelFifths(testVocabulary(t))

	// C/G and C/Db are in the table, in either direction.
	if got := m.Score(seq("C", "G")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0", got)
	}
	if got := m.Score(seq("Db", "C")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0", got)
	}
	// F/G is not flagged, so only half the transitions are penalized.
	if got := m.Score(seq("C", "G", "F")); !almostEqual(got, 0.5) {
		t.Fatalf("score = %v, want 0.5", got)
	}
	// A repeated chord is never a table pair.
	if got := m.Score(seq("C", "C")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1", got)
	}
	if got := m.Score(seq("C")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1 for a single chord", got)
	}
}

func TestParallelFifthsSparesCanonicalCadences(t *testing.T) {
	m := NewParallelFifths(theory.BuiltinVocabulary())

	// The ii-V-I motion is never in the curated table.
	if got := m.Score(seq("Dm7", "G7", "Cmaj7")); !almostEqual(got, 1) {
		t.Fatalf("score = %v, want 1", got)
	}
	// Cmaj7/Dm7 is flagged, G7 -> Cmaj7 is not.
	if got := m.Score(seq("Cmaj7", "Dm7")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0", got)
	}
	if got := m.Score(seq("Dm7", "Cmaj7")); !almostEqual(got, 0) {
		t.Fatalf("score = %v, want 0 in the reverse direction", got)
	}
	if got := m.Score(seq("Bm7b5", "C7", "D7", "E7")); !almostEqual(got, 1.0/3.0) {
		t.Fatalf("score = %v, want 1/3", got)
	}
}

func TestMetricsPanicOnEmptySequence(t *testing.T) {
	m := NewChordVariety(testVocabulary(t))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty sequence")
		}
	}()
	m.Score(nil)
}
