package score

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"harmonia/internal/theory"
)

func mustPitch(t *testing.T, s string) theory.Pitch {
	t.Helper()
	pitch, err := theory.ParsePitch(s)
	if err != nil {
		t.Fatalf("parse pitch %q: %v", s, err)
	}
	return pitch
}

func testMelody(t *testing.T) theory.Melody {
	t.Helper()
	melody, err := theory.NewMelody("test-line", []theory.Note{
		{Pitch: mustPitch(t, "C5"), Duration: 2},
		{Pitch: mustPitch(t, "E5"), Duration: 2},
	})
	if err != nil {
		t.Fatalf("new melody: %v", err)
	}
	return melody
}

func testVocabulary(t *testing.T) *theory.Vocabulary {
	t.Helper()
	entries := []theory.VocabularyEntry{
		{Label: "C", Classes: []theory.PitchClass{0, 4, 7}, Function: theory.FunctionTonic, Diatonic: true},
		{Label: "G", Classes: []theory.PitchClass{7, 11, 2}, Function: theory.FunctionDominant, Diatonic: true},
	}
	vocabulary, err := theory.NewVocabulary("triads", entries, nil, nil, nil)
	if err != nil {
		t.Fatalf("new vocabulary: %v", err)
	}
	return vocabulary
}

func TestBuildPlacesOneChordPerSlot(t *testing.T) {
	melody := testMelody(t)
	vocabulary := testVocabulary(t)

	built, err := Build(melody, []theory.ChordLabel{"C", "G"}, vocabulary, theory.DefaultConvention)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if built.Title != "test-line" {
		t.Fatalf("title = %q", built.Title)
	}
	if len(built.Melody) != 2 {
		t.Fatalf("melody notes = %d, want 2", len(built.Melody))
	}
	if len(built.Chords) != 2 {
		t.Fatalf("chord events = %d, want 2", len(built.Chords))
	}
	first, second := built.Chords[0], built.Chords[1]
	if first.Offset != 0 || first.Duration != 2 || first.Chord.Label != "C" {
		t.Fatalf("first event = %+v", first)
	}
	if second.Offset != 2 || second.Duration != 2 || second.Chord.Label != "G" {
		t.Fatalf("second event = %+v", second)
	}
}

func TestBuildRejectsLengthMismatch(t *testing.T) {
	melody := testMelody(t)
	vocabulary := testVocabulary(t)

	if _, err := Build(melody, []theory.ChordLabel{"C"}, vocabulary, theory.DefaultConvention); err == nil {
		t.Fatal("expected error for short chord sequence")
	}
}

func TestBuildRejectsUnknownChord(t *testing.T) {
	melody := testMelody(t)
	vocabulary := testVocabulary(t)

	_, err := Build(melody, []theory.ChordLabel{"C", "F#dim"}, vocabulary, theory.DefaultConvention)
	if err == nil {
		t.Fatal("expected error for chord outside vocabulary")
	}
	if !strings.Contains(err.Error(), "F#dim") {
		t.Fatalf("error %q should name the chord", err)
	}
}

func TestWriteMusicXMLDocumentShape(t *testing.T) {
	melody := testMelody(t)
	vocabulary := testVocabulary(t)

	built, err := Build(melody, []theory.ChordLabel{"C", "G"}, vocabulary, theory.DefaultConvention)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteMusicXML(&buf, built); err != nil {
		t.Fatalf("write: %v", err)
	}

	var doc xmlScore
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.Version != "3.1" {
		t.Fatalf("version = %q, want 3.1", doc.Version)
	}
	if doc.Work == nil || doc.Work.Title != "test-line" {
		t.Fatalf("work = %+v", doc.Work)
	}
	if len(doc.Parts) != 2 || len(doc.PartList) != 2 {
		t.Fatalf("parts = %d, declarations = %d, want 2 each", len(doc.Parts), len(doc.PartList))
	}

	melodyPart := doc.Parts[0]
	if len(melodyPart.Measures) != 1 {
		t.Fatalf("melody measures = %d, want 1", len(melodyPart.Measures))
	}
	attrs := melodyPart.Measures[0].Attributes
	if attrs == nil || attrs.Divisions != 4 || attrs.Clef == nil || attrs.Clef.Sign != "G" || attrs.Clef.Line != 2 {
		t.Fatalf("melody attributes = %+v", attrs)
	}
	if len(melodyPart.Measures[0].Notes) != 2 {
		t.Fatalf("melody notes = %d, want 2", len(melodyPart.Measures[0].Notes))
	}
	if got := melodyPart.Measures[0].Notes[0]; got.Pitch.Step != "C" || got.Pitch.Octave != 5 || got.Duration != 8 {
		t.Fatalf("melody note = %+v", got)
	}

	chordPart := doc.Parts[1]
	if len(chordPart.Measures) != 1 {
		t.Fatalf("chord measures = %d, want 1", len(chordPart.Measures))
	}
	chordAttrs := chordPart.Measures[0].Attributes
	if chordAttrs == nil || chordAttrs.Clef == nil || chordAttrs.Clef.Sign != "F" || chordAttrs.Clef.Line != 4 {
		t.Fatalf("chord attributes = %+v", chordAttrs)
	}
	notes := chordPart.Measures[0].Notes
	if len(notes) != 6 {
		t.Fatalf("chord notes = %d, want 6", len(notes))
	}
	for i, note := range notes {
		withinChord := i%3 != 0
		if withinChord && note.Chord == nil {
			t.Fatalf("note %d should carry a chord marker", i)
		}
		if !withinChord && note.Chord != nil {
			t.Fatalf("note %d should start its chord", i)
		}
		if note.Duration != 8 {
			t.Fatalf("note %d duration = %d, want 8", i, note.Duration)
		}
	}
}

func TestWriteMusicXMLRejectsUnrepresentableDuration(t *testing.T) {
	s := Score{
		Melody: []theory.Note{{Pitch: mustPitch(t, "C5"), Duration: 0.3}},
	}
	if err := WriteMusicXML(&bytes.Buffer{}, s); err == nil {
		t.Fatal("expected error for duration below the division grid")
	}
}

func TestExportFileWritesDocument(t *testing.T) {
	melody := testMelody(t)
	vocabulary := testVocabulary(t)

	built, err := Build(melody, []theory.ChordLabel{"C", "G"}, vocabulary, theory.DefaultConvention)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test-line.musicxml")
	if err := ExportFile(path, built); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "<score-partwise") {
		t.Fatal("exported file should contain a partwise score")
	}
}
