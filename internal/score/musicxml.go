package score

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"

	"harmonia/internal/theory"
)

// MusicXML export. Divisions are per quarter note, so a sixteenth is the
// finest duration the writer can place exactly.
const divisions = 4

const beatsPerMeasure = 4

type xmlScore struct {
	XMLName  xml.Name      `xml:"score-partwise"`
	Version  string        `xml:"version,attr"`
	Work     *xmlWork      `xml:"work,omitempty"`
	PartList []xmlPartDecl `xml:"part-list>score-part"`
	Parts    []xmlPart     `xml:"part"`
}

type xmlWork struct {
	Title string `xml:"work-title"`
}

type xmlPartDecl struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"part-name"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Number     int            `xml:"number,attr"`
	Attributes *xmlAttributes `xml:"attributes,omitempty"`
	Notes      []xmlNote      `xml:"note"`
}

type xmlAttributes struct {
	Divisions int      `xml:"divisions"`
	Time      xmlTime  `xml:"time"`
	Clef      *xmlClef `xml:"clef,omitempty"`
}

type xmlTime struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type xmlClef struct {
	Sign string `xml:"sign"`
	Line int    `xml:"line"`
}

type xmlNote struct {
	Chord    *struct{} `xml:"chord,omitempty"`
	Pitch    xmlPitch  `xml:"pitch"`
	Duration int       `xml:"duration"`
}

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter,omitempty"`
	Octave int    `xml:"octave"`
}

// WriteMusicXML writes the score as a partwise MusicXML document.
func WriteMusicXML(w io.Writer, s Score) error {
	melodyPart, err := buildMelodyPart(s.Melody)
	if err != nil {
		return err
	}
	chordPart, err := buildChordPart(s.Chords)
	if err != nil {
		return err
	}

	doc := xmlScore{
		Version: "3.1",
		PartList: []xmlPartDecl{
			{ID: "P1", Name: "Melody"},
			{ID: "P2", Name: "Chords"},
		},
		Parts: []xmlPart{
			{ID: "P1", Measures: melodyPart},
			{ID: "P2", Measures: chordPart},
		},
	}
	if s.Title != "" {
		doc.Work = &xmlWork{Title: s.Title}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}

// ExportFile writes the score to path as MusicXML.
func ExportFile(path string, s Score) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMusicXML(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func buildMelodyPart(notes []theory.Note) ([]xmlMeasure, error) {
	measures := map[int]*xmlMeasure{}
	offset := 0.0
	for _, note := range notes {
		ticks, err := toTicks(note.Duration)
		if err != nil {
			return nil, err
		}
		number := int(offset / beatsPerMeasure)
		measure := ensureMeasure(measures, number, "G")
		measure.Notes = append(measure.Notes, xmlNote{
			Pitch: xmlPitch{
				Step:   string(note.Pitch.Step),
				Alter:  note.Pitch.Alter,
				Octave: note.Pitch.Octave,
			},
			Duration: ticks,
		})
		offset += note.Duration
	}
	return orderMeasures(measures), nil
}

func buildChordPart(chords []ChordEvent) ([]xmlMeasure, error) {
	measures := map[int]*xmlMeasure{}
	for _, event := range chords {
		ticks, err := toTicks(event.Duration)
		if err != nil {
			return nil, err
		}
		number := int(event.Offset / beatsPerMeasure)
		measure := ensureMeasure(measures, number, "F")
		for i, class := range event.Chord.Classes {
			note := xmlNote{
				Pitch:    pitchClassToXML(class),
				Duration: ticks,
			}
			if i > 0 {
				note.Chord = &struct{}{}
			}
			measure.Notes = append(measure.Notes, note)
		}
	}
	return orderMeasures(measures), nil
}

func ensureMeasure(measures map[int]*xmlMeasure, number int, clefSign string) *xmlMeasure {
	if measure, ok := measures[number]; ok {
		return measure
	}
	measure := &xmlMeasure{Number: number + 1}
	if number == 0 {
		clefLine := 2
		if clefSign == "F" {
			clefLine = 4
		}
		measure.Attributes = &xmlAttributes{
			Divisions: divisions,
			Time:      xmlTime{Beats: beatsPerMeasure, BeatType: 4},
			Clef:      &xmlClef{Sign: clefSign, Line: clefLine},
		}
	}
	measures[number] = measure
	return measure
}

func orderMeasures(measures map[int]*xmlMeasure) []xmlMeasure {
	max := -1
	for number := range measures {
		if number > max {
			max = number
		}
	}
	out := make([]xmlMeasure, 0, max+1)
	for number := 0; number <= max; number++ {
		if measure, ok := measures[number]; ok {
			out = append(out, *measure)
		}
	}
	return out
}

func toTicks(duration float64) (int, error) {
	ticks := duration * divisions
	if math.Abs(ticks-math.Round(ticks)) > 1e-9 || ticks <= 0 {
		return 0, fmt.Errorf("duration %v is not representable at %d divisions per quarter", duration, divisions)
	}
	return int(math.Round(ticks)), nil
}

// chordOctave places chord tones below the melody register.
const chordOctave = 4

func pitchClassToXML(class theory.PitchClass) xmlPitch {
	name := class.String()
	pitch := xmlPitch{Step: name[:1], Octave: chordOctave}
	if len(name) > 1 {
		switch name[1] {
		case '#':
			pitch.Alter = 1
		case 'b':
			pitch.Alter = -1
		}
	}
	return pitch
}
