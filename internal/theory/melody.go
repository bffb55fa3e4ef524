package theory

import (
	"fmt"
	"math"
)

const beatsPerBar = 4.0

// Note is one melody note: a pitch sounding for a duration measured in
// quarter lengths.
type Note struct {
	Pitch    Pitch
	Duration float64
}

// Melody is the fixed monophonic line the harmonizer works against.
// It is derived data: total duration and bar count are computed from the
// notes under a 4/4 time signature and never change afterwards.
type Melody struct {
	Name  string
	Notes []Note

	duration float64
	bars     int
}

// NewMelody builds a melody from notes and computes its duration and bar
// count. The duration must land on a bar boundary so the harmonic grid
// covers the whole line.
func NewMelody(name string, notes []Note) (Melody, error) {
	if len(notes) == 0 {
		return Melody{}, fmt.Errorf("melody %q has no notes", name)
	}
	total := 0.0
	for i, note := range notes {
		if note.Duration <= 0 {
			return Melody{}, fmt.Errorf("melody %q: note %d has non-positive duration %v", name, i, note.Duration)
		}
		total += note.Duration
	}
	bars := total / beatsPerBar
	if math.Abs(bars-math.Round(bars)) > 1e-9 {
		return Melody{}, fmt.Errorf("melody %q: duration %v does not fill whole bars", name, total)
	}
	return Melody{
		Name:     name,
		Notes:    append([]Note(nil), notes...),
		duration: total,
		bars:     int(math.Round(bars)),
	}, nil
}

// Duration returns the total melody duration in quarter lengths.
func (m Melody) Duration() float64 { return m.duration }

// Bars returns the number of 4/4 bars the melody spans.
func (m Melody) Bars() int { return m.bars }

// HarmonicSlot is one unit of harmonic rhythm: a fixed time window to
// which exactly one chord is assigned. Notes holds the melody notes
// sounding during the window, with durations clipped to the window.
type HarmonicSlot struct {
	Offset   float64
	Duration float64
	Notes    []SlotNote
}

// SlotNote is a melody note as seen from inside a slot: its pitch class
// and how long it sounds within the slot.
type SlotNote struct {
	Class    PitchClass
	Duration float64
}

// Convention fixes the harmonic rhythm used to partition a melody.
type Convention struct {
	SlotsPerBar int
}

// DefaultConvention is two chords per bar, the usual rhythm-changes feel.
var DefaultConvention = Convention{SlotsPerBar: 2}

// Slots partitions the melody into harmonic slots. A note that crosses a
// slot boundary contributes to every slot it overlaps, with its duration
// split accordingly.
func (m Melody) Slots(convention Convention) ([]HarmonicSlot, error) {
	if convention.SlotsPerBar <= 0 {
		return nil, fmt.Errorf("slots per bar must be > 0, got %d", convention.SlotsPerBar)
	}
	slotLength := beatsPerBar / float64(convention.SlotsPerBar)
	slotCount := m.bars * convention.SlotsPerBar

	slots := make([]HarmonicSlot, slotCount)
	for i := range slots {
		slots[i] = HarmonicSlot{Offset: float64(i) * slotLength, Duration: slotLength}
	}

	offset := 0.0
	for _, note := range m.Notes {
		start := offset
		end := offset + note.Duration
		first := int(start / slotLength)
		last := int((end - 1e-9) / slotLength)
		for s := first; s <= last && s < slotCount; s++ {
			slotStart := float64(s) * slotLength
			slotEnd := slotStart + slotLength
			overlap := math.Min(end, slotEnd) - math.Max(start, slotStart)
			if overlap <= 1e-9 {
				continue
			}
			slots[s].Notes = append(slots[s].Notes, SlotNote{
				Class:    note.Pitch.Class(),
				Duration: overlap,
			})
		}
		offset = end
	}
	return slots, nil
}
