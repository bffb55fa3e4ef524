package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// PitchClass is a chromatic pitch class in [0, 11], with 0 = C.
type PitchClass int

const PitchClassCount = 12

var pitchClassNames = [PitchClassCount]string{
	"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B",
}

var baseSteps = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

func (pc PitchClass) String() string {
	if pc < 0 || pc >= PitchClassCount {
		return fmt.Sprintf("PitchClass(%d)", int(pc))
	}
	return pitchClassNames[pc]
}

// Distance returns the smallest chromatic step count between two pitch
// classes on the circle of semitones. The result is in [0, 6].
func (pc PitchClass) Distance(other PitchClass) int {
	d := int(pc) - int(other)
	if d < 0 {
		d = -d
	}
	if d > PitchClassCount/2 {
		d = PitchClassCount - d
	}
	return d
}

// ParsePitchClass parses a pitch-class name such as "C", "F#" or "Bb".
// Accidentals stack, so "C##" and "Dbb" are accepted.
func ParsePitchClass(name string) (PitchClass, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("empty pitch class name")
	}
	step, ok := baseSteps[trimmed[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch class name: %q", name)
	}
	for _, accidental := range trimmed[1:] {
		switch accidental {
		case '#':
			step++
		case 'b':
			step--
		default:
			return 0, fmt.Errorf("invalid accidental %q in pitch class name %q", accidental, name)
		}
	}
	return PitchClass(((step % PitchClassCount) + PitchClassCount) % PitchClassCount), nil
}

// Pitch is a concrete pitch: a pitch class placed in an octave.
type Pitch struct {
	Step   byte // letter name, 'A'..'G'
	Alter  int  // semitone offset from the letter name
	Octave int
}

// Class returns the pitch class of the pitch.
func (p Pitch) Class() PitchClass {
	step := baseSteps[p.Step] + p.Alter
	return PitchClass(((step % PitchClassCount) + PitchClassCount) % PitchClassCount)
}

func (p Pitch) String() string {
	var b strings.Builder
	b.WriteByte(p.Step)
	for i := 0; i < p.Alter; i++ {
		b.WriteByte('#')
	}
	for i := 0; i > p.Alter; i-- {
		b.WriteByte('b')
	}
	b.WriteString(strconv.Itoa(p.Octave))
	return b.String()
}

// ParsePitch parses a scientific pitch name such as "C5", "F#4" or "Bb3".
func ParsePitch(name string) (Pitch, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return Pitch{}, fmt.Errorf("invalid pitch name: %q", name)
	}
	step := trimmed[0]
	if _, ok := baseSteps[step]; !ok {
		return Pitch{}, fmt.Errorf("invalid pitch letter in %q", name)
	}

	rest := trimmed[1:]
	alter := 0
	for len(rest) > 0 {
		if rest[0] == '#' {
			alter++
			rest = rest[1:]
			continue
		}
		if rest[0] == 'b' {
			alter--
			rest = rest[1:]
			continue
		}
		break
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid octave in pitch name %q", name)
	}
	return Pitch{Step: step, Alter: alter, Octave: octave}, nil
}
