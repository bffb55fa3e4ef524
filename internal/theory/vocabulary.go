package theory

import (
	"fmt"
	"sort"
)

// ChordLabel names one chord in a vocabulary. The evolutionary engine
// treats labels as opaque values from a finite alphabet; only the
// vocabulary resolves them to pitch content.
type ChordLabel string

// Function classifies a chord's harmonic role.
type Function int

const (
	FunctionNone Function = iota
	FunctionTonic
	FunctionSubdominant
	FunctionDominant
)

var functionNames = map[Function]string{
	FunctionNone:        "none",
	FunctionTonic:       "tonic",
	FunctionSubdominant: "subdominant",
	FunctionDominant:    "dominant",
}

func (f Function) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Function(%d)", int(f))
}

// ParseFunction parses a harmonic function name.
func ParseFunction(name string) (Function, error) {
	switch name {
	case "", "none":
		return FunctionNone, nil
	case "tonic":
		return FunctionTonic, nil
	case "subdominant":
		return FunctionSubdominant, nil
	case "dominant":
		return FunctionDominant, nil
	default:
		return FunctionNone, fmt.Errorf("invalid harmonic function: %q", name)
	}
}

// Chord is one vocabulary entry: a label resolved to its pitch-class
// content, harmonic function, and whether it sits in the home key.
type Chord struct {
	Label    ChordLabel
	Classes  []PitchClass
	Function Function
	Diatonic bool
}

// Contains reports whether the pitch class is part of the chord.
func (c Chord) Contains(class PitchClass) bool {
	for _, member := range c.Classes {
		if member == class {
			return true
		}
	}
	return false
}

// Progression is a canonical chord pattern the scoring rewards, e.g. a
// ii-V-I cadence spelled in concrete labels.
type Progression []ChordLabel

// LabelPair is an unordered pair of chord labels, used for transitions
// the scoring rules flag regardless of direction.
type LabelPair [2]ChordLabel

func (p LabelPair) normalize() LabelPair {
	if p[1] < p[0] {
		return LabelPair{p[1], p[0]}
	}
	return p
}

// Vocabulary is the finite chord alphabet the harmonizer draws from,
// together with the reference tables the scoring rules consult. It is
// assembled once before a run and read-only afterwards.
type Vocabulary struct {
	Name        string
	chords      map[ChordLabel]Chord
	labels      []ChordLabel
	transitions map[ChordLabel]map[ChordLabel]struct{}
	progrs      []Progression
	fifthPairs  map[LabelPair]struct{}
}

// VocabularyEntry is the construction-time form of one chord.
type VocabularyEntry struct {
	Label    ChordLabel
	Classes  []PitchClass
	Function Function
	Diatonic bool
}

// NewVocabulary validates and assembles a vocabulary. The transition,
// progression, and parallel-fifth tables may only reference labels
// defined by the entries.
func NewVocabulary(
	name string,
	entries []VocabularyEntry,
	transitions map[ChordLabel][]ChordLabel,
	progressions []Progression,
	parallelFifths []LabelPair,
) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("vocabulary %q has no chords", name)
	}

	chords := make(map[ChordLabel]Chord, len(entries))
	labels := make([]ChordLabel, 0, len(entries))
	for _, entry := range entries {
		if entry.Label == "" {
			return nil, fmt.Errorf("vocabulary %q: empty chord label", name)
		}
		if _, exists := chords[entry.Label]; exists {
			return nil, fmt.Errorf("vocabulary %q: duplicate chord label %q", name, entry.Label)
		}
		if len(entry.Classes) == 0 {
			return nil, fmt.Errorf("vocabulary %q: chord %q has no pitch classes", name, entry.Label)
		}
		for _, class := range entry.Classes {
			if class < 0 || class >= PitchClassCount {
				return nil, fmt.Errorf("vocabulary %q: chord %q has invalid pitch class %d", name, entry.Label, class)
			}
		}
		chords[entry.Label] = Chord{
			Label:    entry.Label,
			Classes:  append([]PitchClass(nil), entry.Classes...),
			Function: entry.Function,
			Diatonic: entry.Diatonic,
		}
		labels = append(labels, entry.Label)
	}

	transitionSet := make(map[ChordLabel]map[ChordLabel]struct{}, len(transitions))
	for from, targets := range transitions {
		if _, ok := chords[from]; !ok {
			return nil, fmt.Errorf("vocabulary %q: transition from unknown chord %q", name, from)
		}
		set := make(map[ChordLabel]struct{}, len(targets))
		for _, to := range targets {
			if _, ok := chords[to]; !ok {
				return nil, fmt.Errorf("vocabulary %q: transition %q -> unknown chord %q", name, from, to)
			}
			set[to] = struct{}{}
		}
		transitionSet[from] = set
	}

	progrs := make([]Progression, 0, len(progressions))
	for i, progression := range progressions {
		if len(progression) < 2 {
			return nil, fmt.Errorf("vocabulary %q: progression %d is too short", name, i)
		}
		for _, label := range progression {
			if _, ok := chords[label]; !ok {
				return nil, fmt.Errorf("vocabulary %q: progression %d references unknown chord %q", name, i, label)
			}
		}
		progrs = append(progrs, append(Progression(nil), progression...))
	}

	fifthPairs := make(map[LabelPair]struct{}, len(parallelFifths))
	for i, pair := range parallelFifths {
		if pair[0] == pair[1] {
			return nil, fmt.Errorf("vocabulary %q: parallel-fifth pair %d repeats chord %q", name, i, pair[0])
		}
		for _, label := range pair {
			if _, ok := chords[label]; !ok {
				return nil, fmt.Errorf("vocabulary %q: parallel-fifth pair %d references unknown chord %q", name, i, label)
			}
		}
		fifthPairs[pair.normalize()] = struct{}{}
	}

	return &Vocabulary{
		Name:        name,
		chords:      chords,
		labels:      labels,
		transitions: transitionSet,
		progrs:      progrs,
		fifthPairs:  fifthPairs,
	}, nil
}

// Labels returns the chord alphabet in definition order.
func (v *Vocabulary) Labels() []ChordLabel {
	return append([]ChordLabel(nil), v.labels...)
}

// Size returns the number of chords in the vocabulary.
func (v *Vocabulary) Size() int { return len(v.labels) }

// Chord resolves a label. The second result is false for unknown labels.
func (v *Vocabulary) Chord(label ChordLabel) (Chord, bool) {
	chord, ok := v.chords[label]
	return chord, ok
}

// MustChord resolves a label known to exist. Unknown labels indicate an
// individual built outside the vocabulary, which the population invariant
// rules out, so this panics.
func (v *Vocabulary) MustChord(label ChordLabel) Chord {
	chord, ok := v.chords[label]
	if !ok {
		panic(fmt.Sprintf("harmonia: chord label %q not in vocabulary %q", label, v.Name))
	}
	return chord
}

// PreferredTransition reports whether from -> to is in the preferred
// transition table.
func (v *Vocabulary) PreferredTransition(from, to ChordLabel) bool {
	targets, ok := v.transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Progressions returns the canonical progression templates.
func (v *Vocabulary) Progressions() []Progression {
	out := make([]Progression, len(v.progrs))
	for i, progression := range v.progrs {
		out[i] = append(Progression(nil), progression...)
	}
	return out
}

// ParallelFifthPair reports whether moving between the two chords, in
// either order, is in the parallel-fifths table.
func (v *Vocabulary) ParallelFifthPair(a, b ChordLabel) bool {
	_, ok := v.fifthPairs[LabelPair{a, b}.normalize()]
	return ok
}

// ParallelFifthPairs returns the parallel-fifths table as normalized
// pairs in stable order.
func (v *Vocabulary) ParallelFifthPairs() []LabelPair {
	out := make([]LabelPair, 0, len(v.fifthPairs))
	for pair := range v.fifthPairs {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Transitions returns the preferred-transition table with target lists
// sorted for stable iteration.
func (v *Vocabulary) Transitions() map[ChordLabel][]ChordLabel {
	out := make(map[ChordLabel][]ChordLabel, len(v.transitions))
	for from, targets := range v.transitions {
		list := make([]ChordLabel, 0, len(targets))
		for to := range targets {
			list = append(list, to)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		out[from] = list
	}
	return out
}
