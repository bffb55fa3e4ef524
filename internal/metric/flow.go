package metric

import (
	"harmonia/internal/theory"
)

// HarmonicFlow rewards adjacent chord pairs found in the vocabulary's
// preferred-transition table. The score is the fraction of transitions
// that are preferred, in [0, 1]. A single-chord sequence has no
// transitions and scores 0.
type HarmonicFlow struct {
	vocabulary *theory.Vocabulary
}

func NewHarmonicFlow(vocabulary *theory.Vocabulary) *HarmonicFlow {
	return &HarmonicFlow{vocabulary: vocabulary}
}

func (m *HarmonicFlow) Name() string {
	return "harmonic_flow"
}

func (m *HarmonicFlow) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	transitions := len(seq) - 1
	if transitions <= 0 {
		return 0
	}
	preferred := 0
	for i := 0; i < transitions; i++ {
		if m.vocabulary.PreferredTransition(seq[i], seq[i+1]) {
			preferred++
		}
	}
	return float64(preferred) / float64(transitions)
}

// FunctionalHarmony rewards coverage of the three functional classes:
// one third each for using at least one tonic, one subdominant, and one
// dominant chord somewhere in the sequence. Scores are in {0, 1/3, 2/3, 1}.
type FunctionalHarmony struct {
	vocabulary *theory.Vocabulary
}

func NewFunctionalHarmony(vocabulary *theory.Vocabulary) *FunctionalHarmony {
	return &FunctionalHarmony{vocabulary: vocabulary}
}

func (m *FunctionalHarmony) Name() string {
	return "functional_harmony"
}

func (m *FunctionalHarmony) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	seen := map[theory.Function]bool{}
	for _, label := range seq {
		seen[m.vocabulary.MustChord(label).Function] = true
	}
	score := 0.0
	for _, function := range []theory.Function{theory.FunctionTonic, theory.FunctionSubdominant, theory.FunctionDominant} {
		if seen[function] {
			score += 1.0 / 3.0
		}
	}
	return score
}

// FunctionalProgressions rewards windows that spell out a canonical jazz
// progression from the vocabulary's template list. Each matching window
// position counts once, and the count is scaled so a sequence tiled
// end-to-end with cadences scores 3.0; scores are in [0, 3]. Sequences
// shorter than a template score 0.
type FunctionalProgressions struct {
	progressions []theory.Progression
}

func NewFunctionalProgressions(vocabulary *theory.Vocabulary) *FunctionalProgressions {
	return &FunctionalProgressions{progressions: vocabulary.Progressions()}
}

func (m *FunctionalProgressions) Name() string {
	return "functional_progressions"
}

func (m *FunctionalProgressions) Score(seq []theory.ChordLabel) float64 {
	mustNonEmpty(m.Name(), seq)

	windows := len(seq) - 2
	if windows <= 0 {
		return 0
	}
	matches := 0
	for i := 0; i < len(seq); i++ {
		if m.matchesAt(seq, i) {
			matches++
		}
	}
	return 3 * float64(matches) / float64(windows)
}

func (m *FunctionalProgressions) matchesAt(seq []theory.ChordLabel, start int) bool {
	for _, progression := range m.progressions {
		if start+len(progression) > len(seq) {
			continue
		}
		matched := true
		for j, label := range progression {
			if seq[start+j] != label {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
