package storage

import (
	"context"

	"harmonia/internal/model"
)

// Store persists the musical library: melodies, chord vocabularies, and
// finished harmonizations.
type Store interface {
	Init(ctx context.Context) error
	SaveMelody(ctx context.Context, melody model.MelodyRecord) error
	GetMelody(ctx context.Context, name string) (model.MelodyRecord, bool, error)
	ListMelodies(ctx context.Context) ([]string, error)
	SaveVocabulary(ctx context.Context, vocabulary model.VocabularyRecord) error
	GetVocabulary(ctx context.Context, name string) (model.VocabularyRecord, bool, error)
	ListVocabularies(ctx context.Context) ([]string, error)
	SaveHarmonization(ctx context.Context, harmonization model.HarmonizationRecord) error
	GetHarmonization(ctx context.Context, id string) (model.HarmonizationRecord, bool, error)
	ListHarmonizations(ctx context.Context) ([]model.HarmonizationRecord, error)
}
