package storage

import (
	"context"
	"sort"
	"sync"

	"harmonia/internal/model"
)

type MemoryStore struct {
	mu             sync.RWMutex
	initialized    bool
	melodies       map[string]model.MelodyRecord
	vocabularies   map[string]model.VocabularyRecord
	harmonizations map[string]model.HarmonizationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.melodies = make(map[string]model.MelodyRecord)
	s.vocabularies = make(map[string]model.VocabularyRecord)
	s.harmonizations = make(map[string]model.HarmonizationRecord)
	return nil
}

func (s *MemoryStore) SaveMelody(_ context.Context, melody model.MelodyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.melodies[melody.Name] = melody
	return nil
}

func (s *MemoryStore) GetMelody(_ context.Context, name string) (model.MelodyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	melody, ok := s.melodies[name]
	return melody, ok, nil
}

func (s *MemoryStore) ListMelodies(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.melodies))
	for name := range s.melodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) SaveVocabulary(_ context.Context, vocabulary model.VocabularyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vocabularies[vocabulary.Name] = vocabulary
	return nil
}

func (s *MemoryStore) GetVocabulary(_ context.Context, name string) (model.VocabularyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vocabulary, ok := s.vocabularies[name]
	return vocabulary, ok, nil
}

func (s *MemoryStore) ListVocabularies(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.vocabularies))
	for name := range s.vocabularies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) SaveHarmonization(_ context.Context, harmonization model.HarmonizationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.harmonizations[harmonization.ID] = harmonization
	return nil
}

func (s *MemoryStore) GetHarmonization(_ context.Context, id string) (model.HarmonizationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	harmonization, ok := s.harmonizations[id]
	return harmonization, ok, nil
}

func (s *MemoryStore) ListHarmonizations(_ context.Context) ([]model.HarmonizationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.HarmonizationRecord, 0, len(s.harmonizations))
	for _, harmonization := range s.harmonizations {
		out = append(out, harmonization)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC == out[j].CreatedAtUTC {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAtUTC > out[j].CreatedAtUTC
	})
	return out, nil
}
