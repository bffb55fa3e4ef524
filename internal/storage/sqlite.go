//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"harmonia/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveMelody(ctx context.Context, melody model.MelodyRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeMelody(melody)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO melodies (name, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, melody.Name, melody.SchemaVersion, melody.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetMelody(ctx context.Context, name string) (model.MelodyRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.MelodyRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM melodies WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MelodyRecord{}, false, nil
		}
		return model.MelodyRecord{}, false, err
	}

	melody, err := DecodeMelody(payload)
	if err != nil {
		return model.MelodyRecord{}, false, fmt.Errorf("decode melody %s: %w", name, err)
	}
	return melody, true, nil
}

func (s *SQLiteStore) ListMelodies(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, `SELECT name FROM melodies ORDER BY name`)
}

func (s *SQLiteStore) SaveVocabulary(ctx context.Context, vocabulary model.VocabularyRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeVocabulary(vocabulary)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO vocabularies (name, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, vocabulary.Name, vocabulary.SchemaVersion, vocabulary.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetVocabulary(ctx context.Context, name string) (model.VocabularyRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.VocabularyRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM vocabularies WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VocabularyRecord{}, false, nil
		}
		return model.VocabularyRecord{}, false, err
	}

	vocabulary, err := DecodeVocabulary(payload)
	if err != nil {
		return model.VocabularyRecord{}, false, fmt.Errorf("decode vocabulary %s: %w", name, err)
	}
	return vocabulary, true, nil
}

func (s *SQLiteStore) ListVocabularies(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, `SELECT name FROM vocabularies ORDER BY name`)
}

func (s *SQLiteStore) SaveHarmonization(ctx context.Context, harmonization model.HarmonizationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeHarmonization(harmonization)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO harmonizations (id, created_at_utc, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, harmonization.ID, harmonization.CreatedAtUTC, harmonization.SchemaVersion, harmonization.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetHarmonization(ctx context.Context, id string) (model.HarmonizationRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.HarmonizationRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM harmonizations WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.HarmonizationRecord{}, false, nil
		}
		return model.HarmonizationRecord{}, false, err
	}

	harmonization, err := DecodeHarmonization(payload)
	if err != nil {
		return model.HarmonizationRecord{}, false, fmt.Errorf("decode harmonization %s: %w", id, err)
	}
	return harmonization, true, nil
}

func (s *SQLiteStore) ListHarmonizations(ctx context.Context) ([]model.HarmonizationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM harmonizations ORDER BY created_at_utc DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HarmonizationRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		harmonization, err := DecodeHarmonization(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, harmonization)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func (s *SQLiteStore) listNames(ctx context.Context, query string) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS melodies (
			name TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS vocabularies (
			name TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS harmonizations (
			id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
