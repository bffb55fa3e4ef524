package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type NoteRecord struct {
	Pitch    string  `json:"pitch"`
	Duration float64 `json:"duration"`
}

type MelodyRecord struct {
	VersionedRecord
	Name  string       `json:"name"`
	Notes []NoteRecord `json:"notes"`
}

type ChordRecord struct {
	Label    string   `json:"label"`
	Notes    []string `json:"notes"`
	Function string   `json:"function"`
	Diatonic bool     `json:"diatonic"`
}

type VocabularyRecord struct {
	VersionedRecord
	Name           string              `json:"name"`
	Chords         []ChordRecord       `json:"chords"`
	Transitions    map[string][]string `json:"transitions"`
	Progressions   [][]string          `json:"progressions"`
	ParallelFifths [][]string          `json:"parallel_fifths"`
}

type MetricScoreRecord struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// HarmonizationRecord is one finished harmonization: the product a run
// returns, not the run's internal state.
type HarmonizationRecord struct {
	VersionedRecord
	ID             string              `json:"id"`
	MelodyName     string              `json:"melody_name"`
	VocabularyName string              `json:"vocabulary_name"`
	Chords         []string            `json:"chords"`
	Fitness        float64             `json:"fitness"`
	Breakdown      []MetricScoreRecord `json:"breakdown"`
	Seed           int64               `json:"seed"`
	PopulationSize int                 `json:"population_size"`
	Generations    int                 `json:"generations"`
	MutationRate   float64             `json:"mutation_rate"`
	EliteCount     int                 `json:"elite_count"`
	CreatedAtUTC   string              `json:"created_at_utc"`
}
