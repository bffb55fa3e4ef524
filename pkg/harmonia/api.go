package harmonia

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"harmonia/internal/evolve"
	"harmonia/internal/fitness"
	"harmonia/internal/metric"
	"harmonia/internal/model"
	"harmonia/internal/score"
	"harmonia/internal/storage"
	"harmonia/internal/theory"
)

const (
	defaultScoresDir = "scores"
	defaultDBPath    = "harmonia.db"
)

// Options configures a Client.
type Options struct {
	StoreKind string
	DBPath    string
	ScoresDir string
}

// Client is the high-level entry point: it owns the library store and
// runs harmonizations against it.
type Client struct {
	store     storage.Store
	scoresDir string

	initialized bool
}

// RunRequest describes one harmonization run. Zero values select the
// stock defaults.
type RunRequest struct {
	MelodyName     string
	VocabularyName string

	Population  int
	Generations int

	// MutationRate and EliteCount are pointers because zero is a valid
	// setting for both: a nil field selects the stock default, a
	// pointer to zero disables mutation or elitism outright.
	MutationRate *float64
	EliteCount   *int

	Seed    int64
	Workers int

	Selection          string
	CrossoverKind      string
	PlateauGenerations int

	// Weights overrides the default metric weight table. StrictWeights
	// additionally requires every built metric to carry a weight.
	Weights       map[string]float64
	StrictWeights bool

	SlotsPerBar int

	// ExportScore, when set, writes the best harmonization as MusicXML
	// into the client's scores directory.
	ExportScore bool
}

// MetricLine is one metric's contribution to a run's fitness.
type MetricLine struct {
	Name     string
	Raw      float64
	Weight   float64
	Weighted float64
}

// RunSummary is what a finished run reports back.
type RunSummary struct {
	ID               string
	MelodyName       string
	VocabularyName   string
	Chords           []string
	Fitness          float64
	Breakdown        []MetricLine
	BestGeneration   int
	Generations      int
	BestByGeneration []float64
	Diagnostics      []evolve.GenerationDiagnostics
	ScorePath        string
}

// HarmonizationItem is one stored harmonization, newest first.
type HarmonizationItem struct {
	ID             string
	MelodyName     string
	VocabularyName string
	Chords         []string
	Fitness        float64
	CreatedAtUTC   string
}

// New builds a client over the configured store.
func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	scoresDir := opts.ScoresDir
	if scoresDir == "" {
		scoresDir = defaultScoresDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:     store,
		scoresDir: scoresDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store and seeds it with the built-in melody and
// vocabulary when they are absent.
func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}

	if _, ok, err := c.store.GetMelody(ctx, theory.BuiltinMelodyName); err != nil {
		return err
	} else if !ok {
		if err := c.store.SaveMelody(ctx, melodyToRecord(theory.BuiltinMelody())); err != nil {
			return err
		}
	}
	if _, ok, err := c.store.GetVocabulary(ctx, theory.BuiltinVocabularyName); err != nil {
		return err
	} else if !ok {
		if err := c.store.SaveVocabulary(ctx, vocabularyToRecord(theory.BuiltinVocabulary())); err != nil {
			return err
		}
	}
	c.initialized = true
	return nil
}

// Run evolves a harmonization for the requested melody and vocabulary,
// stores the result, and returns its summary.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.MelodyName == "" {
		req.MelodyName = theory.BuiltinMelodyName
	}
	if req.VocabularyName == "" {
		req.VocabularyName = theory.BuiltinVocabularyName
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	mutationRate := 0.05
	if req.MutationRate != nil {
		mutationRate = *req.MutationRate
	}
	eliteCount := 2
	if req.EliteCount != nil {
		eliteCount = *req.EliteCount
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.Selection == "" {
		req.Selection = "roulette"
	}
	if req.CrossoverKind == "" {
		req.CrossoverKind = "one_point"
	}
	if req.SlotsPerBar <= 0 {
		req.SlotsPerBar = theory.DefaultConvention.SlotsPerBar
	}
	if req.Weights == nil {
		req.Weights = metric.DefaultWeights()
	}

	selector, err := selectorFromName(req.Selection)
	if err != nil {
		return RunSummary{}, err
	}
	crossover, err := crossoverFromName(req.CrossoverKind)
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	melody, err := c.loadMelody(ctx, req.MelodyName)
	if err != nil {
		return RunSummary{}, err
	}
	vocabulary, err := c.loadVocabulary(ctx, req.VocabularyName)
	if err != nil {
		return RunSummary{}, err
	}

	convention := theory.Convention{SlotsPerBar: req.SlotsPerBar}
	slots, err := melody.Slots(convention)
	if err != nil {
		return RunSummary{}, err
	}

	metrics, err := metric.NewDefaultSet(metric.Context{Slots: slots, Vocabulary: vocabulary})
	if err != nil {
		return RunSummary{}, err
	}
	evaluator, err := fitness.NewEvaluator(metrics, req.Weights, req.StrictWeights)
	if err != nil {
		return RunSummary{}, err
	}

	harmonizer, err := evolve.NewHarmonizer(evolve.Config{
		Alphabet:           vocabulary.Labels(),
		SlotCount:          len(slots),
		Evaluator:          evaluator,
		PopulationSize:     req.Population,
		Generations:        req.Generations,
		MutationRate:       mutationRate,
		EliteCount:         eliteCount,
		Seed:               req.Seed,
		Workers:            req.Workers,
		Selector:           selector,
		Crossover:          crossover,
		PlateauGenerations: req.PlateauGenerations,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := harmonizer.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	totalFitness, breakdown := evaluator.EvaluateBreakdown(result.Best)

	record := model.HarmonizationRecord{
		VersionedRecord: versioned(),
		ID:              uuid.NewString(),
		MelodyName:      melody.Name,
		VocabularyName:  vocabulary.Name,
		Chords:          labelsToStrings(result.Best),
		Fitness:         totalFitness,
		Breakdown:       breakdownToRecords(breakdown),
		Seed:            req.Seed,
		PopulationSize:  req.Population,
		Generations:     result.Generations,
		MutationRate:    mutationRate,
		EliteCount:      eliteCount,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.store.SaveHarmonization(ctx, record); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		ID:               record.ID,
		MelodyName:       melody.Name,
		VocabularyName:   vocabulary.Name,
		Chords:           record.Chords,
		Fitness:          totalFitness,
		Breakdown:        breakdownToLines(breakdown),
		BestGeneration:   result.BestGeneration,
		Generations:      result.Generations,
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		Diagnostics:      append([]evolve.GenerationDiagnostics(nil), result.Diagnostics...),
	}

	if req.ExportScore {
		path, err := c.exportScore(record.ID, melody, result.Best, vocabulary, convention)
		if err != nil {
			return RunSummary{}, err
		}
		summary.ScorePath = path
	}
	return summary, nil
}

// Export renders a stored harmonization as MusicXML and returns the
// written path.
func (c *Client) Export(ctx context.Context, id string, outDir string) (string, error) {
	if id == "" {
		return "", errors.New("export requires a harmonization id")
	}
	if err := c.Init(ctx); err != nil {
		return "", err
	}

	record, ok, err := c.store.GetHarmonization(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("harmonization not found: %s", id)
	}

	melody, err := c.loadMelody(ctx, record.MelodyName)
	if err != nil {
		return "", err
	}
	vocabulary, err := c.loadVocabulary(ctx, record.VocabularyName)
	if err != nil {
		return "", err
	}

	seq := stringsToLabels(record.Chords)
	convention, err := conventionFor(melody, len(seq))
	if err != nil {
		return "", err
	}
	if outDir == "" {
		outDir = c.scoresDir
	}
	return exportScoreTo(outDir, record.ID, melody, seq, vocabulary, convention)
}

// Melodies lists the stored melody names.
func (c *Client) Melodies(ctx context.Context) ([]string, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListMelodies(ctx)
}

// Vocabularies lists the stored vocabulary names.
func (c *Client) Vocabularies(ctx context.Context) ([]string, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListVocabularies(ctx)
}

// Harmonizations lists stored harmonizations, newest first.
func (c *Client) Harmonizations(ctx context.Context, limit int) ([]HarmonizationItem, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	records, err := c.store.ListHarmonizations(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]HarmonizationItem, 0, len(records))
	for _, record := range records {
		out = append(out, HarmonizationItem{
			ID:             record.ID,
			MelodyName:     record.MelodyName,
			VocabularyName: record.VocabularyName,
			Chords:         record.Chords,
			Fitness:        record.Fitness,
			CreatedAtUTC:   record.CreatedAtUTC,
		})
	}
	return out, nil
}

// ImportMelody loads a melody YAML file into the library.
func (c *Client) ImportMelody(ctx context.Context, path string) (string, error) {
	melody, err := theory.LoadMelodyFile(path)
	if err != nil {
		return "", err
	}
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	if err := c.store.SaveMelody(ctx, melodyToRecord(melody)); err != nil {
		return "", err
	}
	return melody.Name, nil
}

// ImportVocabulary loads a vocabulary YAML file into the library.
func (c *Client) ImportVocabulary(ctx context.Context, path string) (string, error) {
	vocabulary, err := theory.LoadVocabularyFile(path)
	if err != nil {
		return "", err
	}
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	if err := c.store.SaveVocabulary(ctx, vocabularyToRecord(vocabulary)); err != nil {
		return "", err
	}
	return vocabulary.Name, nil
}

func (c *Client) loadMelody(ctx context.Context, name string) (theory.Melody, error) {
	record, ok, err := c.store.GetMelody(ctx, name)
	if err != nil {
		return theory.Melody{}, err
	}
	if !ok {
		return theory.Melody{}, fmt.Errorf("melody not found: %s", name)
	}
	return melodyFromRecord(record)
}

func (c *Client) loadVocabulary(ctx context.Context, name string) (*theory.Vocabulary, error) {
	record, ok, err := c.store.GetVocabulary(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("vocabulary not found: %s", name)
	}
	return vocabularyFromRecord(record)
}

func (c *Client) exportScore(
	id string,
	melody theory.Melody,
	seq []theory.ChordLabel,
	vocabulary *theory.Vocabulary,
	convention theory.Convention,
) (string, error) {
	return exportScoreTo(c.scoresDir, id, melody, seq, vocabulary, convention)
}

func exportScoreTo(
	dir string,
	id string,
	melody theory.Melody,
	seq []theory.ChordLabel,
	vocabulary *theory.Vocabulary,
	convention theory.Convention,
) (string, error) {
	built, err := score.Build(melody, seq, vocabulary, convention)
	if err != nil {
		return "", err
	}
	built.Title = fmt.Sprintf("%s (%s)", melody.Name, vocabulary.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, id+".musicxml")
	if err := score.ExportFile(path, built); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

// conventionFor recovers the harmonic rhythm a stored chord sequence was
// produced under from its length.
func conventionFor(melody theory.Melody, slotCount int) (theory.Convention, error) {
	if melody.Bars() == 0 || slotCount%melody.Bars() != 0 {
		return theory.Convention{}, fmt.Errorf(
			"chord count %d does not divide across %d bars", slotCount, melody.Bars())
	}
	return theory.Convention{SlotsPerBar: slotCount / melody.Bars()}, nil
}

func selectorFromName(name string) (evolve.Selector, error) {
	switch name {
	case "roulette":
		return evolve.RouletteSelector{}, nil
	case "tournament":
		return evolve.TournamentSelector{Size: 3}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}

func crossoverFromName(name string) (evolve.Crossover, error) {
	switch name {
	case "one_point":
		return evolve.OnePointCrossover{}, nil
	case "two_point":
		return evolve.TwoPointCrossover{}, nil
	default:
		return nil, fmt.Errorf("unsupported crossover: %s", name)
	}
}
