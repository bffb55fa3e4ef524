package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"harmonia/internal/storage"
	harmoniaapi "harmonia/pkg/harmonia"
)

const scoresDir = "scores"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "melodies":
		return runMelodies(ctx, args[1:])
	case "vocabularies":
		return runVocabularies(ctx, args[1:])
	case "harmonizations":
		return runHarmonizations(ctx, args[1:])
	case "import-melody":
		return runImportMelody(ctx, args[1:])
	case "import-vocabulary":
		return runImportVocabulary(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: harmoniactl <init|run|melodies|vocabularies|harmonizations|import-melody|import-vocabulary|export> [flags]", msg)
}

func newClient(storeKind, dbPath string) (*harmoniaapi.Client, error) {
	return harmoniaapi.New(harmoniaapi.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
		ScoresDir: scoresDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	melodyName := fs.String("melody", "", "melody name from the library")
	vocabularyName := fs.String("vocabulary", "", "chord vocabulary name from the library")
	population := fs.Int("pop", 50, "population size")
	generations := fs.Int("gens", 100, "generation count")
	mutationRate := fs.Float64("mutation-rate", 0.05, "per-slot mutation probability")
	eliteCount := fs.Int("elites", 2, "individuals carried forward unchanged per generation")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 1, "evaluation worker count")
	selection := fs.String("selection", "roulette", "parent selection strategy: roulette|tournament")
	crossoverKind := fs.String("crossover", "one_point", "crossover operator: one_point|two_point")
	plateau := fs.Int("plateau-gens", 0, "stop early after N generations without improvement (0 disables)")
	slotsPerBar := fs.Int("slots-per-bar", 2, "harmonic rhythm in chords per bar")
	exportScore := fs.Bool("export-score", false, "write the best harmonization as MusicXML")
	showDiagnostics := fs.Bool("show-diagnostics", false, "print per-generation diagnostics")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = harmoniaapi.RunRequest{
			MelodyName:         *melodyName,
			VocabularyName:     *vocabularyName,
			Population:         *population,
			Generations:        *generations,
			MutationRate:       mutationRate,
			EliteCount:         eliteCount,
			Seed:               *seed,
			Workers:            *workers,
			Selection:          *selection,
			CrossoverKind:      *crossoverKind,
			PlateauGenerations: *plateau,
			SlotsPerBar:        *slotsPerBar,
			ExportScore:        *exportScore,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"melody":        *melodyName,
			"vocabulary":    *vocabularyName,
			"pop":           *population,
			"gens":          *generations,
			"mutation-rate": *mutationRate,
			"elites":        *eliteCount,
			"seed":          *seed,
			"workers":       *workers,
			"selection":     *selection,
			"crossover":     *crossoverKind,
			"plateau-gens":  *plateau,
			"slots-per-bar": *slotsPerBar,
			"export-score":  *exportScore,
		})
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("run completed id=%s melody=%s vocabulary=%s gens=%d seed=%d\n",
		summary.ID, summary.MelodyName, summary.VocabularyName, summary.Generations, req.Seed)
	fmt.Printf("chords=%s\n", strings.Join(summary.Chords, " "))
	fmt.Printf("fitness=%.6f best_generation=%d\n", summary.Fitness, summary.BestGeneration)
	for _, line := range summary.Breakdown {
		fmt.Printf("metric=%s raw=%.6f weight=%.4f weighted=%.6f\n",
			line.Name, line.Raw, line.Weight, line.Weighted)
	}
	if *showDiagnostics {
		for _, d := range summary.Diagnostics {
			fmt.Printf("generation=%d best=%.6f mean=%.6f min=%.6f distinct_chords=%d distinct_members=%d\n",
				d.Generation, d.BestFitness, d.MeanFitness, d.MinFitness, d.DistinctChords, d.DistinctMembers)
		}
	}
	if summary.ScorePath != "" {
		fmt.Printf("score=%s\n", summary.ScorePath)
	}
	return nil
}

func runMelodies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("melodies", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	names, err := client.Melodies(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no melodies found")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runVocabularies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vocabularies", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	names, err := client.Vocabularies(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no vocabularies found")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runHarmonizations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("harmonizations", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max harmonizations to list")
	jsonOut := fs.Bool("json", false, "emit harmonizations as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Harmonizations(ctx, *limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no harmonizations found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		fmt.Printf("id=%s created_at=%s melody=%s vocabulary=%s fitness=%.6f chords=%s\n",
			item.ID,
			item.CreatedAtUTC,
			item.MelodyName,
			item.VocabularyName,
			item.Fitness,
			strings.Join(item.Chords, " "),
		)
	}
	return nil
}

func runImportMelody(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-melody", flag.ContinueOnError)
	path := fs.String("file", "", "melody YAML path")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("import-melody requires --file")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	name, err := client.ImportMelody(ctx, *path)
	if err != nil {
		return err
	}
	fmt.Printf("imported melody=%s\n", name)
	return nil
}

func runImportVocabulary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-vocabulary", flag.ContinueOnError)
	path := fs.String("file", "", "vocabulary YAML path")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("import-vocabulary requires --file")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	name, err := client.ImportVocabulary(ctx, *path)
	if err != nil {
		return err
	}
	fmt.Printf("imported vocabulary=%s\n", name)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "harmonization id")
	outDir := fs.String("out", "", "output directory (default: scores)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "harmonia.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("export requires --id")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	path, err := client.Export(ctx, *id, *outDir)
	if err != nil {
		return err
	}
	fmt.Printf("exported id=%s score=%s\n", *id, path)
	return nil
}
