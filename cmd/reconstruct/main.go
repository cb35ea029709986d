package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gosuri/uitable"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/checkpoint"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/engine"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/imageio"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/logging"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/storage"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to a YAML or TOML config file (defaults when empty)")
	imagePath := flag.String("image", "", "target image; overrides image.path")
	outDir := flag.String("out", "", "output directory; overrides output.dir")
	generations := flag.Int("generations", 0, "generation budget; overrides ga.max_generations")
	seed := flag.Int64("seed", 0, "random seed; overrides seed")
	resume := flag.String("resume", "", "best-genotype JSON to seed the first generation with")
	flag.Parse()

	// Load config
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Only flags given explicitly override the file, so -generations 0 still means zero
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "image":
			cfg.Image.Path = *imagePath
		case "out":
			cfg.Output.Dir = *outDir
		case "generations":
			cfg.GA.MaxGenerations = *generations
		case "seed":
			cfg.Seed = *seed
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Image.Path == "" {
		fmt.Fprintln(os.Stderr, "Error: no target image (set image.path or -image)")
		os.Exit(1)
	}

	// Load target
	target, format, err := imageio.Load(cfg.Image.Path, imageio.OptionsFromConfig(cfg.Image))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Pixel Reconstruction")
	fmt.Printf("Target: %s (%s, %s)\n", cfg.Image.Path, format, target.Shape)
	fmt.Printf("Population: %d, Elites: %d, Selection: %s, Crossover: %s\n",
		cfg.GA.Population, cfg.GA.Elites, cfg.GA.Selection, cfg.GA.Crossover)
	fmt.Printf("Mutation: rate=%.4f magnitude=%d reset=%.4f, Metric: %s, Workers: %d\n",
		cfg.GA.MutationRate, cfg.GA.MutationMagnitude, cfg.GA.ResetRate, cfg.Eval.Metric, cfg.Eval.Workers)
	fmt.Println("---")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create logger
	logger, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Open run history
	store, err := storage.NewStore(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating store: %v\n", err)
		os.Exit(1)
	}
	if err := store.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	rec := newRecorder(ctx, cfg.Logging, logger, store)

	eng, err := engine.New(cfg, target, checkpoint.NewWriter(cfg.Output.Dir), rec.Observe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating engine: %v\n", err)
		os.Exit(1)
	}

	// Resume from a saved best genotype
	if *resume != "" {
		best, shape, err := logging.LoadBest(*resume)
		if err == nil && shape != target.Shape {
			err = fmt.Errorf("saved shape %v does not match target %v", shape, target.Shape)
		}
		if err == nil {
			err = eng.Seed(best.Genotype)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resuming from %s: %v\n", *resume, err)
			os.Exit(1)
		}
		fmt.Printf("Resuming from %s (fitness %.1f)\n", *resume, best.Fitness)
	}

	run, err := store.CreateRun(ctx, storage.Run{
		Source:     cfg.Image.Path,
		Height:     target.Shape.Height,
		Width:      target.Shape.Width,
		Channels:   target.Shape.Channels,
		Population: cfg.GA.Population,
		Seed:       cfg.Seed,
		StartedAt:  time.Now(),
		State:      engine.StateInitializing.String(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording run: %v\n", err)
		os.Exit(1)
	}
	rec.runID = run.ID

	res, err := eng.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		if ferr := finishRun(store, run, nil); ferr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to finish run record: %v\n", ferr)
		}
		store.Close()
		logger.Close()
		fmt.Fprintf(os.Stderr, "Error running engine: %v\n", err)
		os.Exit(1)
	}

	// Save best genotype
	if err := logging.SaveBest(cfg.Logging.BestPath, res.Best, target.Shape, res.Generations); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save best genotype: %v\n", err)
	}

	if err := finishRun(store, run, res); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to finish run record: %v\n", err)
	}
	if finished, ok, err := store.GetRun(context.Background(), run.ID); err == nil && ok {
		run = finished
	}

	fmt.Println("---")
	printSummary(run, res)
	printCheckpoints(store, run.ID)

	if rec.failures > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d history writes failed\n", rec.failures)
	}
	if res.State == engine.StateCancelled {
		fmt.Println("Run cancelled; best solution so far was saved.")
	}
}

func printSummary(run storage.Run, res *engine.Result) {
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true

	improvement := 0.0
	if res.InitialFitness > 0 {
		improvement = 100 * (res.InitialFitness - res.Best.Fitness) / res.InitialFitness
	}

	table.AddRow("Run:", run.ID)
	table.AddRow("State:", res.State)
	table.AddRow("Generations:", res.Generations)
	table.AddRow("Initial fitness:", fmt.Sprintf("%.1f", res.InitialFitness))
	table.AddRow("Best fitness:", fmt.Sprintf("%.1f", res.Best.Fitness))
	table.AddRow("Improvement:", fmt.Sprintf("%.2f%%", improvement))
	table.AddRow("Checkpoints:", fmt.Sprintf("%d written, %d failed", len(res.Checkpoints), res.CheckpointErrors))
	table.AddRow("Solution:", res.SolutionPath)
	table.AddRow("Elapsed:", res.Elapsed.Round(time.Millisecond))
	fmt.Println(table)
}

func printCheckpoints(store storage.Store, runID string) {
	cps, err := store.ListCheckpoints(context.Background(), runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to list checkpoints: %v\n", err)
		return
	}
	if len(cps) == 0 {
		return
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = false
	table.AddRow("GENERATION", "FITNESS", "PATH")
	for _, cp := range cps {
		table.AddRow(cp.Generation, fmt.Sprintf("%.1f", cp.Fitness), cp.Path)
	}
	fmt.Println()
	fmt.Println(table)
}
