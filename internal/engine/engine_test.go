package engine

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/checkpoint"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// memorySink records writes without touching the filesystem
type memorySink struct {
	checkpoints []int
	final       pixel.Genotype
	failWrites  bool
	failFinal   bool
}

func (s *memorySink) Write(g pixel.Genotype, shape pixel.Shape, generation int) (string, error) {
	if s.failWrites {
		return "", &checkpoint.IOError{Op: "write", Path: "mem", Err: errors.New("disk full")}
	}
	if _, err := pixel.Decode(g, shape); err != nil {
		return "", err
	}
	s.checkpoints = append(s.checkpoints, generation)
	return checkpoint.FileName(generation), nil
}

func (s *memorySink) WriteFinal(g pixel.Genotype, shape pixel.Shape) (string, error) {
	if s.failFinal {
		return "", &checkpoint.IOError{Op: "write", Path: "mem", Err: errors.New("disk full")}
	}
	s.final = pixel.Clone(g)
	return checkpoint.SolutionName, nil
}

func testConfig(population, maxGenerations int) *config.Config {
	cfg := config.Default()
	cfg.Seed = 42
	cfg.GA.Population = population
	cfg.GA.Elites = 1
	cfg.GA.MaxGenerations = maxGenerations
	cfg.GA.MutationRate = 0.1
	cfg.GA.MutationMagnitude = 16
	cfg.Eval.Workers = 2
	cfg.Output.CheckpointInterval = 0
	return cfg
}

func uniformTarget(shape pixel.Shape, value uint8) pixel.Image {
	pix := make([]uint8, shape.Len())
	for i := range pix {
		pix[i] = value
	}
	return pixel.Image{Shape: shape, Pix: pix}
}

func randomTarget(shape pixel.Shape, seed int64) pixel.Image {
	return pixel.Image{Shape: shape, Pix: pixel.RandomGenotype(shape.Len(), rand.New(rand.NewSource(seed)))}
}

func TestUniformTargetImproves(t *testing.T) {
	cfg := testConfig(10, 50)
	target := uniformTarget(pixel.Shape{Height: 2, Width: 2, Channels: 1}, 128)
	sink := &memorySink{}

	e, err := New(cfg, target, sink, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.State != StateConverged && res.State != StateBudgetExhausted {
		t.Fatalf("unexpected terminal state %s", res.State)
	}
	if res.Best.Fitness > res.InitialFitness {
		t.Fatalf("best fitness %g worse than initial %g", res.Best.Fitness, res.InitialFitness)
	}
	if res.State == StateBudgetExhausted && res.Generations != 50 {
		t.Fatalf("budget exhausted after %d generations", res.Generations)
	}
	if !reflect.DeepEqual(sink.final, res.Best.Genotype) {
		t.Fatal("final solution should be the best-ever genotype")
	}
}

func TestShapeMismatchIsFatal(t *testing.T) {
	target := randomTarget(pixel.Shape{Height: 4, Width: 4, Channels: 3}, 1)
	_, err := pixel.Decode(pixel.Encode(target), pixel.Shape{Height: 4, Width: 4, Channels: 1})
	var mismatch *pixel.ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}

	// A target whose pixels disagree with its declared shape is rejected up front.
	bad := pixel.Image{Shape: pixel.Shape{Height: 4, Width: 4, Channels: 1}, Pix: target.Pix}
	_, err = New(testConfig(4, 1), bad, &memorySink{}, nil)
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ShapeMismatchError from New, got %v", err)
	}
}

func TestCheckpointCadence(t *testing.T) {
	cfg := testConfig(6, 20)
	cfg.Output.CheckpointInterval = 5
	target := randomTarget(pixel.Shape{Height: 8, Width: 8, Channels: 3}, 2)
	w := checkpoint.NewWriter(t.TempDir())

	e, err := New(cfg, target, w, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.State != StateBudgetExhausted {
		t.Fatalf("state = %s", res.State)
	}

	entries, err := checkpoint.List(w.CheckpointDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var gens []int
	for _, entry := range entries {
		gens = append(gens, entry.Generation)
	}
	if !reflect.DeepEqual(gens, []int{5, 10, 15, 20}) {
		t.Fatalf("checkpoints = %v, want [5 10 15 20]", gens)
	}
	if len(res.Checkpoints) != 4 {
		t.Fatalf("result lists %d checkpoints", len(res.Checkpoints))
	}
	if _, err := os.Stat(filepath.Join(w.OutputDir, checkpoint.SolutionName)); err != nil {
		t.Fatalf("solution missing: %v", err)
	}
}

func TestAllElitesFreezePopulation(t *testing.T) {
	cfg := testConfig(8, 10)
	cfg.GA.Elites = 8
	cfg.GA.MutationRate = 1
	target := randomTarget(pixel.Shape{Height: 3, Width: 3, Channels: 3}, 3)

	e, err := New(cfg, target, &memorySink{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	initial := e.Population()
	initialBest := e.Best().Fitness

	for e.State() == StateRunning {
		if err := e.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if e.Generation() != 10 {
		t.Fatalf("generation = %d", e.Generation())
	}
	if e.Best().Fitness != initialBest {
		t.Fatalf("best fitness changed from %g to %g", initialBest, e.Best().Fitness)
	}

	final := e.Population()
	ranked := initial.Ranked()
	for pos, idx := range ranked {
		if !reflect.DeepEqual(final.Genotype(pos), initial.Genotype(idx)) {
			t.Fatalf("individual %d changed in a frozen population", idx)
		}
	}
}

func TestInvariantsAcrossGenerations(t *testing.T) {
	cfg := testConfig(12, 30)
	cfg.GA.Elites = 2
	cfg.GA.Selection = "rank"
	cfg.GA.Crossover = "single_point"
	shape := pixel.Shape{Height: 3, Width: 5, Channels: 3}
	target := randomTarget(shape, 4)

	var events []Progress
	e, err := New(cfg, target, &memorySink{}, func(p Progress) { events = append(events, p) })
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	prevBest := e.Best().Fitness
	for e.State() == StateRunning {
		if err := e.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
		pop := e.Population()
		if pop.Size() != 12 {
			t.Fatalf("population size %d at generation %d", pop.Size(), e.Generation())
		}
		for i := 0; i < pop.Size(); i++ {
			if len(pop.Genotype(i)) != shape.Len() {
				t.Fatalf("genotype length %d at generation %d", len(pop.Genotype(i)), e.Generation())
			}
		}
		best := e.Best().Fitness
		if best > prevBest {
			t.Fatalf("best-ever regressed from %g to %g at generation %d", prevBest, best, e.Generation())
		}
		prevBest = best
	}

	if len(events) != e.Generation()+1 {
		t.Fatalf("expected %d progress events, got %d", e.Generation()+1, len(events))
	}
	for i, p := range events {
		if p.Generation != i {
			t.Fatalf("event %d reports generation %d", i, p.Generation)
		}
		if p.Stats.Min < p.BestFitness {
			t.Fatalf("population minimum %g below best-ever %g", p.Stats.Min, p.BestFitness)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	target := randomTarget(pixel.Shape{Height: 4, Width: 4, Channels: 1}, 5)
	run := func() *Result {
		e, err := New(testConfig(10, 15), target, &memorySink{}, nil)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		res, err := e.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.BestByGeneration, b.BestByGeneration) || !reflect.DeepEqual(a.Best, b.Best) {
		t.Fatal("runs with the same seed diverged")
	}
}

func TestConvergesWhenThresholdMet(t *testing.T) {
	cfg := testConfig(4, 100)
	cfg.GA.FitnessThreshold = 1e12
	e, err := New(cfg, randomTarget(pixel.Shape{Height: 2, Width: 2, Channels: 1}, 6), &memorySink{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.State != StateConverged || res.Generations != 0 {
		t.Fatalf("expected convergence at generation 0, got %s after %d", res.State, res.Generations)
	}
}

func TestZeroBudgetExhaustsImmediately(t *testing.T) {
	e, err := New(testConfig(4, 0), randomTarget(pixel.Shape{Height: 2, Width: 2, Channels: 3}, 7), &memorySink{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.State != StateBudgetExhausted || res.Generations != 0 {
		t.Fatalf("state %s after %d generations", res.State, res.Generations)
	}
}

func TestCheckpointFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(6, 10)
	cfg.Output.CheckpointInterval = 2
	sink := &memorySink{failWrites: true}

	var reported int
	e, err := New(cfg, randomTarget(pixel.Shape{Height: 4, Width: 4, Channels: 3}, 8), sink, func(p Progress) {
		if p.CheckpointErr != nil {
			reported++
		}
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run should survive checkpoint failures: %v", err)
	}
	if res.CheckpointErrors != 5 || reported != 5 {
		t.Fatalf("checkpoint errors = %d, reported = %d, want 5", res.CheckpointErrors, reported)
	}
	if res.Generations != 10 {
		t.Fatalf("generations = %d", res.Generations)
	}
}

func TestFinalWriteFailureIsFatal(t *testing.T) {
	e, err := New(testConfig(4, 2), randomTarget(pixel.Shape{Height: 2, Width: 2, Channels: 1}, 9), &memorySink{failFinal: true}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = e.Run(context.Background())
	var ioErr *checkpoint.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestCancelStopsAtGenerationBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &memorySink{}
	e, err := New(testConfig(6, 1000), randomTarget(pixel.Shape{Height: 4, Width: 4, Channels: 3}, 10), sink, func(p Progress) {
		if p.Generation == 3 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.State != StateCancelled || res.Generations != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if sink.final == nil {
		t.Fatal("cancelled run should still write its best solution")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(4, 10)
	cfg.GA.CrossoverRate = 2
	_, err := New(cfg, randomTarget(pixel.Shape{Height: 2, Width: 2, Channels: 1}, 11), &memorySink{}, nil)
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	cfg = testConfig(4, 10)
	_, err = New(cfg, pixel.Image{Shape: pixel.Shape{Height: 0, Width: 2, Channels: 1}}, &memorySink{}, nil)
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for empty target, got %v", err)
	}
}

func TestMeanInitializationStartsCloser(t *testing.T) {
	target := uniformTarget(pixel.Shape{Height: 6, Width: 6, Channels: 3}, 200)
	initialBest := func(mode string) float64 {
		cfg := testConfig(10, 0)
		cfg.Init.Mode = mode
		cfg.Init.Spread = 10
		e, err := New(cfg, target, &memorySink{}, nil)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		if err := e.Init(); err != nil {
			t.Fatalf("init: %v", err)
		}
		return e.Best().Fitness
	}
	if mean, uniform := initialBest("mean"), initialBest("uniform"); mean >= uniform {
		t.Fatalf("mean seeding (%g) should start closer than uniform (%g)", mean, uniform)
	}
}

func TestStepRequiresRunningState(t *testing.T) {
	e, err := New(testConfig(4, 1), randomTarget(pixel.Shape{Height: 2, Width: 2, Channels: 1}, 12), &memorySink{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Step(); err == nil {
		t.Fatal("step before init should fail")
	}
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := e.Init(); err == nil {
		t.Fatal("second init should fail")
	}
}

func TestSeedResumesFromGenotype(t *testing.T) {
	cfg := testConfig(6, 20)
	shape := pixel.Shape{Height: 4, Width: 4, Channels: 3}
	target := randomTarget(shape, 9)

	e, err := New(cfg, target, &memorySink{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	var mismatch *pixel.ShapeMismatchError
	if err := e.Seed(make(pixel.Genotype, shape.Len()-1)); !errors.As(err, &mismatch) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}
	if err := e.Seed(pixel.Encode(target)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.State != StateConverged || res.Generations != 0 || res.Best.Fitness != 0 {
		t.Fatalf("seeded exact match should converge at generation 0: %s gen=%d fitness=%g",
			res.State, res.Generations, res.Best.Fitness)
	}
	if err := e.Seed(pixel.Encode(target)); err == nil {
		t.Fatal("seeding after the run started should fail")
	}
}

func TestSeedLimitedToPopulation(t *testing.T) {
	cfg := testConfig(2, 5)
	target := randomTarget(pixel.Shape{Height: 1, Width: 1, Channels: 1}, 1)
	e, err := New(cfg, target, &memorySink{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	g := pixel.Genotype{0}
	for i := 0; i < 2; i++ {
		if err := e.Seed(g); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	var cfgErr *config.ConfigurationError
	if err := e.Seed(g); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
