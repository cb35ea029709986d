package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/eval"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/ga"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// Sink is the output collaborator for checkpoints and the final solution
type Sink interface {
	Write(g pixel.Genotype, shape pixel.Shape, generation int) (string, error)
	WriteFinal(g pixel.Genotype, shape pixel.Shape) (string, error)
}

// Progress is emitted after initialization and after every generation
type Progress struct {
	Generation    int
	State         State
	BestFitness   float64
	Stats         Stats
	Checkpoint    string // path written this generation, if any
	CheckpointErr error
}

// Observer receives progress events on the loop goroutine
type Observer func(Progress)

// Result describes a finished run
type Result struct {
	State            State
	Generations      int
	Best             ga.Individual
	InitialFitness   float64
	BestByGeneration []float64
	Checkpoints      []string
	CheckpointErrors int
	SolutionPath     string
	Elapsed          time.Duration
}

// Engine drives the generation loop. It owns the live population; nothing it hands
// out aliases population memory.
type Engine struct {
	cfg         *config.Config
	target      pixel.Image
	evaluator   *eval.Evaluator
	breeder     *ga.Breeder
	initializer ga.Initializer
	sink        Sink
	observer    Observer
	rng         *rand.Rand
	seeds       []pixel.Genotype

	state      State
	generation int
	pop        *ga.Population
	next       *ga.Population
	best       ga.Individual
	result     Result
}

// New validates cfg and target and prepares an engine. All configuration and shape
// errors surface here, before any generation runs.
func New(cfg *config.Config, target pixel.Image, sink Sink, observer Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := target.Shape.Validate(); err != nil {
		return nil, &config.ConfigurationError{Field: "target", Reason: err.Error()}
	}
	if len(target.Pix) != target.Shape.Len() {
		return nil, &pixel.ShapeMismatchError{Shape: target.Shape, Length: len(target.Pix)}
	}
	if sink == nil {
		return nil, errors.New("output sink is required")
	}

	evaluator, err := eval.NewEvaluatorFromConfig(cfg, pixel.Encode(target))
	if err != nil {
		return nil, err
	}
	breeder, err := ga.NewBreeder(cfg.GA)
	if err != nil {
		return nil, err
	}
	initializer, err := ga.NewInitializer(cfg.Init.Mode, cfg.Init.Spread, target)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:         cfg,
		target:      target,
		evaluator:   evaluator,
		breeder:     breeder,
		initializer: initializer,
		sink:        sink,
		observer:    observer,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		state:       StateInitializing,
	}, nil
}

// State returns the current phase
func (e *Engine) State() State {
	return e.state
}

// Generation returns the current generation index
func (e *Engine) Generation() int {
	return e.generation
}

// Best returns a copy of the best individual seen so far
func (e *Engine) Best() ga.Individual {
	return ga.Individual{Genotype: pixel.Clone(e.best.Genotype), Fitness: e.best.Fitness}
}

// Population returns a snapshot of the live population
func (e *Engine) Population() *ga.Population {
	if e.pop == nil {
		return nil
	}
	return e.pop.Clone()
}

// Seed places g into the first generation in place of a random individual, for
// example to resume from a saved best genotype. It must be called before Init and
// at most population-size genotypes are kept.
func (e *Engine) Seed(g pixel.Genotype) error {
	if e.state != StateInitializing {
		return fmt.Errorf("cannot seed in state %s", e.state)
	}
	if len(g) != e.target.Shape.Len() {
		return &pixel.ShapeMismatchError{Shape: e.target.Shape, Length: len(g)}
	}
	if len(e.seeds) >= e.cfg.GA.Population {
		return &config.ConfigurationError{Field: "ga.population", Reason: "more seeds than individuals"}
	}
	e.seeds = append(e.seeds, pixel.Clone(g))
	return nil
}

// Init builds and evaluates the first generation and moves to Running,
// or straight to a terminal state when nothing is left to do
func (e *Engine) Init() error {
	if e.state != StateInitializing {
		return fmt.Errorf("engine already initialized (state %s)", e.state)
	}

	n := e.cfg.GA.Population
	length := e.target.Shape.Len()
	pop, err := ga.Initialize(n, length, e.initializer, e.rng)
	if err != nil {
		return err
	}
	next, err := ga.NewPopulation(n, length)
	if err != nil {
		return err
	}
	for i, g := range e.seeds {
		copy(pop.Genotype(i), g)
	}
	e.pop, e.next = pop, next

	e.evaluator.EvaluatePopulation(e.pop)
	e.best = e.pop.Individual(e.pop.Best())
	e.result.InitialFitness = e.best.Fitness
	e.result.BestByGeneration = append(e.result.BestByGeneration, e.best.Fitness)

	e.state = StateRunning
	e.transition()
	e.emit(Progress{})
	return nil
}

// Step runs one generation. Only a shape mismatch from the sink is returned as an
// error; checkpoint I/O failures are reported through Progress and counted.
func (e *Engine) Step() error {
	if e.state != StateRunning {
		return fmt.Errorf("cannot step in state %s", e.state)
	}

	// 1-3. Rank, carry elites, breed the rest
	e.breeder.Next(e.pop, e.next, e.rng)

	// 4. Evaluate offspring only; elites keep their fitness
	elites := e.cfg.GA.Elites
	e.evaluator.EvaluateRange(e.next, elites, e.next.Size())
	e.pop, e.next = e.next, e.pop

	// 5. Update best-ever
	if i := e.pop.Best(); e.pop.Fitness[i] < e.best.Fitness {
		e.best = e.pop.Individual(i)
	}

	// 6. Advance
	e.generation++
	e.result.BestByGeneration = append(e.result.BestByGeneration, e.best.Fitness)

	// 7. Checkpoint
	var p Progress
	if interval := e.cfg.Output.CheckpointInterval; interval > 0 && e.generation%interval == 0 {
		path, err := e.sink.Write(e.best.Genotype, e.target.Shape, e.generation)
		var mismatch *pixel.ShapeMismatchError
		if errors.As(err, &mismatch) {
			return err
		}
		if err != nil {
			e.result.CheckpointErrors++
			p.CheckpointErr = err
		} else {
			e.result.Checkpoints = append(e.result.Checkpoints, path)
			p.Checkpoint = path
		}
	}

	// 8. Terminate?
	e.transition()
	e.emit(p)
	return nil
}

// Run drives the loop to a terminal state and writes the solution image.
// Cancelling ctx stops the run at the next generation boundary; the best-so-far
// solution is still written and ctx's error is returned with the result.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if e.state == StateInitializing {
		if err := e.Init(); err != nil {
			return nil, err
		}
	}

	for e.state == StateRunning {
		if ctx.Err() != nil {
			e.state = StateCancelled
			break
		}
		if err := e.Step(); err != nil {
			return nil, err
		}
	}

	path, err := e.sink.WriteFinal(e.best.Genotype, e.target.Shape)
	if err != nil {
		return nil, fmt.Errorf("write solution: %w", err)
	}

	res := e.result
	res.State = e.state
	res.Generations = e.generation
	res.Best = e.Best()
	res.SolutionPath = path
	res.Elapsed = time.Since(start)

	if e.state == StateCancelled {
		return &res, ctx.Err()
	}
	return &res, nil
}

func (e *Engine) transition() {
	switch {
	case e.best.Fitness <= e.cfg.GA.FitnessThreshold:
		e.state = StateConverged
	case e.generation >= e.cfg.GA.MaxGenerations:
		e.state = StateBudgetExhausted
	}
}

func (e *Engine) emit(p Progress) {
	if e.observer == nil {
		return
	}
	p.Generation = e.generation
	p.State = e.state
	p.BestFitness = e.best.Fitness
	p.Stats = ComputeStats(e.pop.Fitness)
	e.observer(p)
}
