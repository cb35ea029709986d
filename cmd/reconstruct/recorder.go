package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/engine"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/logging"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/storage"
)

// recorder fans engine progress out to the generation logs, the console and run history.
// It runs on the engine loop goroutine.
type recorder struct {
	ctx    context.Context
	cfg    config.LogConfig
	logger *logging.Logger
	store  storage.Store
	runID  string

	failures int
}

// newRecorder creates a recorder; runID is set once the run record exists
func newRecorder(ctx context.Context, cfg config.LogConfig, logger *logging.Logger, store storage.Store) *recorder {
	return &recorder{ctx: ctx, cfg: cfg, logger: logger, store: store}
}

func (r *recorder) Observe(p engine.Progress) {
	if err := r.logger.LogGeneration(p); err != nil {
		r.warn("log generation", err)
	}
	if r.shouldPrint(p) {
		r.logger.PrintGeneration(p)
	}

	// History writes use a background context so the final generations of a
	// cancelled run are still recorded.
	ctx := context.WithoutCancel(r.ctx)
	err := r.store.SaveGeneration(ctx, storage.GenerationRecord{
		RunID:       r.runID,
		Generation:  p.Generation,
		BestFitness: p.BestFitness,
		MinFitness:  p.Stats.Min,
		MeanFitness: p.Stats.Mean,
		StdFitness:  p.Stats.Std,
		MaxFitness:  p.Stats.Max,
		Distinct:    p.Stats.Distinct,
	})
	if err != nil {
		r.warn("record generation", err)
	}

	if p.Checkpoint != "" {
		err := r.store.SaveCheckpoint(ctx, storage.CheckpointRecord{
			RunID:      r.runID,
			Generation: p.Generation,
			Path:       p.Checkpoint,
			Fitness:    p.BestFitness,
		})
		if err != nil {
			r.warn("record checkpoint", err)
		}
	}
}

func (r *recorder) shouldPrint(p engine.Progress) bool {
	switch {
	case r.cfg.EveryGenSummary:
		return true
	case p.State.Terminal(), p.Checkpoint != "", p.CheckpointErr != nil:
		return true
	case r.cfg.SummaryEvery > 0:
		return p.Generation%r.cfg.SummaryEvery == 0
	default:
		return false
	}
}

// warn reports the first failure of a run and counts the rest
func (r *recorder) warn(op string, err error) {
	r.failures++
	if r.failures == 1 {
		fmt.Fprintf(os.Stderr, "Warning: failed to %s: %v\n", op, err)
	}
}

// runFailed marks a history record whose run ended with an error
const runFailed = "failed"

// finishRun closes out the history record of a run. A nil result means the run failed.
// It uses a fresh context since the run's own may already be cancelled.
func finishRun(store storage.Store, run storage.Run, res *engine.Result) error {
	run.FinishedAt = time.Now()
	if res == nil {
		run.State = runFailed
	} else {
		run.State = res.State.String()
		run.Generations = res.Generations
		run.BestFitness = res.Best.Fitness
	}
	return store.FinishRun(context.Background(), run)
}
