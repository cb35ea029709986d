package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/checkpoint"
)

// Watcher tracks which checkpoints of an output directory have been seen
type Watcher struct {
	paths  *checkpoint.Writer
	seen   []checkpoint.Entry
	mtimes map[int]time.Time
	done   bool
}

// NewWatcher watches the layout checkpoint.Writer produces under outputDir
func NewWatcher(outputDir string) *Watcher {
	return &Watcher{paths: checkpoint.NewWriter(outputDir), mtimes: make(map[int]time.Time)}
}

// Poll returns checkpoints that appeared or were rewritten since the previous poll,
// oldest generation first, and whether the solution image exists. A run restarted
// in the same directory rewrites its files, so those are reported again.
func (w *Watcher) Poll() ([]checkpoint.Entry, bool, error) {
	entries, err := checkpoint.List(w.paths.CheckpointDir)
	if err != nil {
		return nil, w.done, err
	}

	var fresh, present []checkpoint.Entry
	mtimes := make(map[int]time.Time, len(entries))
	for _, e := range entries {
		info, err := os.Stat(e.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, w.done, err
		}
		present = append(present, e)
		mtimes[e.Generation] = info.ModTime()
		if prev, ok := w.mtimes[e.Generation]; !ok || !prev.Equal(info.ModTime()) {
			fresh = append(fresh, e)
		}
	}
	w.seen = present
	w.mtimes = mtimes

	_, err = os.Stat(w.paths.SolutionPath())
	switch {
	case err == nil:
		w.done = true
	case errors.Is(err, fs.ErrNotExist):
		w.done = false
	default:
		return fresh, w.done, err
	}
	return fresh, w.done, nil
}

// Latest returns the highest-generation checkpoint currently on disk
func (w *Watcher) Latest() (checkpoint.Entry, bool, error) {
	return checkpoint.Latest(w.paths.CheckpointDir)
}

// Seen returns the checkpoints on disk as of the last poll
func (w *Watcher) Seen() []checkpoint.Entry {
	return w.seen
}

func (w *Watcher) Done() bool {
	return w.done
}

func (w *Watcher) SolutionPath() string {
	return w.paths.SolutionPath()
}
