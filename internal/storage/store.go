package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

// Run describes one reconstruction run
type Run struct {
	ID          string
	Source      string // target image path
	Height      int
	Width       int
	Channels    int
	Population  int
	Seed        int64
	StartedAt   time.Time
	FinishedAt  time.Time
	State       string
	Generations int
	BestFitness float64
}

// GenerationRecord is the fitness summary of one generation
type GenerationRecord struct {
	RunID       string
	Generation  int
	BestFitness float64
	MinFitness  float64
	MeanFitness float64
	StdFitness  float64
	MaxFitness  float64
	Distinct    int
}

// CheckpointRecord indexes a checkpoint image written during a run
type CheckpointRecord struct {
	RunID      string
	Generation int
	Path       string
	Fitness    float64
}

// Store persists run history
type Store interface {
	Init(ctx context.Context) error
	CreateRun(ctx context.Context, run Run) (Run, error)
	FinishRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveGeneration(ctx context.Context, rec GenerationRecord) error
	ListGenerations(ctx context.Context, runID string) ([]GenerationRecord, error)
	SaveCheckpoint(ctx context.Context, rec CheckpointRecord) error
	ListCheckpoints(ctx context.Context, runID string) ([]CheckpointRecord, error)
	Close() error
}

// NewStore builds the backend named by kind
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// assignID gives run a fresh identifier when it has none
func assignID(run Run) (Run, error) {
	if run.ID != "" {
		return run, nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return Run{}, fmt.Errorf("generate run id: %w", err)
	}
	run.ID = id.String()
	return run, nil
}
