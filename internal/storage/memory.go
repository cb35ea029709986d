package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	generations map[string][]GenerationRecord
	checkpoints map[string][]CheckpointRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.generations = make(map[string][]GenerationRecord)
	s.checkpoints = make(map[string][]CheckpointRecord)
	return nil
}

func (s *MemoryStore) CreateRun(_ context.Context, run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return Run{}, errors.New("store is not initialized")
	}
	run, err := assignID(run)
	if err != nil {
		return Run{}, err
	}
	s.runs[run.ID] = run
	return run, nil
}

func (s *MemoryStore) FinishRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; !ok {
		return errors.New("unknown run: " + run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, rec GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	recs := s.generations[rec.RunID]
	for i := range recs {
		if recs[i].Generation == rec.Generation {
			recs[i] = rec
			return nil
		}
	}
	s.generations[rec.RunID] = append(recs, rec)
	return nil
}

func (s *MemoryStore) ListGenerations(_ context.Context, runID string) ([]GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]GenerationRecord(nil), s.generations[runID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, rec CheckpointRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	recs := s.checkpoints[rec.RunID]
	for i := range recs {
		if recs[i].Generation == rec.Generation {
			recs[i] = rec
			return nil
		}
	}
	s.checkpoints[rec.RunID] = append(recs, rec)
	return nil
}

func (s *MemoryStore) ListCheckpoints(_ context.Context, runID string) ([]CheckpointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]CheckpointRecord(nil), s.checkpoints[runID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
