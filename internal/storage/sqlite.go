package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run Run) (Run, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, err
	}
	run, err = assignID(run)
	if err != nil {
		return Run{}, err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, source, height, width, channels, population, seed, started_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Height, run.Width, run.Channels, run.Population, run.Seed,
		formatTime(run.StartedAt), run.State)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, state = ?, generations = ?, best_fitness = ?
		WHERE id = ?
	`, formatTime(run.FinishedAt), run.State, run.Generations, run.BestFitness, run.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("unknown run: " + run.ID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	var (
		run               Run
		started, finished string
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, source, height, width, channels, population, seed, started_at,
			finished_at, state, generations, best_fitness
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Source, &run.Height, &run.Width, &run.Channels, &run.Population,
		&run.Seed, &started, &finished, &run.State, &run.Generations, &run.BestFitness)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, true, nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, rec GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, best_fitness, min_fitness, mean_fitness,
			std_fitness, max_fitness, distinct_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			min_fitness = excluded.min_fitness,
			mean_fitness = excluded.mean_fitness,
			std_fitness = excluded.std_fitness,
			max_fitness = excluded.max_fitness,
			distinct_count = excluded.distinct_count
	`, rec.RunID, rec.Generation, rec.BestFitness, rec.MinFitness, rec.MeanFitness,
		rec.StdFitness, rec.MaxFitness, rec.Distinct)
	return err
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, best_fitness, min_fitness, mean_fitness, std_fitness,
			max_fitness, distinct_count
		FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		if err := rows.Scan(&rec.RunID, &rec.Generation, &rec.BestFitness, &rec.MinFitness,
			&rec.MeanFitness, &rec.StdFitness, &rec.MaxFitness, &rec.Distinct); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, rec CheckpointRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO checkpoints (run_id, generation, path, fitness)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			path = excluded.path,
			fitness = excluded.fitness
	`, rec.RunID, rec.Generation, rec.Path, rec.Fitness)
	return err
}

func (s *SQLiteStore) ListCheckpoints(ctx context.Context, runID string) ([]CheckpointRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, path, fitness
		FROM checkpoints WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CheckpointRecord
	for rows.Next() {
		var rec CheckpointRecord
		if err := rows.Scan(&rec.RunID, &rec.Generation, &rec.Path, &rec.Fitness); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			height INTEGER NOT NULL,
			width INTEGER NOT NULL,
			channels INTEGER NOT NULL,
			population INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL DEFAULT '',
			finished_at TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			generations INTEGER NOT NULL DEFAULT 0,
			best_fitness REAL NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			min_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			std_fitness REAL NOT NULL,
			max_fitness REAL NOT NULL,
			distinct_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS checkpoints (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			path TEXT NOT NULL,
			fitness REAL NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
