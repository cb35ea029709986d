package config

import "fmt"

// ConfigurationError reports an invalid or contradictory tunable.
// It is raised before the first generation runs and is never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the run parameters. Elites may equal the population size,
// which freezes the population.
func (c *Config) Validate() error {
	ga := c.GA
	if ga.Population <= 0 {
		return invalid("ga.population", "must be positive, got %d", ga.Population)
	}
	if ga.Elites < 0 || ga.Elites > ga.Population {
		return invalid("ga.elites", "must be in [0,%d], got %d", ga.Population, ga.Elites)
	}
	switch ga.Selection {
	case "tournament":
		if ga.TournamentK < 1 {
			return invalid("ga.tournament_k", "must be at least 1, got %d", ga.TournamentK)
		}
	case "rank":
		if ga.RankPressure <= 1 || ga.RankPressure > 2 {
			return invalid("ga.rank_pressure", "must be in (1,2], got %g", ga.RankPressure)
		}
	default:
		return invalid("ga.selection", "unknown selection %q", ga.Selection)
	}
	switch ga.Crossover {
	case "uniform", "single_point":
	default:
		return invalid("ga.crossover", "unknown crossover %q", ga.Crossover)
	}
	if err := checkRate("ga.crossover_rate", ga.CrossoverRate); err != nil {
		return err
	}
	if err := checkRate("ga.mutation_rate", ga.MutationRate); err != nil {
		return err
	}
	if err := checkRate("ga.reset_rate", ga.ResetRate); err != nil {
		return err
	}
	if ga.MutationMagnitude < 0 || ga.MutationMagnitude > 255 {
		return invalid("ga.mutation_magnitude", "must be in [0,255], got %d", ga.MutationMagnitude)
	}
	if ga.MaxGenerations < 0 {
		return invalid("ga.max_generations", "must not be negative, got %d", ga.MaxGenerations)
	}
	if ga.FitnessThreshold < 0 {
		return invalid("ga.fitness_threshold", "must not be negative, got %g", ga.FitnessThreshold)
	}

	switch c.Init.Mode {
	case "uniform":
	case "mean":
		if c.Init.Spread < 0 || c.Init.Spread > 255 {
			return invalid("init.spread", "must be in [0,255], got %d", c.Init.Spread)
		}
	default:
		return invalid("init.mode", "unknown mode %q", c.Init.Mode)
	}

	switch c.Eval.Metric {
	case "sad", "sse", "mae", "mse":
	default:
		return invalid("eval.metric", "unknown metric %q", c.Eval.Metric)
	}
	if c.Eval.Workers <= 0 {
		return invalid("eval.workers", "must be positive, got %d", c.Eval.Workers)
	}

	switch c.Image.Channels {
	case 1, 3, 4:
	default:
		return invalid("image.channels", "must be 1, 3 or 4, got %d", c.Image.Channels)
	}
	if c.Image.MaxWidth < 0 {
		return invalid("image.max_width", "must not be negative, got %d", c.Image.MaxWidth)
	}
	if c.Output.CheckpointInterval < 0 {
		return invalid("output.checkpoint_interval", "must not be negative, got %d", c.Output.CheckpointInterval)
	}

	switch c.Storage.Kind {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return invalid("storage.path", "required for sqlite storage")
		}
	default:
		return invalid("storage.kind", "unknown kind %q", c.Storage.Kind)
	}
	return nil
}

func checkRate(field string, v float64) error {
	if v < 0 || v > 1 {
		return invalid(field, "must be in [0,1], got %g", v)
	}
	return nil
}
