package engine

import (
	"github.com/campoy/unique"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the fitness distribution of one generation
type Stats struct {
	Min      float64 `json:"min_fitness"`
	Mean     float64 `json:"mean_fitness"`
	Std      float64 `json:"std_fitness"`
	Max      float64 `json:"max_fitness"`
	Distinct int     `json:"distinct"` // number of distinct fitness values
}

// ComputeStats aggregates a fitness slice. The input is not modified.
func ComputeStats(fitness []float64) Stats {
	n := len(fitness)
	if n == 0 {
		return Stats{}
	}

	s := Stats{
		Min: floats.Min(fitness),
		Max: floats.Max(fitness),
	}
	if n == 1 {
		s.Mean = fitness[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(fitness, nil)
	}

	vals := make([]float64, n)
	copy(vals, fitness)
	unique.Slice(&vals, func(i, j int) bool { return vals[i] < vals[j] })
	s.Distinct = len(vals)

	return s
}
