package eval

import (
	"fmt"
	"math"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/ga"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// Metric names a distance between a genotype and the target
type Metric string

const (
	MetricSAD Metric = "sad" // sum of absolute differences
	MetricSSE Metric = "sse" // sum of squared differences
	MetricMAE Metric = "mae" // mean absolute difference
	MetricMSE Metric = "mse" // mean squared difference
)

// ParseMetric validates a metric name
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(name); m {
	case MetricSAD, MetricSSE, MetricMAE, MetricMSE:
		return m, nil
	default:
		return "", &config.ConfigurationError{Field: "eval.metric", Reason: fmt.Sprintf("unknown metric %q", name)}
	}
}

// Distance scores g against target. It is pure, non-negative and zero only for an exact
// match. Genotypes of different length are infinitely far apart.
func Distance(metric Metric, g, target pixel.Genotype) float64 {
	if len(g) != len(target) {
		return math.Inf(1)
	}
	if len(g) == 0 {
		return 0
	}

	var sum uint64
	switch metric {
	case MetricSSE, MetricMSE:
		for i, v := range g {
			d := int64(v) - int64(target[i])
			sum += uint64(d * d)
		}
	default:
		for i, v := range g {
			d := int64(v) - int64(target[i])
			if d < 0 {
				d = -d
			}
			sum += uint64(d)
		}
	}

	switch metric {
	case MetricMAE, MetricMSE:
		return float64(sum) / float64(len(g))
	default:
		return float64(sum)
	}
}

// Evaluator scores population members against a fixed target
type Evaluator struct {
	metric  Metric
	target  pixel.Genotype
	workers int
}

// NewEvaluator creates a new evaluator for target
func NewEvaluator(metric Metric, target pixel.Genotype, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{
		metric:  metric,
		target:  pixel.Clone(target),
		workers: workers,
	}
}

// NewEvaluatorFromConfig creates an evaluator using the eval section of cfg
func NewEvaluatorFromConfig(cfg *config.Config, target pixel.Genotype) (*Evaluator, error) {
	metric, err := ParseMetric(cfg.Eval.Metric)
	if err != nil {
		return nil, err
	}
	return NewEvaluator(metric, target, cfg.Eval.Workers), nil
}

// Metric returns the evaluator's distance metric
func (e *Evaluator) Metric() Metric {
	return e.metric
}

// Evaluate scores a single genotype
func (e *Evaluator) Evaluate(g pixel.Genotype) float64 {
	return Distance(e.metric, g, e.target)
}

// EvaluatePopulation scores every individual in the population
func (e *Evaluator) EvaluatePopulation(pop *ga.Population) {
	e.EvaluateRange(pop, 0, pop.Size())
}

// EvaluateRange scores individuals [from,to) in parallel and returns once all are done.
// Each worker writes a distinct fitness slot, so no locking is needed.
func (e *Evaluator) EvaluateRange(pop *ga.Population, from, to int) {
	if from >= to {
		return
	}
	if e.workers == 1 || to-from == 1 {
		for i := from; i < to; i++ {
			pop.Fitness[i] = e.Evaluate(pop.Genotype(i))
		}
		return
	}

	p := pool.New().WithMaxGoroutines(e.workers)
	for i := from; i < to; i++ {
		i := i
		p.Go(func() {
			pop.Fitness[i] = e.Evaluate(pop.Genotype(i))
		})
	}
	p.Wait()
}
