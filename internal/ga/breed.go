package ga

import (
	"math"
	"math/rand"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
)

// Breeder produces the next generation: elites first, then offspring
type Breeder struct {
	Selector          Selector
	Elites            int
	Crossover         CrossoverKind
	CrossoverRate     float64
	MutationRate      float64
	MutationMagnitude int
	ResetRate         float64
}

// NewBreeder builds a breeder from the GA config
func NewBreeder(cfg config.GAConfig) (*Breeder, error) {
	sel, err := NewSelector(cfg)
	if err != nil {
		return nil, err
	}
	return &Breeder{
		Selector:          sel,
		Elites:            cfg.Elites,
		Crossover:         CrossoverKind(cfg.Crossover),
		CrossoverRate:     cfg.CrossoverRate,
		MutationRate:      cfg.MutationRate,
		MutationMagnitude: cfg.MutationMagnitude,
		ResetRate:         cfg.ResetRate,
	}, nil
}

// Next fills next from cur. Slots [0,Elites) receive the best individuals unchanged,
// with their fitness. Slots [Elites,N) receive mutated offspring whose fitness is
// reset and must be evaluated by the caller. next must have the same dimensions as cur.
func (b *Breeder) Next(cur, next *Population, rng *rand.Rand) {
	n := cur.Size()
	ranked := cur.Ranked()

	// 1. Keep elites
	elites := b.Elites
	if elites > n {
		elites = n
	}
	for i := 0; i < elites; i++ {
		next.CopyFrom(i, cur, ranked[i])
	}

	// 2. Fill rest with offspring
	for i := elites; i < n; i++ {
		p1, p2 := b.Selector.Select(ranked, rng)
		child := next.Genotype(i)
		CrossoverInto(child, cur.Genotype(p1), cur.Genotype(p2), b.CrossoverRate, b.Crossover, rng)
		MutateWithReset(child, b.MutationRate, b.MutationMagnitude, b.ResetRate, rng)
		next.Fitness[i] = math.Inf(1)
	}
}
