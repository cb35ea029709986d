package ga

import (
	"math"
	"math/rand"
	"sort"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// Individual is a genotype paired with its fitness (lower is better)
type Individual struct {
	Genotype pixel.Genotype
	Fitness  float64
}

// Population stores all genotypes in one contiguous buffer with a parallel
// fitness array. Genotype i occupies Genes[i*GenomeSize:(i+1)*GenomeSize].
type Population struct {
	Genes      []uint8
	Fitness    []float64
	GenomeSize int
}

// NewPopulation allocates a zeroed population with unevaluated fitness
func NewPopulation(size, genomeSize int) (*Population, error) {
	if size <= 0 {
		return nil, &config.ConfigurationError{Field: "population", Reason: "size must be positive"}
	}
	if genomeSize <= 0 {
		return nil, &config.ConfigurationError{Field: "genotype_length", Reason: "length must be positive"}
	}
	p := &Population{
		Genes:      make([]uint8, size*genomeSize),
		Fitness:    make([]float64, size),
		GenomeSize: genomeSize,
	}
	p.ResetFitness()
	return p, nil
}

// Initialize creates a population of n genotypes of the given length, drawing genes with initializer
func Initialize(n, length int, initializer Initializer, rng *rand.Rand) (*Population, error) {
	if err := initializer.Check(length); err != nil {
		return nil, err
	}
	p, err := NewPopulation(n, length)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		initializer.Fill(p.Genotype(i), rng)
	}
	return p, nil
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.Fitness)
}

// Genotype returns a view of genotype i. Writes go straight to the population buffer.
func (p *Population) Genotype(i int) pixel.Genotype {
	return pixel.Genotype(p.Genes[i*p.GenomeSize : (i+1)*p.GenomeSize : (i+1)*p.GenomeSize])
}

// Individual returns a detached copy of individual i
func (p *Population) Individual(i int) Individual {
	return Individual{
		Genotype: pixel.Clone(p.Genotype(i)),
		Fitness:  p.Fitness[i],
	}
}

// Ranked returns population indices ordered by fitness (ascending), ties by index
func (p *Population) Ranked() []int {
	idx := make([]int, p.Size())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.Fitness[idx[a]] < p.Fitness[idx[b]]
	})
	return idx
}

// Best returns the index of the individual with lowest fitness, ties by index
func (p *Population) Best() int {
	best := 0
	for i, f := range p.Fitness[1:] {
		if f < p.Fitness[best] {
			best = i + 1
		}
	}
	return best
}

// CopyFrom overwrites individual dst with individual src of another population
func (p *Population) CopyFrom(dst int, other *Population, src int) {
	copy(p.Genotype(dst), other.Genotype(src))
	p.Fitness[dst] = other.Fitness[src]
}

// Clone creates a deep copy of the population
func (p *Population) Clone() *Population {
	c := &Population{
		Genes:      make([]uint8, len(p.Genes)),
		Fitness:    make([]float64, len(p.Fitness)),
		GenomeSize: p.GenomeSize,
	}
	copy(c.Genes, p.Genes)
	copy(c.Fitness, p.Fitness)
	return c
}

// ResetFitness marks every individual as unevaluated
func (p *Population) ResetFitness() {
	for i := range p.Fitness {
		p.Fitness[i] = math.Inf(1)
	}
}
