package ga

import (
	"math/rand"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// CrossoverKind names how two parents are combined
type CrossoverKind string

const (
	CrossoverUniform     CrossoverKind = "uniform"
	CrossoverSinglePoint CrossoverKind = "single_point"
)

// UniformCrossover writes into dst a gene-by-gene mix of p1 and p2, each gene taken
// from either parent with equal probability
func UniformCrossover(dst, p1, p2 pixel.Genotype, rng *rand.Rand) {
	var bits uint64
	for i := range dst {
		if i%64 == 0 {
			bits = rng.Uint64()
		}
		if bits&1 == 0 {
			dst[i] = p1[i]
		} else {
			dst[i] = p2[i]
		}
		bits >>= 1
	}
}

// SinglePointCrossover writes into dst the head of p1 and the tail of p2 around a random cut
func SinglePointCrossover(dst, p1, p2 pixel.Genotype, rng *rand.Rand) {
	point := rng.Intn(len(dst) + 1)
	copy(dst[:point], p1[:point])
	copy(dst[point:], p2[point:])
}

// CrossoverInto writes one offspring of p1 and p2 into dst. With probability rate the
// parents are combined with kind, otherwise dst becomes a copy of a parent chosen uniformly.
// dst must not alias either parent.
func CrossoverInto(dst, p1, p2 pixel.Genotype, rate float64, kind CrossoverKind, rng *rand.Rand) {
	if rng.Float64() >= rate {
		// No crossover, clone one parent
		if rng.Intn(2) == 0 {
			copy(dst, p1)
		} else {
			copy(dst, p2)
		}
		return
	}

	switch kind {
	case CrossoverSinglePoint:
		SinglePointCrossover(dst, p1, p2, rng)
	default:
		UniformCrossover(dst, p1, p2, rng)
	}
}

// Crossover returns a new offspring genotype of p1 and p2; the parents are left untouched
func Crossover(p1, p2 pixel.Genotype, rate float64, kind CrossoverKind, rng *rand.Rand) pixel.Genotype {
	child := make(pixel.Genotype, len(p1))
	CrossoverInto(child, p1, p2, rate, kind, rng)
	return child
}
