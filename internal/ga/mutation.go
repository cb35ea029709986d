package ga

import (
	"math/rand"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// MutateInPlace perturbs each gene with probability rate by an integer drawn uniformly
// from [-magnitude, magnitude], clamping the result to [0,255]
func MutateInPlace(g pixel.Genotype, rate float64, magnitude int, rng *rand.Rand) {
	MutateWithReset(g, rate, magnitude, 0, rng)
}

// MutateWithReset applies mutation with occasional random reset of a gene to a uniform value
func MutateWithReset(g pixel.Genotype, rate float64, magnitude int, resetP float64, rng *rand.Rand) {
	if rate <= 0 && resetP <= 0 {
		return
	}
	if magnitude < 0 {
		magnitude = -magnitude
	}
	span := 2*magnitude + 1

	for i := range g {
		if resetP > 0 && rng.Float64() < resetP {
			g[i] = uint8(rng.Intn(256))
		} else if rate > 0 && rng.Float64() < rate {
			g[i] = pixel.Clamp(int(g[i]) + rng.Intn(span) - magnitude)
		}
	}
}

// Mutate returns a mutated copy of g. A zero rate returns an identical copy.
func Mutate(g pixel.Genotype, rate float64, magnitude int, rng *rand.Rand) pixel.Genotype {
	out := pixel.Clone(g)
	MutateInPlace(out, rate, magnitude, rng)
	return out
}
