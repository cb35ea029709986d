package ga

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// Initializer draws the genes of a first-generation genotype
type Initializer interface {
	Name() string
	// Check reports whether genotypes of the given length can be drawn
	Check(length int) error
	Fill(g pixel.Genotype, rng *rand.Rand)
}

// UniformInitializer draws every gene independently and uniformly from [0,255]
type UniformInitializer struct{}

func (UniformInitializer) Name() string {
	return "uniform"
}

func (UniformInitializer) Check(int) error {
	return nil
}

func (UniformInitializer) Fill(g pixel.Genotype, rng *rand.Rand) {
	for i := range g {
		g[i] = uint8(rng.Intn(256))
	}
}

// MeanInitializer draws each gene uniformly within Spread of its channel's mean value
type MeanInitializer struct {
	Mean   []float64
	Spread int
}

func (MeanInitializer) Name() string {
	return "mean"
}

func (m MeanInitializer) Check(length int) error {
	if len(m.Mean) == 0 {
		return &config.ConfigurationError{Field: "init.mode", Reason: "mean initializer needs channel means"}
	}
	if length%len(m.Mean) != 0 {
		return &config.ConfigurationError{
			Field:  "init.mode",
			Reason: fmt.Sprintf("genotype length %d is not a multiple of %d channels", length, len(m.Mean)),
		}
	}
	if m.Spread < 0 {
		return &config.ConfigurationError{Field: "init.spread", Reason: "must not be negative"}
	}
	return nil
}

func (m MeanInitializer) Fill(g pixel.Genotype, rng *rand.Rand) {
	c := len(m.Mean)
	for i := range g {
		center := int(math.Round(m.Mean[i%c]))
		g[i] = pixel.Clamp(center + rng.Intn(2*m.Spread+1) - m.Spread)
	}
}

// NewInitializer builds the initializer named by mode. The target is only read for "mean".
func NewInitializer(mode string, spread int, target pixel.Image) (Initializer, error) {
	switch mode {
	case "uniform":
		return UniformInitializer{}, nil
	case "mean":
		return MeanInitializer{Mean: pixel.Mean(target), Spread: spread}, nil
	default:
		return nil, &config.ConfigurationError{Field: "init.mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}
