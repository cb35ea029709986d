package ga

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

func TestInitializeSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pop, err := Initialize(10, 12, UniformInitializer{}, rng)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if pop.Size() != 10 {
		t.Fatalf("size = %d, want 10", pop.Size())
	}
	for i := 0; i < pop.Size(); i++ {
		if len(pop.Genotype(i)) != 12 {
			t.Fatalf("genotype %d length = %d", i, len(pop.Genotype(i)))
		}
		if !math.IsInf(pop.Fitness[i], 1) {
			t.Fatalf("fitness %d should be unevaluated, got %g", i, pop.Fitness[i])
		}
	}
}

func TestInitializeRejectsBadSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tc := range []struct{ n, length int }{{0, 4}, {-1, 4}, {4, 0}} {
		_, err := Initialize(tc.n, tc.length, UniformInitializer{}, rng)
		var cfgErr *config.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Initialize(%d,%d): expected ConfigurationError, got %v", tc.n, tc.length, err)
		}
	}
}

func TestInitializeIsReproducible(t *testing.T) {
	a, _ := Initialize(5, 9, UniformInitializer{}, rand.New(rand.NewSource(3)))
	b, _ := Initialize(5, 9, UniformInitializer{}, rand.New(rand.NewSource(3)))
	if !reflect.DeepEqual(a.Genes, b.Genes) {
		t.Fatal("same seed should produce the same population")
	}
}

func TestMeanInitializer(t *testing.T) {
	initializer := MeanInitializer{Mean: []float64{10, 250}, Spread: 8}
	pop, err := Initialize(20, 8, initializer, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for i, v := range pop.Genes {
		center := 10
		if i%2 == 1 {
			center = 250
		}
		lo, hi := int(pixel.Clamp(center-8)), int(pixel.Clamp(center+8))
		if int(v) < lo || int(v) > hi {
			t.Fatalf("gene %d = %d outside [%d,%d]", i, v, lo, hi)
		}
	}

	_, err = Initialize(4, 7, initializer, rand.New(rand.NewSource(5)))
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for length not divisible by channels, got %v", err)
	}
}

func TestNewInitializer(t *testing.T) {
	target := pixel.Image{Shape: pixel.Shape{Height: 1, Width: 1, Channels: 1}, Pix: []uint8{128}}
	initializer, err := NewInitializer("mean", 4, target)
	if err != nil {
		t.Fatalf("new initializer: %v", err)
	}
	if initializer.Name() != "mean" {
		t.Fatalf("name = %q", initializer.Name())
	}
	if _, err := NewInitializer("gaussian", 4, target); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRankedOrdersByFitnessThenIndex(t *testing.T) {
	pop, _ := NewPopulation(5, 1)
	copy(pop.Fitness, []float64{3, 1, 2, 1, 0})
	got := pop.Ranked()
	want := []int{4, 1, 3, 2, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranked = %v, want %v", got, want)
	}
	if pop.Best() != 4 {
		t.Fatalf("best = %d, want 4", pop.Best())
	}
}

func TestGenotypeViewAndIndividualCopy(t *testing.T) {
	pop, _ := NewPopulation(2, 3)
	g := pop.Genotype(1)
	g[0] = 7
	if pop.Genes[3] != 7 {
		t.Fatal("genotype view should write through to the buffer")
	}
	ind := pop.Individual(1)
	ind.Genotype[0] = 9
	if pop.Genes[3] != 7 {
		t.Fatal("individual copy must not alias the buffer")
	}
	if cap(pop.Genotype(0)) != 3 {
		t.Fatal("genotype view must not allow appends into the neighbour")
	}
}
