package pixel

import (
	"fmt"
	"math/rand"
)

// Shape is the (height, width, channels) of a pixel array
type Shape struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

// Len returns the flattened length H*W*C
func (s Shape) Len() int {
	return s.Height * s.Width * s.Channels
}

// Validate rejects empty dimensions and unsupported channel counts
func (s Shape) Validate() error {
	if s.Height <= 0 || s.Width <= 0 {
		return fmt.Errorf("invalid shape %v: dimensions must be positive", s)
	}
	switch s.Channels {
	case 1, 3, 4:
		return nil
	default:
		return fmt.Errorf("invalid shape %v: channels must be 1, 3 or 4", s)
	}
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.Height, s.Width, s.Channels)
}

// Image is a row-major, channel-minor pixel array
type Image struct {
	Shape Shape
	Pix   []uint8
}

// Genotype is the flat gene sequence of a candidate image
type Genotype []uint8

// ShapeMismatchError is returned when a genotype cannot be reshaped to a declared shape
type ShapeMismatchError struct {
	Shape  Shape
	Length int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: genotype length %d does not match shape %v (want %d)",
		e.Length, e.Shape, e.Shape.Len())
}

// Encode flattens an image into a genotype. The result never aliases img.Pix.
func Encode(img Image) Genotype {
	return Clone(Genotype(img.Pix))
}

// Decode reshapes a genotype back into an image of the given shape
func Decode(g Genotype, shape Shape) (Image, error) {
	if len(g) != shape.Len() {
		return Image{}, &ShapeMismatchError{Shape: shape, Length: len(g)}
	}
	return Image{Shape: shape, Pix: []uint8(Clone(g))}, nil
}

// Clamp limits v to the gene range [0,255]
func Clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// RandomGenotype creates a genotype with genes drawn uniformly from [0,255]
func RandomGenotype(size int, rng *rand.Rand) Genotype {
	g := make(Genotype, size)
	for i := range g {
		g[i] = uint8(rng.Intn(256))
	}
	return g
}

// Clone creates a copy of a genotype
func Clone(src Genotype) Genotype {
	dst := make(Genotype, len(src))
	copy(dst, src)
	return dst
}

// Mean returns the mean value of each channel
func Mean(img Image) []float64 {
	c := img.Shape.Channels
	means := make([]float64, c)
	if c == 0 || len(img.Pix) == 0 {
		return means
	}
	for i, v := range img.Pix {
		means[i%c] += float64(v)
	}
	n := float64(len(img.Pix) / c)
	for i := range means {
		means[i] /= n
	}
	return means
}
