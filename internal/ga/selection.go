package ga

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
)

// Selector chooses parent pairs from a ranked population. ranked holds population
// indices ordered best first (see Population.Ranked); selectors never modify it.
type Selector interface {
	Name() string
	Select(ranked []int, rng *rand.Rand) (int, int)
}

// TournamentSelector samples Size positions with replacement and keeps the best ranked one.
// Since positions carry the index tie-break, equal fitness resolves to the lower index.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

// Pick returns the population index of one tournament winner
func (s TournamentSelector) Pick(ranked []int, rng *rand.Rand) int {
	k := s.Size
	if k < 1 {
		k = 1
	}
	best := rng.Intn(len(ranked))
	for i := 1; i < k; i++ {
		if pos := rng.Intn(len(ranked)); pos < best {
			best = pos
		}
	}
	return ranked[best]
}

func (s TournamentSelector) Select(ranked []int, rng *rand.Rand) (int, int) {
	return s.Pick(ranked, rng), s.Pick(ranked, rng)
}

// minRankWeight keeps the worst rank selectable at the maximum pressure of 2
const minRankWeight = 0.01

// RankSelector performs linear ranking selection. Pressure s in (1,2] sets the expected
// offspring count of the best individual; the worst keeps weight 2-s, never below minRankWeight.
type RankSelector struct {
	Pressure float64

	cumulative []float64
}

func (*RankSelector) Name() string {
	return "rank"
}

func (s *RankSelector) weights(n int) []float64 {
	if len(s.cumulative) == n {
		return s.cumulative
	}
	s.cumulative = make([]float64, n)
	sum := 0.0
	for pos := 0; pos < n; pos++ {
		w := 1.0
		if n > 1 {
			w = 2 - s.Pressure + 2*(s.Pressure-1)*float64(n-1-pos)/float64(n-1)
		}
		if w < minRankWeight {
			w = minRankWeight
		}
		sum += w
		s.cumulative[pos] = sum
	}
	return s.cumulative
}

// Pick returns the population index of one rank-selected individual
func (s *RankSelector) Pick(ranked []int, rng *rand.Rand) int {
	cum := s.weights(len(ranked))
	r := rng.Float64() * cum[len(cum)-1]
	pos := sort.SearchFloat64s(cum, r)
	if pos >= len(ranked) {
		pos = len(ranked) - 1
	}
	return ranked[pos]
}

func (s *RankSelector) Select(ranked []int, rng *rand.Rand) (int, int) {
	return s.Pick(ranked, rng), s.Pick(ranked, rng)
}

// NewSelector builds the selector named in the GA config
func NewSelector(cfg config.GAConfig) (Selector, error) {
	switch cfg.Selection {
	case "tournament":
		return TournamentSelector{Size: cfg.TournamentK}, nil
	case "rank":
		return &RankSelector{Pressure: cfg.RankPressure}, nil
	default:
		return nil, &config.ConfigurationError{Field: "ga.selection", Reason: fmt.Sprintf("unknown selection %q", cfg.Selection)}
	}
}
