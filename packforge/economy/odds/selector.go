package odds

import (
	"math/rand/v2"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
)

// Rand is the randomness source of every draw.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand is backed by the goroutine-safe math/rand/v2 top-level source.
func DefaultRand() Rand { return globalRand{} }

type Selector struct {
	rng Rand
}

func NewSelector(rng Rand) *Selector {
	if rng == nil {
		rng = DefaultRand()
	}
	return &Selector{rng: rng}
}

func (s *Selector) Rand() Rand { return s.rng }

// PickTier draws r in [0, 100) and returns the first tier, in ascending
// rarity, whose cumulative probability reaches r. The last tier absorbs
// floating point slack.
func (s *Selector) PickTier(rates []Rate) (models.Tier, error) {
	if err := Validate(rates); err != nil {
		return "", err
	}
	ordered := make([]Rate, len(rates))
	copy(ordered, rates)
	SortRates(ordered)
	return pickTier(ordered, s.rng.Float64()*100), nil
}

func pickTier(ordered []Rate, r float64) models.Tier {
	var cumulative float64
	for _, rate := range ordered {
		cumulative += rate.Probability
		if r <= cumulative {
			return rate.Tier
		}
	}
	return ordered[len(ordered)-1].Tier
}

// PickIndex returns a uniform index in [0, n). n must be positive.
func (s *Selector) PickIndex(n int) int {
	i := int(s.rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
