package odds

import (
	"math"
	"sort"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
)

// Rate is one row of a pull-rate table; Probability is a percentage.
type Rate struct {
	Tier        models.Tier `json:"tier"`
	Probability float64     `json:"probability"`
}

func FromModels(rows []*models.PullRate) []Rate {
	rates := make([]Rate, 0, len(rows))
	for _, r := range rows {
		rates = append(rates, Rate{Tier: r.CardTier, Probability: r.Probability})
	}
	SortRates(rates)
	return rates
}

// SortRates orders rates by ascending tier rarity.
func SortRates(rates []Rate) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].Tier.Rank() < rates[j].Tier.Rank()
	})
}

func Sum(rates []Rate) float64 {
	var sum float64
	for _, r := range rates {
		sum += r.Probability
	}
	return sum
}

// Validate rejects empty tables, unknown or duplicate tiers, negative
// probabilities and tables that do not sum to 100.
func Validate(rates []Rate) error {
	if len(rates) == 0 {
		return economy.ErrNoPullRates
	}
	seen := make(map[models.Tier]bool, len(rates))
	for _, r := range rates {
		if !r.Tier.Valid() || seen[r.Tier] {
			return economy.ErrMalformedRateTable
		}
		if r.Probability < 0 || math.IsNaN(r.Probability) || math.IsInf(r.Probability, 0) {
			return economy.ErrMalformedRateTable
		}
		seen[r.Tier] = true
	}
	if math.Abs(Sum(rates)-100) > config.RateSumTolerance {
		return economy.ErrMalformedRateTable
	}
	return nil
}

// Restrict keeps the rates whose tier satisfies keep and rescales them to sum
// to 100. It returns nil when nothing with positive probability remains.
func Restrict(rates []Rate, keep func(models.Tier) bool) []Rate {
	var kept []Rate
	for _, r := range rates {
		if keep(r.Tier) && r.Probability > 0 {
			kept = append(kept, r)
		}
	}
	sum := Sum(kept)
	if sum <= 0 {
		return nil
	}
	for i := range kept {
		kept[i].Probability = kept[i].Probability * 100 / sum
	}
	return kept
}
