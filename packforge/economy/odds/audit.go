package odds

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// AuditReport compares simulated tier frequencies against a table.
type AuditReport struct {
	Draws            int                 `json:"draws"`
	Counts           map[models.Tier]int `json:"counts"`
	Expected         []Rate              `json:"expected"`
	Observed         []Rate              `json:"observed"`
	ChiSquare        float64             `json:"chiSquare"`
	DegreesOfFreedom int                 `json:"degreesOfFreedom"`
	PValue           float64             `json:"pValue"`
}

// Audit draws from rates draws times across workers goroutines, each with its
// own source from newRand.
func Audit(ctx context.Context, rates []Rate, draws, workers int, newRand func() Rand) (*AuditReport, error) {
	if err := Validate(rates); err != nil {
		return nil, err
	}
	if draws <= 0 || draws > config.MaxAuditDraws {
		return nil, fmt.Errorf("draws must be between 1 and %d", config.MaxAuditDraws)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > draws {
		workers = draws
	}
	if newRand == nil {
		newRand = DefaultRand
	}

	ordered := copyRates(rates)
	SortRates(ordered)

	results := make([]map[models.Tier]int, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := draws / workers
		if w < draws%workers {
			n++
		}
		g.Go(func() error {
			rng := newRand()
			counts := make(map[models.Tier]int, len(ordered))
			for i := 0; i < n; i++ {
				if i%10000 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				counts[pickTier(ordered, rng.Float64()*100)]++
			}
			results[w] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &AuditReport{
		Draws:    draws,
		Counts:   make(map[models.Tier]int, len(ordered)),
		Expected: ordered,
	}
	for _, counts := range results {
		for tier, c := range counts {
			report.Counts[tier] += c
		}
	}

	categories := 0
	for _, r := range ordered {
		observed := report.Counts[r.Tier]
		report.Observed = append(report.Observed, Rate{
			Tier:        r.Tier,
			Probability: float64(observed) * 100 / float64(draws),
		})
		if r.Probability <= 0 {
			continue
		}
		expected := float64(draws) * r.Probability / 100
		diff := float64(observed) - expected
		report.ChiSquare += diff * diff / expected
		categories++
	}

	report.DegreesOfFreedom = categories - 1
	report.PValue = 1
	if report.DegreesOfFreedom > 0 {
		report.PValue = distuv.ChiSquared{K: float64(report.DegreesOfFreedom)}.Survival(report.ChiSquare)
	}
	return report, nil
}

// Audit simulates the active table of packType.
func (t *Table) Audit(ctx context.Context, packType string, draws int) (*AuditReport, error) {
	rates, err := t.Get(ctx, packType)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, config.AuditTimeout)
	defer cancel()
	return Audit(ctx, rates, draws, 0, nil)
}
