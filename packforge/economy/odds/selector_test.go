package odds

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
)

type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestSelector_PickTier(t *testing.T) {
	rates := []Rate{{models.TierC, 10}, {models.TierD, 90}}

	tests := []struct {
		name string
		r    float64
		want models.Tier
	}{
		{"low draw lands in D", 0.05, models.TierD},
		{"just below boundary stays in D", 0.89, models.TierD},
		{"high draw lands in C", 0.95, models.TierC},
		{"zero", 0, models.TierD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(&seqRand{vals: []float64{tt.r}})
			got, err := s.PickTier(rates)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("PickTier() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSelector_PickTier_FallsBackToLastTier(t *testing.T) {
	rates := []Rate{{models.TierD, 60}, {models.TierC, 39.995}}
	s := NewSelector(&seqRand{vals: []float64{0.99999}})
	got, err := s.PickTier(rates)
	if err != nil {
		t.Fatal(err)
	}
	if got != models.TierC {
		t.Errorf("PickTier() = %s, want C", got)
	}
}

func TestSelector_PickTier_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		rates []Rate
		want  error
	}{
		{"empty", nil, economy.ErrNoPullRates},
		{"sum too low", []Rate{{models.TierD, 50}}, economy.ErrMalformedRateTable},
		{"sum too high", []Rate{{models.TierD, 90}, {models.TierC, 20}}, economy.ErrMalformedRateTable},
		{"negative", []Rate{{models.TierD, 110}, {models.TierC, -10}}, economy.ErrMalformedRateTable},
		{"duplicate tier", []Rate{{models.TierD, 50}, {models.TierD, 50}}, economy.ErrMalformedRateTable},
		{"unknown tier", []Rate{{models.Tier("Z"), 100}}, economy.ErrMalformedRateTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSelector(nil).PickTier(tt.rates)
			if !errors.Is(err, tt.want) {
				t.Errorf("PickTier() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSelector_PickIndex(t *testing.T) {
	tests := []struct {
		r    float64
		n    int
		want int
	}{
		{0, 5, 0},
		{0.199, 5, 0},
		{0.2, 5, 1},
		{0.99999999, 5, 4},
	}
	for _, tt := range tests {
		s := NewSelector(&seqRand{vals: []float64{tt.r}})
		if got := s.PickIndex(tt.n); got != tt.want {
			t.Errorf("PickIndex(%d) with r=%v = %d, want %d", tt.n, tt.r, got, tt.want)
		}
	}
}

func TestSelector_PickTier_Distribution(t *testing.T) {
	rates := DefaultRates[models.PackTypeUltraball]
	s := NewSelector(rand.New(rand.NewPCG(7, 11)))

	const draws = 100000
	counts := make(map[models.Tier]int)
	for i := 0; i < draws; i++ {
		tier, err := s.PickTier(rates)
		if err != nil {
			t.Fatal(err)
		}
		counts[tier]++
	}

	for _, r := range rates {
		got := float64(counts[r.Tier]) * 100 / draws
		if math.Abs(got-r.Probability) > 1.5 {
			t.Errorf("tier %s frequency = %.2f%%, want %.2f%% ± 1.5", r.Tier, got, r.Probability)
		}
	}
}

func TestRestrict(t *testing.T) {
	rates := []Rate{{models.TierD, 50}, {models.TierC, 30}, {models.TierB, 15}, {models.TierA, 5}}

	got := Restrict(rates, func(t models.Tier) bool { return t == models.TierC || t == models.TierA })
	if len(got) != 2 {
		t.Fatalf("Restrict() = %v, want 2 rates", got)
	}
	if math.Abs(got[0].Probability-85.714) > 0.01 || math.Abs(got[1].Probability-14.286) > 0.01 {
		t.Errorf("Restrict() = %v, want C≈85.71 A≈14.29", got)
	}
	if err := Validate(got); err != nil {
		t.Errorf("restricted table should validate: %v", err)
	}

	if none := Restrict(rates, func(models.Tier) bool { return false }); none != nil {
		t.Errorf("Restrict() with no tiers = %v, want nil", none)
	}
}
