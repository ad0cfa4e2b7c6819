package games

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
)

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func seeded(seed uint64) *odds.Selector {
	return odds.NewSelector(rand.New(rand.NewPCG(seed, seed^0x9e3779b9)))
}

func TestMapper_Wheel(t *testing.T) {
	tests := []struct {
		r    float64
		want string
	}{
		{0, models.PackTypeMasterball},
		{0.0279, models.PackTypeMasterball},
		{0.028, models.PackTypeUltraball},
		{0.1679, models.PackTypeUltraball},
		{0.168, models.PackTypeGreatball},
		{0.3879, models.PackTypeGreatball},
		{0.388, models.PackTypePokeball},
		{0.9999, models.PackTypePokeball},
	}
	for _, tt := range tests {
		m := NewMapper(odds.NewSelector(fixedRand(tt.r)))
		if got := m.Wheel(); got != tt.want {
			t.Errorf("Wheel() at %v = %s, want %s", tt.r, got, tt.want)
		}
	}
}

func TestMapper_PlinkoBucket_Edges(t *testing.T) {
	tests := []struct {
		r    float64
		want int
	}{
		{0, 0},
		{0.0049, 0},
		{0.0051, 1},
		{0.5, 4},
		{0.9951, 8},
		{0.9999, 8},
	}
	for _, tt := range tests {
		m := NewMapper(odds.NewSelector(fixedRand(tt.r)))
		if got := m.PlinkoBucket(); got != tt.want {
			t.Errorf("PlinkoBucket() at %v = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestMapper_Plinko_Distribution(t *testing.T) {
	const draws = 900_000
	m := NewMapper(seeded(7))

	var buckets [9]int
	byType := map[string]int{}
	for range draws {
		b := m.PlinkoBucket()
		buckets[b]++
		byType[PlinkoBuckets[b]]++
	}

	for i, w := range PlinkoWeights {
		got := float64(buckets[i]) / draws * 100
		if math.Abs(got-w) > 0.2 {
			t.Errorf("bucket %d landed %.3f%%, want %.1f%%", i, got, w)
		}
	}
	want := map[string]float64{
		models.PackTypeMasterball: 1,
		models.PackTypeUltraball:  9,
		models.PackTypeGreatball:  20,
		models.PackTypePokeball:   70,
	}
	for pt, w := range want {
		got := float64(byType[pt]) / draws * 100
		if math.Abs(got-w) > 0.3 {
			t.Errorf("%s awarded %.3f%%, want %.1f%%", pt, got, w)
		}
	}
}

func TestMapper_LegacyTier_Distribution(t *testing.T) {
	const draws = 200_000
	m := NewMapper(seeded(11))

	counts := map[models.Tier]int{}
	for range draws {
		tier, err := m.LegacyTier()
		if err != nil {
			t.Fatal(err)
		}
		counts[tier]++
	}
	for _, rate := range LegacyRates {
		got := float64(counts[rate.Tier]) / draws * 100
		if math.Abs(got-rate.Probability) > 0.5 {
			t.Errorf("tier %s drawn %.3f%%, want %.1f%%", rate.Tier, got, rate.Probability)
		}
	}
}

func TestMapper_PackType(t *testing.T) {
	tests := []struct {
		name     string
		gameType string
		client   string
		trust    bool
		want     string
		wantErr  error
	}{
		{"trusted client result", GamePlinko, models.PackTypeUltraball, true, models.PackTypeUltraball, nil},
		{"trusted but unknown", GameWheel, "pokemonball", true, "", economy.ErrInvalidGameResult},
		{"untrusted is simulated", GameWheel, models.PackTypeMasterball, false, models.PackTypePokeball, nil},
		{"empty client result is simulated", GamePlinko, "", true, models.PackTypePokeball, nil},
		{"legacy game", GameEnergy, "", false, "", economy.ErrUnknownGameType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(odds.NewSelector(fixedRand(0.5)))
			got, err := m.PackType(tt.gameType, tt.client, tt.trust)
			if !errors.Is(err, tt.wantErr) && (err != nil || tt.wantErr != nil) {
				t.Fatalf("PackType() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PackType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapper_Simulate(t *testing.T) {
	m := NewMapper(odds.NewSelector(fixedRand(0.6)))

	tests := []struct {
		gameType string
		want     Outcome
		wantErr  error
	}{
		{GamePlinko, Outcome{PackType: models.PackTypePokeball}, nil},
		{GameWheel, Outcome{PackType: models.PackTypePokeball}, nil},
		{GameMinesweeper, Outcome{Tier: models.TierC}, nil},
		{"slots", Outcome{}, economy.ErrUnknownGameType},
	}
	for _, tt := range tests {
		t.Run(tt.gameType, func(t *testing.T) {
			got, err := m.Simulate(tt.gameType)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Simulate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Simulate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
