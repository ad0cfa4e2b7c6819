// Package games turns game plays into rewards: a pack for Plinko and Wheel,
// a card straight into the vault for the legacy card games.
package games

import (
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
)

const (
	GamePlinko      = "plinko"
	GameWheel       = "wheel"
	GameEnergy      = "energy"
	GameMinesweeper = "minesweeper"
)

// PlinkoWeights are the landing percentages of the nine buckets, left to right.
var PlinkoWeights = [9]float64{0.5, 4.5, 10, 20, 30, 20, 10, 4.5, 0.5}

// PlinkoBuckets maps each bucket to the pack type it awards.
var PlinkoBuckets = [9]string{
	models.PackTypeMasterball,
	models.PackTypeUltraball,
	models.PackTypeGreatball,
	models.PackTypePokeball,
	models.PackTypePokeball,
	models.PackTypePokeball,
	models.PackTypeGreatball,
	models.PackTypeUltraball,
	models.PackTypeMasterball,
}

type wheelSegment struct {
	below    float64
	packType string
}

var wheelSegments = []wheelSegment{
	{0.028, models.PackTypeMasterball},
	{0.168, models.PackTypeUltraball},
	{0.388, models.PackTypeGreatball},
}

// LegacyRates drive the card games that award a card instead of a pack.
var LegacyRates = []odds.Rate{
	{Tier: models.TierD, Probability: 50},
	{Tier: models.TierC, Probability: 25},
	{Tier: models.TierB, Probability: 13},
	{Tier: models.TierA, Probability: 7},
	{Tier: models.TierS, Probability: 3},
	{Tier: models.TierSS, Probability: 1.5},
	{Tier: models.TierSSS, Probability: 0.5},
}

// AwardsPack reports whether gameType rewards a pack rather than a card.
func AwardsPack(gameType string) bool {
	return gameType == GamePlinko || gameType == GameWheel
}

func KnownGame(gameType string) bool {
	switch gameType {
	case GamePlinko, GameWheel, GameEnergy, GameMinesweeper:
		return true
	}
	return false
}

// Mapper simulates game outcomes.
type Mapper struct {
	selector *odds.Selector
}

func NewMapper(selector *odds.Selector) *Mapper {
	if selector == nil {
		selector = odds.NewSelector(nil)
	}
	return &Mapper{selector: selector}
}

func (m *Mapper) PlinkoBucket() int {
	r := m.selector.Rand().Float64() * 100
	var cumulative float64
	for i, w := range PlinkoWeights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	return len(PlinkoWeights) - 1
}

func (m *Mapper) Plinko() string {
	return PlinkoBuckets[m.PlinkoBucket()]
}

func (m *Mapper) Wheel() string {
	r := m.selector.Rand().Float64()
	for _, seg := range wheelSegments {
		if r < seg.below {
			return seg.packType
		}
	}
	return models.PackTypePokeball
}

func (m *Mapper) LegacyTier() (models.Tier, error) {
	return m.selector.PickTier(LegacyRates)
}

// PackType resolves the pack type won in a pack-awarding game. A client
// result is used as-is when trusted and otherwise ignored.
func (m *Mapper) PackType(gameType, clientResult string, trustClient bool) (string, error) {
	if trustClient && clientResult != "" {
		for _, pt := range models.PackTypes {
			if pt == clientResult {
				return clientResult, nil
			}
		}
		return "", economy.ErrInvalidGameResult
	}
	if !AwardsPack(gameType) {
		return "", economy.ErrUnknownGameType
	}
	out, err := m.Simulate(gameType)
	return out.PackType, err
}

// Outcome is a simulated game result: a pack type for pack games, a tier
// for the card games.
type Outcome struct {
	PackType string
	Tier     models.Tier
}

func (m *Mapper) Simulate(gameType string) (Outcome, error) {
	switch gameType {
	case GamePlinko:
		return Outcome{PackType: m.Plinko()}, nil
	case GameWheel:
		return Outcome{PackType: m.Wheel()}, nil
	case GameEnergy, GameMinesweeper:
		tier, err := m.LegacyTier()
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Tier: tier}, nil
	}
	return Outcome{}, economy.ErrUnknownGameType
}
