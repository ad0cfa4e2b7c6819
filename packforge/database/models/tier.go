package models

import "fmt"

// Tier is a card rarity, ascending from D to SSS.
type Tier string

const (
	TierD   Tier = "D"
	TierC   Tier = "C"
	TierB   Tier = "B"
	TierA   Tier = "A"
	TierS   Tier = "S"
	TierSS  Tier = "SS"
	TierSSS Tier = "SSS"
)

// Tiers lists every tier in ascending rarity.
var Tiers = []Tier{TierD, TierC, TierB, TierA, TierS, TierSS, TierSSS}

// Rank returns the position of t in Tiers, or -1 for an unknown tier.
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

func (t Tier) Valid() bool { return t.Rank() >= 0 }

// IsHit reports whether cards of this tier count as hits (C or rarer).
func (t Tier) IsHit() bool { return t.Rank() >= TierC.Rank() }

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Pack type labels shared by packs, mystery packs, pull rates and game outcomes.
const (
	PackTypePokeball   = "pokeball"
	PackTypeGreatball  = "greatball"
	PackTypeUltraball  = "ultraball"
	PackTypeMasterball = "masterball"
)

var PackTypes = []string{PackTypePokeball, PackTypeGreatball, PackTypeUltraball, PackTypeMasterball}
