package packs

import (
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/shopspring/decimal"
)

// PackCard is one card revealed by an opening.
type PackCard struct {
	ID          string
	Name        string
	Tier        models.Tier
	ImageURL    string
	MarketValue decimal.Decimal
	IsHit       bool
	Position    int
}

// Result is the outcome of an opening. It is implemented only by
// RegularPackResult, MysteryPackResult and ClassicPackResult.
type Result interface {
	Cards() []PackCard
	HitCardPosition() int
	PackType() string
	UserPackID() string
	result()
}

type packResult struct {
	cards      []PackCard
	hitPos     int
	packType   string
	userPackID string
}

func (r *packResult) Cards() []PackCard {
	out := make([]PackCard, len(r.cards))
	copy(out, r.cards)
	return out
}

func (r *packResult) HitCardPosition() int { return r.hitPos }
func (r *packResult) PackType() string     { return r.packType }
func (r *packResult) UserPackID() string   { return r.userPackID }
func (r *packResult) result()              {}

// Hit returns the card at the hit position.
func (r *packResult) Hit() PackCard { return r.cards[r.hitPos] }

type RegularPackResult struct {
	packResult
	PackID string
}

type MysteryPackResult struct {
	packResult
	MysteryPackID string
	// FallbackCommon is set when the pool had no hit left and the hit slot holds a common.
	FallbackCommon bool
}

type ClassicPackResult struct {
	packResult
	PackID         string
	CreditsSpent   decimal.Decimal
	RemainingPacks *int
}

var (
	_ Result = (*RegularPackResult)(nil)
	_ Result = (*MysteryPackResult)(nil)
	_ Result = (*ClassicPackResult)(nil)
)
