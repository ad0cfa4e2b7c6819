package packs

import (
	"context"
	"fmt"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
)

// CandidateSource supplies the cards a draw may pick from.
type CandidateSource interface {
	// Candidates returns the cards of tier that can still be drawn.
	Candidates(ctx context.Context, tier models.Tier) ([]*models.InventoryCard, error)
	// Take records that one copy of card was drawn.
	Take(card *models.InventoryCard)
	// Exhausted is the error for a tier that has nothing left to draw.
	Exhausted(tier models.Tier) error
}

// DrawPlan describes the shape of a pack.
type DrawPlan struct {
	Commons int
	Rates   []odds.Rate
	// Pooled restricts Rates to tiers that still have candidates, picks
	// uniformly over every hit candidate when no rate applies, and turns the
	// hit slot into one more common when no hit candidate is left.
	Pooled bool
}

type DrawnCard struct {
	Card  *models.InventoryCard
	IsHit bool
}

type Drawn struct {
	Cards          []DrawnCard
	HitPosition    int
	FallbackCommon bool
}

// Draw fills a pack: plan.Commons tier D cards followed by the hit slot.
func Draw(ctx context.Context, plan DrawPlan, src CandidateSource, sel *odds.Selector) (*Drawn, error) {
	drawn := &Drawn{
		Cards:       make([]DrawnCard, 0, plan.Commons+1),
		HitPosition: plan.Commons,
	}

	for i := 0; i < plan.Commons; i++ {
		card, err := pickFromTier(ctx, models.TierD, src, sel)
		if err != nil {
			return nil, err
		}
		drawn.Cards = append(drawn.Cards, DrawnCard{Card: card})
	}

	var (
		hit *models.InventoryCard
		err error
	)
	if plan.Pooled {
		hit, err = pickPooledHit(ctx, plan.Rates, src, sel)
	} else {
		var tier models.Tier
		tier, err = sel.PickTier(plan.Rates)
		if err == nil {
			hit, err = pickFromTier(ctx, tier, src, sel)
		}
	}
	if err != nil {
		return nil, err
	}

	if hit == nil {
		common, err := pickFromTier(ctx, models.TierD, src, sel)
		if err != nil {
			return nil, err
		}
		drawn.FallbackCommon = true
		drawn.Cards = append(drawn.Cards, DrawnCard{Card: common})
		return drawn, nil
	}

	drawn.Cards = append(drawn.Cards, DrawnCard{Card: hit, IsHit: true})
	return drawn, nil
}

func pickFromTier(ctx context.Context, tier models.Tier, src CandidateSource, sel *odds.Selector) (*models.InventoryCard, error) {
	candidates, err := src.Candidates(ctx, tier)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, src.Exhausted(tier)
	}
	card := candidates[sel.PickIndex(len(candidates))]
	src.Take(card)
	return card, nil
}

// pickPooledHit returns nil without error when no hit candidate remains.
func pickPooledHit(ctx context.Context, rates []odds.Rate, src CandidateSource, sel *odds.Selector) (*models.InventoryCard, error) {
	available := make(map[models.Tier]bool)
	var all []*models.InventoryCard
	for _, tier := range models.Tiers {
		if !tier.IsHit() {
			continue
		}
		candidates, err := src.Candidates(ctx, tier)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			available[tier] = true
			all = append(all, candidates...)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}

	restricted := odds.Restrict(rates, func(t models.Tier) bool { return available[t] })
	if restricted == nil {
		card := all[sel.PickIndex(len(all))]
		src.Take(card)
		return card, nil
	}

	tier, err := sel.PickTier(restricted)
	if err != nil {
		return nil, err
	}
	return pickFromTier(ctx, tier, src, sel)
}

// catalogSource draws with replacement from the global inventory.
type catalogSource struct {
	tx     interfaces.Tx
	byTier map[models.Tier][]*models.InventoryCard
}

func newCatalogSource(tx interfaces.Tx) *catalogSource {
	return &catalogSource{tx: tx, byTier: make(map[models.Tier][]*models.InventoryCard)}
}

func (s *catalogSource) Candidates(ctx context.Context, tier models.Tier) ([]*models.InventoryCard, error) {
	if cards, ok := s.byTier[tier]; ok {
		return cards, nil
	}
	cards, err := s.tx.CardsByTier(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s cards: %w", tier, err)
	}
	s.byTier[tier] = cards
	return cards, nil
}

func (s *catalogSource) Take(*models.InventoryCard) {}

func (s *catalogSource) Exhausted(tier models.Tier) error {
	return economy.NoCardsInTier(tier)
}

// poolSource draws without replacement from locked prize pool rows.
type poolSource struct {
	entries   []*models.PoolEntry
	remaining map[string]int
	taken     map[string]int
	order     []string
}

type poolTake struct {
	CardID   string
	Quantity int
}

func newPoolSource(entries []*models.PoolEntry) *poolSource {
	s := &poolSource{
		entries:   entries,
		remaining: make(map[string]int, len(entries)),
		taken:     make(map[string]int),
	}
	for _, e := range entries {
		s.remaining[e.CardID] += e.Quantity
	}
	return s
}

func (s *poolSource) Candidates(_ context.Context, tier models.Tier) ([]*models.InventoryCard, error) {
	var cards []*models.InventoryCard
	for _, e := range s.entries {
		if e.Card.Tier == tier && s.remaining[e.CardID] > 0 {
			cards = append(cards, e.Card)
		}
	}
	return cards, nil
}

func (s *poolSource) Take(card *models.InventoryCard) {
	s.remaining[card.ID]--
	if s.taken[card.ID] == 0 {
		s.order = append(s.order, card.ID)
	}
	s.taken[card.ID]++
}

func (s *poolSource) Exhausted(models.Tier) error {
	return economy.ErrNoCardsInPrizePool
}

// Taken lists the copies drawn per card, in first-drawn order.
func (s *poolSource) Taken() []poolTake {
	out := make([]poolTake, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, poolTake{CardID: id, Quantity: s.taken[id]})
	}
	return out
}
