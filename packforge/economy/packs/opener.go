// Package packs opens packs: it draws cards, moves them into the vault and
// settles prize pools and credits in a single unit of work.
package packs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/ledger"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/ellavondegurechaff/packforge/packforge/economy/vault"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Feed sources recorded for hits pulled from packs.
const (
	FeedSourcePack        = "pack_opening"
	FeedSourceMysteryPack = "mystery_pack"
	FeedSourceClassicPack = "classic_pack"
)

// ImageResolver turns a stored image key into a client-facing URL.
type ImageResolver interface {
	CardImageURL(ctx context.Context, key string) string
}

type Opener struct {
	store    interfaces.Store
	ledger   *ledger.Ledger
	rates    *odds.Table
	selector *odds.Selector
	images   ImageResolver
	now      func() time.Time
}

func NewOpener(store interfaces.Store, l *ledger.Ledger, rates *odds.Table, selector *odds.Selector, images ImageResolver) *Opener {
	if selector == nil {
		selector = odds.NewSelector(nil)
	}
	return &Opener{
		store:    store,
		ledger:   l,
		rates:    rates,
		selector: selector,
		images:   images,
		now:      time.Now,
	}
}

// OpenUserPack opens an unopened pack owned by userID. Concurrent calls for
// the same pack serialize on its row lock; all but the first fail with
// ErrPackNotFoundOrAlreadyOpened.
func (o *Opener) OpenUserPack(ctx context.Context, userPackID, userID string) (Result, error) {
	var res Result
	err := o.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		up, err := tx.LockUnopenedUserPack(ctx, userPackID, userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrPackNotFoundOrAlreadyOpened
			}
			return fmt.Errorf("failed to lock user pack: %w", err)
		}

		mp, err := tx.GetMysteryPack(ctx, up.PackID)
		switch {
		case err == nil:
			res, err = o.openMystery(ctx, tx, up, mp)
		case errors.Is(err, interfaces.ErrNotFound):
			var pack *models.Pack
			pack, err = tx.GetPack(ctx, up.PackID)
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrPackNotFound.With(err)
			}
			if err != nil {
				return fmt.Errorf("failed to load pack: %w", err)
			}
			if pack.Kind == models.PackKindClassic {
				res, err = o.openClassicTemplate(ctx, tx, up, pack)
			} else {
				res, err = o.openRegular(ctx, tx, up, pack)
			}
		default:
			return fmt.Errorf("failed to load mystery pack: %w", err)
		}
		if err != nil {
			return err
		}

		return tx.MarkUserPackOpened(ctx, up.ID, o.now())
	})
	if err != nil {
		return nil, err
	}

	o.resolveImages(ctx, res)
	slog.Info("Pack opened",
		slog.String("user_id", userID),
		slog.String("user_pack_id", userPackID),
		slog.String("pack_type", res.PackType()),
		slog.String("hit_tier", string(res.Cards()[res.HitCardPosition()].Tier)),
	)
	return res, nil
}

func (o *Opener) openRegular(ctx context.Context, tx interfaces.Tx, up *models.UserPack, pack *models.Pack) (*RegularPackResult, error) {
	packType := up.Tier
	if packType == "" {
		packType = pack.Type
	}
	rates, err := o.rates.GetTx(ctx, tx, packType)
	if err != nil {
		return nil, err
	}

	drawn, err := Draw(ctx, DrawPlan{Commons: config.RegularCommonCount, Rates: rates}, newCatalogSource(tx), o.selector)
	if err != nil {
		return nil, err
	}
	if err := o.settle(ctx, tx, up.UserID, drawn, feedSource(up, FeedSourcePack)); err != nil {
		return nil, err
	}

	return &RegularPackResult{
		packResult: newPackResult(drawn, packType, up.ID),
		PackID:     pack.ID,
	}, nil
}

func (o *Opener) openMystery(ctx context.Context, tx interfaces.Tx, up *models.UserPack, mp *models.MysteryPack) (*MysteryPackResult, error) {
	drawn, err := o.drawFromPool(ctx, tx, models.PoolMystery, mp.ID, mp.PackType)
	if err != nil {
		return nil, err
	}
	if err := o.settle(ctx, tx, up.UserID, drawn, feedSource(up, FeedSourceMysteryPack)); err != nil {
		return nil, err
	}

	return &MysteryPackResult{
		packResult:     newPackResult(drawn, mp.PackType, up.ID),
		MysteryPackID:  mp.ID,
		FallbackCommon: drawn.FallbackCommon,
	}, nil
}

// openClassicTemplate opens a classic pack that was granted rather than bought.
func (o *Opener) openClassicTemplate(ctx context.Context, tx interfaces.Tx, up *models.UserPack, pack *models.Pack) (*ClassicPackResult, error) {
	drawn, err := o.drawFromPool(ctx, tx, models.PoolSpecial, pack.ID, pack.Type)
	if err != nil {
		return nil, err
	}
	if err := o.settle(ctx, tx, up.UserID, drawn, feedSource(up, FeedSourceClassicPack)); err != nil {
		return nil, err
	}
	return &ClassicPackResult{
		packResult:     newPackResult(drawn, pack.Type, up.ID),
		PackID:         pack.ID,
		CreditsSpent:   decimal.Zero,
		RemainingPacks: pack.TotalPacks,
	}, nil
}

// PurchaseAndOpenClassicPack charges the pack price and opens a classic pack
// from its prize pool in one unit of work.
func (o *Opener) PurchaseAndOpenClassicPack(ctx context.Context, packID, userID string) (*ClassicPackResult, error) {
	var res *ClassicPackResult
	err := o.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		pack, err := tx.LockPack(ctx, packID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrPackNotFound.With(err)
			}
			return fmt.Errorf("failed to lock pack: %w", err)
		}
		if pack.Kind != models.PackKindClassic {
			return economy.ErrPackNotFound
		}
		if !pack.IsActive {
			return economy.ErrPackInactive
		}

		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrUserNotFound.With(err)
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}
		if user.Credits.LessThan(pack.Price) {
			return economy.ErrInsufficientCredits
		}

		if pack.Price.IsPositive() {
			ok, err := o.ledger.Deduct(ctx, tx, userID, pack.Price, models.TxPackPurchase,
				fmt.Sprintf("Purchased classic pack %s", pack.Name))
			if err != nil {
				return err
			}
			if !ok {
				return economy.ErrInsufficientCredits
			}
		}

		var remaining *int
		if pack.TotalPacks != nil {
			left, ok, err := tx.DecrementPackStock(ctx, pack.ID)
			if err != nil {
				return fmt.Errorf("failed to decrement pack stock: %w", err)
			}
			if !ok {
				return economy.ErrPackSoldOut
			}
			remaining = &left
		}

		drawn, err := o.drawFromPool(ctx, tx, models.PoolSpecial, pack.ID, pack.Type)
		if err != nil {
			return err
		}

		now := o.now()
		up := &models.UserPack{
			ID:         uuid.NewString(),
			UserID:     userID,
			PackID:     pack.ID,
			Tier:       pack.Type,
			EarnedFrom: models.EarnedFromPurchase,
			IsOpened:   true,
			EarnedAt:   now,
			OpenedAt:   &now,
		}
		if err := tx.InsertUserPack(ctx, up); err != nil {
			return fmt.Errorf("failed to record purchased pack: %w", err)
		}
		if err := o.settle(ctx, tx, userID, drawn, FeedSourceClassicPack); err != nil {
			return err
		}

		res = &ClassicPackResult{
			packResult:     newPackResult(drawn, pack.Type, up.ID),
			PackID:         pack.ID,
			CreditsSpent:   pack.Price,
			RemainingPacks: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.resolveImages(ctx, res)
	slog.Info("Classic pack purchased",
		slog.String("user_id", userID),
		slog.String("pack_id", packID),
		slog.String("price", res.CreditsSpent.StringFixed(2)),
		slog.String("hit_tier", string(res.Hit().Tier)),
	)
	return res, nil
}

// drawFromPool locks the pool, draws seven commons and a hit, and removes the
// drawn copies from the pool.
func (o *Opener) drawFromPool(ctx context.Context, tx interfaces.Tx, kind models.PoolKind, packID, packType string) (*Drawn, error) {
	entries, err := tx.LockPrizePool(ctx, kind, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock prize pool: %w", err)
	}
	rates, err := o.rates.GetTx(ctx, tx, packType)
	if err != nil {
		return nil, err
	}

	src := newPoolSource(entries)
	drawn, err := Draw(ctx, DrawPlan{Commons: config.PoolCommonCount, Rates: rates, Pooled: true}, src, o.selector)
	if err != nil {
		return nil, err
	}

	for _, take := range src.Taken() {
		ok, err := tx.DecrementPrizePool(ctx, kind, packID, take.CardID, take.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement prize pool: %w", err)
		}
		if !ok {
			return nil, economy.ErrNoCardsInPrizePool
		}
	}
	return drawn, nil
}

// settle deposits the drawn cards into the vault and posts feed entries for hits.
func (o *Opener) settle(ctx context.Context, tx interfaces.Tx, userID string, drawn *Drawn, source string) error {
	now := o.now()
	for _, dc := range drawn.Cards {
		if err := vault.Deposit(ctx, tx, userID, dc.Card, 1, now); err != nil {
			return err
		}
	}

	for _, dc := range drawn.Cards {
		if !dc.IsHit || !dc.Card.Tier.IsHit() {
			continue
		}
		err := tx.InsertFeedEntry(ctx, &models.GlobalFeed{
			ID:        uuid.NewString(),
			UserID:    userID,
			CardID:    dc.Card.ID,
			Tier:      dc.Card.Tier,
			GameType:  source,
			CreatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to post feed entry: %w", err)
		}
	}
	return nil
}

// feedSource names where a granted pack came from, so feed rows of opened
// packs read like those of game plays.
func feedSource(up *models.UserPack, fallback string) string {
	if up.EarnedFrom != "" {
		return up.EarnedFrom
	}
	return fallback
}

func newPackResult(drawn *Drawn, packType, userPackID string) packResult {
	cards := make([]PackCard, 0, len(drawn.Cards))
	for i, dc := range drawn.Cards {
		cards = append(cards, PackCard{
			ID:          dc.Card.ID,
			Name:        dc.Card.Name,
			Tier:        dc.Card.Tier,
			ImageURL:    dc.Card.ImageURL,
			MarketValue: dc.Card.Credits,
			IsHit:       dc.IsHit,
			Position:    i,
		})
	}
	return packResult{
		cards:      cards,
		hitPos:     drawn.HitPosition,
		packType:   packType,
		userPackID: userPackID,
	}
}

func (o *Opener) resolveImages(ctx context.Context, res Result) {
	if o.images == nil {
		return
	}
	var base *packResult
	switch r := res.(type) {
	case *RegularPackResult:
		base = &r.packResult
	case *MysteryPackResult:
		base = &r.packResult
	case *ClassicPackResult:
		base = &r.packResult
	}
	if base == nil {
		return
	}
	for i := range base.cards {
		base.cards[i].ImageURL = o.images.CardImageURL(ctx, base.cards[i].ImageURL)
	}
}

// ListUnopened returns the caller's packs that are still sealed.
func (o *Opener) ListUnopened(ctx context.Context, userID string) ([]*models.UserPack, error) {
	var packs []*models.UserPack
	err := o.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		var err error
		packs, err = tx.ListUnopenedUserPacks(ctx, userID)
		return err
	})
	return packs, err
}
