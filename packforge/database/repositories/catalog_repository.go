package repositories

import (
	"context"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/uptrace/bun"
)

func (r *txRepository) CardsByTier(ctx context.Context, tier models.Tier) ([]*models.InventoryCard, error) {
	var cards []*models.InventoryCard
	err := r.tx.NewSelect().
		Model(&cards).
		Where("tier = ?", tier).
		Where("is_active = TRUE").
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, handleError("list_by_tier", "inventory_card", err)
	}
	return cards, nil
}

func (r *txRepository) GetCards(ctx context.Context, ids []string) ([]*models.InventoryCard, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cards []*models.InventoryCard
	err := r.tx.NewSelect().
		Model(&cards).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, handleError("get_many", "inventory_card", err)
	}
	return cards, nil
}

func (r *txRepository) DecrementCardStock(ctx context.Context, cardID string, qty int) (bool, error) {
	n, err := rowsAffected(decrementCardStockQuery(r.tx, cardID, qty).Exec(ctx))
	if err != nil {
		return false, handleErrorWithID("decrement_stock", "inventory_card", cardID, err)
	}
	return n == 1, nil
}

func decrementCardStockQuery(db bun.IDB, cardID string, qty int) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.InventoryCard)(nil)).
		Set("stock = stock - ?", qty).
		Where("id = ?", cardID).
		Where("stock >= ?", qty)
}

func (r *txRepository) ActivePullRates(ctx context.Context, packType string) ([]*models.PullRate, error) {
	var rates []*models.PullRate
	err := r.tx.NewSelect().
		Model(&rates).
		Where("pack_type = ?", packType).
		Where("is_active = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, handleErrorWithID("list", "pull_rate", packType, err)
	}
	return rates, nil
}

func (r *txRepository) ReplacePullRates(ctx context.Context, packType string, rates []*models.PullRate) error {
	_, err := r.tx.NewUpdate().
		Model((*models.PullRate)(nil)).
		Set("is_active = FALSE").
		Where("pack_type = ?", packType).
		Where("is_active = TRUE").
		Exec(ctx)
	if err != nil {
		return handleErrorWithID("deactivate", "pull_rate", packType, err)
	}
	if len(rates) == 0 {
		return nil
	}
	if _, err := r.tx.NewInsert().Model(&rates).Exec(ctx); err != nil {
		return handleErrorWithID("insert", "pull_rate", packType, err)
	}
	return nil
}

func (r *txRepository) CountPullRates(ctx context.Context) (int, error) {
	n, err := r.tx.NewSelect().
		Model((*models.PullRate)(nil)).
		Where("is_active = TRUE").
		Count(ctx)
	return n, handleError("count", "pull_rate", err)
}
