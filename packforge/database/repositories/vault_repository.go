package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/uptrace/bun"
)

// UpsertHolding relies on idx_user_cards_active_unique; concurrent deposits of
// the same card serialize on the conflicting row.
func (r *txRepository) UpsertHolding(ctx context.Context, uc *models.UserCard) error {
	_, err := upsertHoldingQuery(r.tx, uc).Exec(ctx)
	return handleErrorWithID("upsert", "user_card", uc.CardID, err)
}

func upsertHoldingQuery(db bun.IDB, uc *models.UserCard) *bun.InsertQuery {
	return db.NewInsert().
		Model(uc).
		On("CONFLICT (user_id, card_id) WHERE NOT is_refunded AND NOT is_shipped DO UPDATE").
		Set("quantity = ?TableAlias.quantity + EXCLUDED.quantity").
		Returning("id")
}

func (r *txRepository) LockActiveHoldings(ctx context.Context, userID string, ids []string) ([]*models.UserCard, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var holdings []*models.UserCard
	if err := lockActiveHoldingsQuery(r.tx, &holdings, userID, ids).Scan(ctx); err != nil {
		return nil, handleError("lock_many", "user_card", err)
	}
	return holdings, nil
}

func lockActiveHoldingsQuery(db bun.IDB, dest *[]*models.UserCard, userID string, ids []string) *bun.SelectQuery {
	return db.NewSelect().
		Model(dest).
		Where("id IN (?)", bun.In(ids)).
		Where("user_id = ?", userID).
		Where("is_refunded = FALSE").
		Where("is_shipped = FALSE").
		Order("id").
		For("UPDATE")
}

func (r *txRepository) MarkHoldingsRefunded(ctx context.Context, ids []string, at time.Time) error {
	_, err := r.tx.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("is_refunded = TRUE").
		Set("refunded_at = ?", at).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return handleError("mark_refunded", "user_card", err)
}

func (r *txRepository) MarkHoldingsShipped(ctx context.Context, ids []string, at time.Time) error {
	_, err := r.tx.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("is_shipped = TRUE").
		Set("shipped_at = ?", at).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return handleError("mark_shipped", "user_card", err)
}

func (r *txRepository) ListActiveHoldings(ctx context.Context, userID string) ([]*models.UserCard, error) {
	var holdings []*models.UserCard
	err := r.tx.NewSelect().
		Model(&holdings).
		Relation("Card").
		Where("uc.user_id = ?", userID).
		Where("uc.is_refunded = FALSE").
		Where("uc.is_shipped = FALSE").
		Order("uc.pulled_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "user_card", err)
	}
	return holdings, nil
}
