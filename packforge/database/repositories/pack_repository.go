package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/uptrace/bun"
)

func (r *txRepository) GetPack(ctx context.Context, packID string) (*models.Pack, error) {
	pack := new(models.Pack)
	if err := r.tx.NewSelect().Model(pack).Where("id = ?", packID).Scan(ctx); err != nil {
		return nil, handleErrorWithID("get", "pack", packID, err)
	}
	return pack, nil
}

func (r *txRepository) LockPack(ctx context.Context, packID string) (*models.Pack, error) {
	pack := new(models.Pack)
	err := r.tx.NewSelect().Model(pack).Where("id = ?", packID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, handleErrorWithID("lock", "pack", packID, err)
	}
	return pack, nil
}

func (r *txRepository) ActivePackByType(ctx context.Context, packType string) (*models.Pack, error) {
	pack := new(models.Pack)
	err := r.tx.NewSelect().
		Model(pack).
		Where("type = ?", packType).
		Where("kind = ?", models.PackKindRegular).
		Where("is_active = TRUE").
		Order("created_at").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, handleErrorWithID("get_by_type", "pack", packType, err)
	}
	return pack, nil
}

func (r *txRepository) DecrementPackStock(ctx context.Context, packID string) (int, bool, error) {
	var left int
	err := decrementPackStockQuery(r.tx, packID).Scan(ctx, &left)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, handleErrorWithID("decrement_stock", "pack", packID, err)
	}
	return left, true, nil
}

func decrementPackStockQuery(db bun.IDB, packID string) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.Pack)(nil)).
		Set("total_packs = total_packs - 1").
		Where("id = ?", packID).
		Where("total_packs > 0").
		Returning("total_packs")
}

func (r *txRepository) GetMysteryPack(ctx context.Context, id string) (*models.MysteryPack, error) {
	pack := new(models.MysteryPack)
	if err := r.tx.NewSelect().Model(pack).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, handleErrorWithID("get", "mystery_pack", id, err)
	}
	return pack, nil
}

func (r *txRepository) ActiveMysteryPackByType(ctx context.Context, packType string) (*models.MysteryPack, error) {
	pack := new(models.MysteryPack)
	err := r.tx.NewSelect().
		Model(pack).
		Where("pack_type = ?", packType).
		Where("is_active = TRUE").
		Order("created_at").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, handleErrorWithID("get_by_type", "mystery_pack", packType, err)
	}
	return pack, nil
}

func (r *txRepository) LockUnopenedUserPack(ctx context.Context, id, userID string) (*models.UserPack, error) {
	up := new(models.UserPack)
	if err := lockUnopenedUserPackQuery(r.tx, up, id, userID).Scan(ctx); err != nil {
		return nil, handleErrorWithID("lock", "user_pack", id, err)
	}
	return up, nil
}

func lockUnopenedUserPackQuery(db bun.IDB, up *models.UserPack, id, userID string) *bun.SelectQuery {
	return db.NewSelect().
		Model(up).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("is_opened = FALSE").
		For("UPDATE")
}

func (r *txRepository) MarkUserPackOpened(ctx context.Context, id string, at time.Time) error {
	_, err := r.tx.NewUpdate().
		Model((*models.UserPack)(nil)).
		Set("is_opened = TRUE").
		Set("opened_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return handleErrorWithID("mark_opened", "user_pack", id, err)
}

func (r *txRepository) InsertUserPack(ctx context.Context, up *models.UserPack) error {
	_, err := r.tx.NewInsert().Model(up).Exec(ctx)
	return handleErrorWithID("insert", "user_pack", up.ID, err)
}

func (r *txRepository) ListUnopenedUserPacks(ctx context.Context, userID string) ([]*models.UserPack, error) {
	var packs []*models.UserPack
	err := r.tx.NewSelect().
		Model(&packs).
		Where("user_id = ?", userID).
		Where("is_opened = FALSE").
		Order("earned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "user_pack", err)
	}
	return packs, nil
}
