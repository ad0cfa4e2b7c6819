package repositories

import (
	"context"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

func (r *txRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user := new(models.User)
	err := r.tx.NewSelect().Model(user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, handleErrorWithID("get", "user", userID, err)
	}
	return user, nil
}

func (r *txRepository) LockUser(ctx context.Context, userID string) (*models.User, error) {
	user := new(models.User)
	err := r.tx.NewSelect().Model(user).Where("id = ?", userID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, handleErrorWithID("lock", "user", userID, err)
	}
	return user, nil
}

func (r *txRepository) InsertUser(ctx context.Context, user *models.User) error {
	_, err := r.tx.NewInsert().Model(user).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return handleErrorWithID("insert", "user", user.ID, err)
}

func (r *txRepository) DeductCredits(ctx context.Context, userID string, amount decimal.Decimal) (bool, error) {
	n, err := rowsAffected(deductCreditsQuery(r.tx, userID, amount).Exec(ctx))
	if err != nil {
		return false, handleErrorWithID("deduct", "user", userID, err)
	}
	return n == 1, nil
}

// deductCreditsQuery debits only when the balance covers amount; zero rows
// affected means insufficient credits.
func deductCreditsQuery(db bun.IDB, userID string, amount decimal.Decimal) *bun.UpdateQuery {
	return db.NewUpdate().
		Model((*models.User)(nil)).
		Set("credits = credits - ?", amount).
		Set("total_spent = total_spent + ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Where("credits >= ?", amount)
}

func (r *txRepository) AddCredits(ctx context.Context, userID string, amount decimal.Decimal) error {
	n, err := rowsAffected(r.tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("credits = credits + ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Exec(ctx))
	if err != nil {
		return handleErrorWithID("credit", "user", userID, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "user", ID: userID}
	}
	return nil
}

func (r *txRepository) SetCredits(ctx context.Context, userID string, amount decimal.Decimal) error {
	n, err := rowsAffected(r.tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("credits = ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Exec(ctx))
	if err != nil {
		return handleErrorWithID("set_credits", "user", userID, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "user", ID: userID}
	}
	return nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := r.tx.NewInsert().Model(t).Exec(ctx)
	return handleError("insert", "transaction", err)
}

func (r *txRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.tx.NewSelect().
		Model(&txs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "transaction", err)
	}
	return txs, nil
}
