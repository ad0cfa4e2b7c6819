// Package ledger owns every change to a user's credit balance. Each change is
// paired with an append-only transaction row inside the same unit of work.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	store interfaces.Store
}

func New(store interfaces.Store) *Ledger {
	return &Ledger{store: store}
}

// Deduct subtracts amount when the balance covers it. It returns false and
// writes nothing when it does not.
func (l *Ledger) Deduct(ctx context.Context, tx interfaces.Tx, userID string, amount decimal.Decimal, typ models.TransactionType, description string) (bool, error) {
	if err := economy.ValidateAmount(amount); err != nil {
		return false, err
	}
	ok, err := tx.DeductCredits(ctx, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to deduct credits: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := appendEntry(ctx, tx, userID, typ, amount.Neg(), description); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) Credit(ctx context.Context, tx interfaces.Tx, userID string, amount decimal.Decimal, typ models.TransactionType, description string) error {
	if err := economy.ValidateAmount(amount); err != nil {
		return err
	}
	if err := tx.AddCredits(ctx, userID, amount); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return economy.ErrUserNotFound.With(err)
		}
		return fmt.Errorf("failed to credit user: %w", err)
	}
	return appendEntry(ctx, tx, userID, typ, amount, description)
}

// SetAbsolute overwrites the balance and records the signed delta.
func (l *Ledger) SetAbsolute(ctx context.Context, tx interfaces.Tx, userID string, amount decimal.Decimal, description string) (*models.User, error) {
	if amount.IsNegative() || !amount.Equal(amount.Truncate(2)) {
		return nil, economy.ErrInvalidAmount
	}
	user, err := tx.LockUser(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, economy.ErrUserNotFound.With(err)
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if err := tx.SetCredits(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to set credits: %w", err)
	}
	if description == "" {
		description = "Admin balance adjustment"
	}
	if err := appendEntry(ctx, tx, userID, models.TxAdminAdjust, amount.Sub(user.Credits), description); err != nil {
		return nil, err
	}
	user.Credits = amount
	return user, nil
}

func appendEntry(ctx context.Context, tx interfaces.Tx, userID string, typ models.TransactionType, amount decimal.Decimal, description string) error {
	err := tx.InsertTransaction(ctx, &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// DeductCredits is the standalone deduction behind the credits API.
func (l *Ledger) DeductCredits(ctx context.Context, userID string, amount decimal.Decimal, reason string) error {
	if err := economy.ValidateAmount(amount); err != nil {
		return err
	}
	if reason == "" {
		reason = "Credit deduction"
	}

	err := l.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrUserNotFound.With(err)
			}
			return err
		}
		ok, err := l.Deduct(ctx, tx, userID, amount, models.TxDeduction, reason)
		if err != nil {
			return err
		}
		if !ok {
			return economy.ErrInsufficientCredits
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Credits deducted",
		slog.String("user_id", userID),
		slog.String("amount", amount.StringFixed(2)),
		slog.String("reason", reason),
	)
	return nil
}

// SetCredits is the admin balance override in its own unit of work.
func (l *Ledger) SetCredits(ctx context.Context, userID string, amount decimal.Decimal, description string) (*models.User, error) {
	var user *models.User
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		var err error
		user, err = l.SetAbsolute(ctx, tx, userID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Credits set by admin",
		slog.String("user_id", userID),
		slog.String("amount", amount.StringFixed(2)),
	)
	return user, nil
}

// Statement is a balance with its most recent ledger rows.
type Statement struct {
	User         *models.User
	Transactions []*models.Transaction
}

func (l *Ledger) Statement(ctx context.Context, userID string) (*Statement, error) {
	var st Statement
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return economy.ErrUserNotFound.With(err)
			}
			return err
		}
		st.User = user
		st.Transactions, err = tx.ListTransactions(ctx, userID, config.RecentTransactions)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}
