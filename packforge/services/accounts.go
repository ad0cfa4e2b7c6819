package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"
)

// Account identifies an authenticated caller.
type Account struct {
	UserID   string
	Username string
	Email    string
}

// AccountService creates the user row of a token subject on first sight.
type AccountService struct {
	store interfaces.Store
	known *lru.Cache
}

func NewAccountService(store interfaces.Store, size int) (*AccountService, error) {
	if size <= 0 {
		size = config.AccountCacheSize
	}
	known, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create account cache: %w", err)
	}
	return &AccountService{store: store, known: known}, nil
}

// Ensure makes sure a user row exists for acc. New accounts start with zero credits.
func (s *AccountService) Ensure(ctx context.Context, acc Account) error {
	if acc.UserID == "" {
		return fmt.Errorf("account without user id")
	}
	if s.known.Contains(acc.UserID) {
		return nil
	}

	created := false
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		_, err := tx.GetUser(ctx, acc.UserID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return err
		}
		now := time.Now()
		created = true
		return tx.InsertUser(ctx, &models.User{
			ID:         acc.UserID,
			Username:   acc.Username,
			Email:      acc.Email,
			Credits:    decimal.Zero,
			TotalSpent: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to ensure account %s: %w", acc.UserID, err)
	}

	if created {
		slog.Info("Account created",
			slog.String("user_id", acc.UserID),
			slog.String("username", acc.Username),
		)
	}
	s.known.Add(acc.UserID, struct{}{})
	return nil
}
