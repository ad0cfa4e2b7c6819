package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/uptrace/bun"
)

// TransactionOptions configures transaction behavior
type TransactionOptions struct {
	IsolationLevel sql.IsolationLevel
	Timeout        time.Duration
}

// StandardTransactionOptions uses read committed; consistency comes from row locks
// and conditional updates.
func StandardTransactionOptions() *TransactionOptions {
	return &TransactionOptions{
		IsolationLevel: sql.LevelReadCommitted,
		Timeout:        config.DefaultQueryTimeout,
	}
}

// Store is the Postgres implementation of interfaces.Store.
type Store struct {
	db   *bun.DB
	opts *TransactionOptions
}

func NewStore(db *bun.DB, opts *TransactionOptions) *Store {
	if opts == nil {
		opts = StandardTransactionOptions()
	}
	return &Store{db: db, opts: opts}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.Tx) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	tx, err := s.db.BeginTx(timeoutCtx, &sql.TxOptions{Isolation: s.opts.IsolationLevel})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(timeoutCtx, &txRepository{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// txRepository implements interfaces.Tx on top of one bun transaction.
type txRepository struct {
	tx bun.Tx
}

var _ interfaces.Tx = (*txRepository)(nil)
