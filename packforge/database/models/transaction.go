package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type TransactionType string

const (
	TxPurchase     TransactionType = "purchase"
	TxDeduction    TransactionType = "deduction"
	TxRefund       TransactionType = "refund"
	TxGamePlay     TransactionType = "game_play"
	TxPackPurchase TransactionType = "pack_purchase"
	TxAdminAdjust  TransactionType = "admin_adjustment"
)

// Transaction is an append-only ledger row. Amount is signed.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID          string          `bun:"id,pk,type:uuid"`
	UserID      string          `bun:"user_id,notnull,type:uuid"`
	Type        TransactionType `bun:"type,notnull"`
	Amount      decimal.Decimal `bun:"amount,type:numeric(12,2),notnull"`
	Description string          `bun:"description,notnull,default:''"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp"`
}
