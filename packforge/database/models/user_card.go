package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// UserCard is a vault holding. A holding is active until refunded or shipped.
type UserCard struct {
	bun.BaseModel `bun:"table:user_cards,alias:uc"`

	ID         string          `bun:"id,pk,type:uuid"`
	UserID     string          `bun:"user_id,notnull,type:uuid"`
	CardID     string          `bun:"card_id,notnull,type:uuid"`
	Quantity   int             `bun:"quantity,notnull,default:1"`
	PullValue  decimal.Decimal `bun:"pull_value,type:numeric(12,2),notnull,default:0"`
	IsRefunded bool            `bun:"is_refunded,notnull,default:false"`
	IsShipped  bool            `bun:"is_shipped,notnull,default:false"`
	PulledAt   time.Time       `bun:"pulled_at,notnull,default:current_timestamp"`
	RefundedAt *time.Time      `bun:"refunded_at"`
	ShippedAt  *time.Time      `bun:"shipped_at"`

	Card *InventoryCard `bun:"rel:belongs-to,join:card_id=id"`
}

func (uc *UserCard) Active() bool { return !uc.IsRefunded && !uc.IsShipped }

// Value is the refund value of the holding.
func (uc *UserCard) Value() decimal.Decimal {
	return uc.PullValue.Mul(decimal.NewFromInt(int64(uc.Quantity)))
}
