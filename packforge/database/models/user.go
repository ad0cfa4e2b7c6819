package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         string          `bun:"id,pk,type:uuid"`
	Username   string          `bun:"username,notnull,default:''"`
	Email      string          `bun:"email,notnull,default:''"`
	Credits    decimal.Decimal `bun:"credits,type:numeric(12,2),notnull,default:0"`
	TotalSpent decimal.Decimal `bun:"total_spent,type:numeric(12,2),notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
