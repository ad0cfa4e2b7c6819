package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// InventoryCard is a catalog entry. Stock is only consumed by the legacy card games.
type InventoryCard struct {
	bun.BaseModel `bun:"table:inventory_cards,alias:ic"`

	ID       string          `bun:"id,pk,type:uuid"`
	Name     string          `bun:"name,notnull"`
	Tier     Tier            `bun:"tier,notnull"`
	Credits  decimal.Decimal `bun:"credits,type:numeric(12,2),notnull,default:0"`
	ImageURL string          `bun:"image_url,notnull,default:''"`
	Stock    int             `bun:"stock,notnull,default:0"`
	IsActive bool            `bun:"is_active,notnull,default:true"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
