package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type PackKind string

const (
	PackKindRegular PackKind = "regular"
	PackKindClassic PackKind = "classic"
)

type Pack struct {
	bun.BaseModel `bun:"table:packs,alias:p"`

	ID       string          `bun:"id,pk,type:uuid"`
	Name     string          `bun:"name,notnull"`
	Type     string          `bun:"type,notnull"`
	Kind     PackKind        `bun:"kind,notnull,default:'regular'"`
	Price    decimal.Decimal `bun:"price,type:numeric(12,2),notnull,default:0"`
	IsActive bool            `bun:"is_active,notnull,default:true"`
	// TotalPacks is the remaining purchasable units; nil means uncapped.
	TotalPacks *int `bun:"total_packs"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type MysteryPack struct {
	bun.BaseModel `bun:"table:mystery_packs,alias:mp"`

	ID       string          `bun:"id,pk,type:uuid"`
	Name     string          `bun:"name,notnull"`
	PackType string          `bun:"pack_type,notnull"`
	Price    decimal.Decimal `bun:"price,type:numeric(12,2),notnull,default:0"`
	IsActive bool            `bun:"is_active,notnull,default:true"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// SpecialPackCard is a prize pool row of a classic pack.
type SpecialPackCard struct {
	bun.BaseModel `bun:"table:special_pack_cards,alias:spc"`

	ID       string `bun:"id,pk,type:uuid"`
	PackID   string `bun:"pack_id,notnull,type:uuid,unique:special_pack_card"`
	CardID   string `bun:"card_id,notnull,type:uuid,unique:special_pack_card"`
	Quantity int    `bun:"quantity,notnull,default:0"`
}

// MysteryPackCard is a prize pool row of a mystery pack.
type MysteryPackCard struct {
	bun.BaseModel `bun:"table:mystery_pack_cards,alias:mpc"`

	ID            string `bun:"id,pk,type:uuid"`
	MysteryPackID string `bun:"mystery_pack_id,notnull,type:uuid,unique:mystery_pack_card"`
	CardID        string `bun:"card_id,notnull,type:uuid,unique:mystery_pack_card"`
	Quantity      int    `bun:"quantity,notnull,default:0"`
}

type PoolKind string

const (
	PoolSpecial PoolKind = "special"
	PoolMystery PoolKind = "mystery"
)

// PoolEntry is a prize pool row of either kind with its card loaded.
type PoolEntry struct {
	Kind     PoolKind
	PackID   string
	CardID   string
	Quantity int
	Card     *InventoryCard
}
