package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EarnedFromPurchase marks packs bought in the store; packs won in games
// carry the game type instead.
const EarnedFromPurchase = "purchase"

type UserPack struct {
	bun.BaseModel `bun:"table:user_packs,alias:up"`

	ID         string     `bun:"id,pk,type:uuid"`
	UserID     string     `bun:"user_id,notnull,type:uuid"`
	PackID     string     `bun:"pack_id,notnull,type:uuid"`
	Tier       string     `bun:"tier,notnull"`
	EarnedFrom string     `bun:"earned_from,notnull"`
	IsOpened   bool       `bun:"is_opened,notnull,default:false"`
	EarnedAt   time.Time  `bun:"earned_at,notnull,default:current_timestamp"`
	OpenedAt   *time.Time `bun:"opened_at"`
}
