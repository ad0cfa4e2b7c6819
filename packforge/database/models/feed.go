package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GlobalFeed struct {
	bun.BaseModel `bun:"table:global_feed,alias:gf"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull,type:uuid"`
	CardID    string    `bun:"card_id,notnull,type:uuid"`
	Tier      Tier      `bun:"tier,notnull"`
	GameType  string    `bun:"game_type,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
