package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type GameSession struct {
	bun.BaseModel `bun:"table:game_sessions,alias:gs"`

	ID        string          `bun:"id,pk,type:uuid"`
	UserID    string          `bun:"user_id,notnull,type:uuid"`
	GameType  string          `bun:"game_type,notnull"`
	BetAmount decimal.Decimal `bun:"bet_amount,type:numeric(12,2),notnull"`
	Result    map[string]any  `bun:"result,type:jsonb"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp"`
}
