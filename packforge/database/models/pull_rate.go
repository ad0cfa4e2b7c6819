package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PullRate struct {
	bun.BaseModel `bun:"table:pull_rates,alias:pr"`

	ID          string  `bun:"id,pk,type:uuid"`
	PackType    string  `bun:"pack_type,notnull"`
	CardTier    Tier    `bun:"card_tier,notnull"`
	Probability float64 `bun:"probability,notnull"`
	IsActive    bool    `bun:"is_active,notnull,default:true"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
