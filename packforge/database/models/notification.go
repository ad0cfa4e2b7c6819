package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	NotificationRefundCompleted = "refund_completed"
	NotificationRefundFailed    = "refund_failed"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull,type:uuid"`
	Type      string    `bun:"type,notnull"`
	Title     string    `bun:"title,notnull"`
	Message   string    `bun:"message,notnull"`
	IsRead    bool      `bun:"is_read,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
