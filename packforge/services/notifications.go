package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
)

// NotificationService stores user notifications.
type NotificationService struct {
	store interfaces.Store
	now   func() time.Time
}

func NewNotificationService(store interfaces.Store) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

func (s *NotificationService) Notify(ctx context.Context, userID, kind, title, message string) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		return tx.InsertNotification(ctx, n)
	})
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	slog.Debug("Notification stored",
		slog.String("user_id", userID),
		slog.String("kind", kind),
	)
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	var out []*models.Notification
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		var err error
		out, err = tx.ListNotifications(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}
