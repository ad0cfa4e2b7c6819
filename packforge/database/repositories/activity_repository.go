package repositories

import (
	"context"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
)

func (r *txRepository) InsertFeedEntry(ctx context.Context, f *models.GlobalFeed) error {
	_, err := r.tx.NewInsert().Model(f).Exec(ctx)
	return handleError("insert", "global_feed", err)
}

func (r *txRepository) RecentFeed(ctx context.Context, limit int) ([]*models.GlobalFeed, error) {
	var feed []*models.GlobalFeed
	err := r.tx.NewSelect().Model(&feed).Order("created_at DESC").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, handleError("list", "global_feed", err)
	}
	return feed, nil
}

func (r *txRepository) InsertGameSession(ctx context.Context, s *models.GameSession) error {
	_, err := r.tx.NewInsert().Model(s).Exec(ctx)
	return handleError("insert", "game_session", err)
}

func (r *txRepository) InsertNotification(ctx context.Context, n *models.Notification) error {
	_, err := r.tx.NewInsert().Model(n).Exec(ctx)
	return handleError("insert", "notification", err)
}

func (r *txRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	var notes []*models.Notification
	err := r.tx.NewSelect().
		Model(&notes).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "notification", err)
	}
	return notes, nil
}
