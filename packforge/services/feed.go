package services

import (
	"context"
	"fmt"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
)

// FeedService reads the global feed of notable pulls.
type FeedService struct {
	store interfaces.Store
}

func NewFeedService(store interfaces.Store) *FeedService {
	return &FeedService{store: store}
}

// Recent returns the newest feed entries first.
func (s *FeedService) Recent(ctx context.Context, limit int) ([]*models.GlobalFeed, error) {
	if limit <= 0 || limit > config.FeedLimit {
		limit = config.FeedLimit
	}
	var out []*models.GlobalFeed
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		var err error
		out, err = tx.RecentFeed(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return out, nil
}
