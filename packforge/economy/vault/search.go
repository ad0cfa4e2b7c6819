package vault

import (
	"context"
	"strings"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/sahilm/fuzzy"
)

type holdingSource []*models.UserCard

func (h holdingSource) String(i int) string {
	if h[i].Card == nil {
		return ""
	}
	return h[i].Card.Name
}

func (h holdingSource) Len() int { return len(h) }

// List returns the user's active holdings with card details. A non-empty
// query keeps fuzzy name matches, best first.
func (s *Service) List(ctx context.Context, userID, query string) ([]*models.UserCard, error) {
	var holdings []*models.UserCard
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		var err error
		holdings, err = tx.ListActiveHoldings(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return holdings, nil
	}

	matches := fuzzy.FindFrom(query, holdingSource(holdings))
	out := make([]*models.UserCard, 0, len(matches))
	for _, m := range matches {
		out = append(out, holdings[m.Index])
	}
	return out, nil
}
