// Package vault manages pulled cards: deposits, refunds for credits and
// shipping requests.
package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/ledger"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deposit adds qty copies of card to the user's active holding of it,
// creating the holding with the card's current value when none exists.
func Deposit(ctx context.Context, tx interfaces.Tx, userID string, card *models.InventoryCard, qty int, at time.Time) error {
	err := tx.UpsertHolding(ctx, &models.UserCard{
		ID:        uuid.NewString(),
		UserID:    userID,
		CardID:    card.ID,
		Quantity:  qty,
		PullValue: card.Credits,
		PulledAt:  at,
	})
	if err != nil {
		return fmt.Errorf("failed to deposit card: %w", err)
	}
	return nil
}

type Service struct {
	store  interfaces.Store
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewService(store interfaces.Store, l *ledger.Ledger) *Service {
	return &Service{store: store, ledger: l, now: time.Now}
}

// RefundResult summarizes a completed refund.
type RefundResult struct {
	HoldingIDs []string
	Cards      int
	Credited   decimal.Decimal
}

// Refund converts active holdings back into credits at their pull value and
// returns the copies to a prize pool. Either every requested holding is
// refunded or none is.
func (s *Service) Refund(ctx context.Context, userID string, holdingIDs []string) (*RefundResult, error) {
	ids := dedupe(holdingIDs)
	if len(ids) == 0 {
		return nil, economy.ErrEmptySelection
	}

	var res *RefundResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		holdings, err := tx.LockActiveHoldings(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("failed to lock holdings: %w", err)
		}
		if len(holdings) != len(ids) {
			return economy.ErrHoldingNotRefundable
		}

		total := decimal.Zero
		cards := 0
		perCard := make(map[string]int)
		var cardOrder []string
		for _, h := range holdings {
			total = total.Add(h.Value())
			cards += h.Quantity
			if perCard[h.CardID] == 0 {
				cardOrder = append(cardOrder, h.CardID)
			}
			perCard[h.CardID] += h.Quantity
		}

		for _, cardID := range cardOrder {
			restored, err := tx.RestorePrizePool(ctx, cardID, perCard[cardID])
			if err != nil {
				return fmt.Errorf("failed to restore prize pool: %w", err)
			}
			if !restored {
				slog.Debug("Refunded card has no prize pool row",
					slog.String("card_id", cardID),
					slog.Int("quantity", perCard[cardID]),
				)
			}
		}

		if err := tx.MarkHoldingsRefunded(ctx, ids, s.now()); err != nil {
			return fmt.Errorf("failed to mark holdings refunded: %w", err)
		}

		if total.IsPositive() {
			desc := fmt.Sprintf("Refunded %d card(s)", cards)
			if err := s.ledger.Credit(ctx, tx, userID, total, models.TxRefund, desc); err != nil {
				return err
			}
		}

		res = &RefundResult{HoldingIDs: ids, Cards: cards, Credited: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Cards refunded",
		slog.String("user_id", userID),
		slog.Int("holdings", len(ids)),
		slog.Int("cards", res.Cards),
		slog.String("credited", res.Credited.StringFixed(2)),
	)
	return res, nil
}

// Ship flags active holdings for physical delivery. Shipped holdings can no
// longer be refunded.
func (s *Service) Ship(ctx context.Context, userID string, holdingIDs []string) error {
	ids := dedupe(holdingIDs)
	if len(ids) == 0 {
		return economy.ErrEmptySelection
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		holdings, err := tx.LockActiveHoldings(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("failed to lock holdings: %w", err)
		}
		if len(holdings) != len(ids) {
			return economy.ErrHoldingNotRefundable
		}
		return tx.MarkHoldingsShipped(ctx, ids, s.now())
	})
	if err != nil {
		return err
	}
	slog.Info("Cards marked for shipping",
		slog.String("user_id", userID),
		slog.Int("holdings", len(ids)),
	)
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
