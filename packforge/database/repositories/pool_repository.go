package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/uptrace/bun"
)

type poolRow struct {
	ID       string `bun:"id"`
	CardID   string `bun:"card_id"`
	Quantity int    `bun:"quantity"`
}

func poolTable(kind models.PoolKind) (table, packColumn string, err error) {
	switch kind {
	case models.PoolSpecial:
		return "special_pack_cards", "pack_id", nil
	case models.PoolMystery:
		return "mystery_pack_cards", "mystery_pack_id", nil
	}
	return "", "", fmt.Errorf("unknown prize pool kind %q", kind)
}

// LockPrizePool locks pool rows without joining cards; Postgres refuses
// FOR UPDATE on the nullable side of the outer join bun emits for relations.
func (r *txRepository) LockPrizePool(ctx context.Context, kind models.PoolKind, packID string) ([]*models.PoolEntry, error) {
	table, packColumn, err := poolTable(kind)
	if err != nil {
		return nil, err
	}

	var rows []poolRow
	if err := lockPrizePoolQuery(r.tx, table, packColumn, packID).Scan(ctx, &rows); err != nil {
		return nil, handleErrorWithID("lock", table, packID, err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CardID)
	}
	cards, err := r.GetCards(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.InventoryCard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	entries := make([]*models.PoolEntry, 0, len(rows))
	for _, row := range rows {
		card, ok := byID[row.CardID]
		if !ok {
			continue
		}
		entries = append(entries, &models.PoolEntry{
			Kind:     kind,
			PackID:   packID,
			CardID:   row.CardID,
			Quantity: row.Quantity,
			Card:     card,
		})
	}
	return entries, nil
}

func lockPrizePoolQuery(db bun.IDB, table, packColumn, packID string) *bun.SelectQuery {
	return db.NewSelect().
		TableExpr(table).
		Column("id", "card_id", "quantity").
		Where("? = ?", bun.Ident(packColumn), packID).
		OrderExpr("card_id").
		For("UPDATE")
}

// decrementPrizePoolQuery never takes a pool row below zero.
func decrementPrizePoolQuery(db bun.IDB, table, packColumn, packID, cardID string, qty int) *bun.UpdateQuery {
	return db.NewUpdate().
		TableExpr(table).
		Set("quantity = quantity - ?", qty).
		Where("? = ?", bun.Ident(packColumn), packID).
		Where("card_id = ?", cardID).
		Where("quantity >= ?", qty)
}

func (r *txRepository) DecrementPrizePool(ctx context.Context, kind models.PoolKind, packID, cardID string, qty int) (bool, error) {
	table, packColumn, err := poolTable(kind)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(decrementPrizePoolQuery(r.tx, table, packColumn, packID, cardID, qty).Exec(ctx))
	if err != nil {
		return false, handleErrorWithID("decrement", table, cardID, err)
	}
	return n == 1, nil
}

func (r *txRepository) RestorePrizePool(ctx context.Context, cardID string, qty int) (bool, error) {
	for _, kind := range []models.PoolKind{models.PoolSpecial, models.PoolMystery} {
		table, packColumn, _ := poolTable(kind)

		var id string
		err := r.tx.NewSelect().
			TableExpr(table).
			Column("id").
			Where("card_id = ?", cardID).
			OrderExpr("?", bun.Ident(packColumn)).
			Limit(1).
			For("UPDATE").
			Scan(ctx, &id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return false, handleErrorWithID("restore", table, cardID, err)
		}

		_, err = r.tx.NewUpdate().
			TableExpr(table).
			Set("quantity = quantity + ?", qty).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return false, handleErrorWithID("restore", table, cardID, err)
		}
		return true, nil
	}
	return false, nil
}
