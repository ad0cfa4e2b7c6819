// Package memstore is an in-process implementation of interfaces.Store.
//
// Units of work are serialized behind one mutex and run against a private
// copy of the data that replaces the committed state only when the unit of
// work succeeds. Row locks are therefore implicit.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	users         map[string]*models.User
	cards         map[string]*models.InventoryCard
	packs         map[string]*models.Pack
	mysteryPacks  map[string]*models.MysteryPack
	specialPool   []*models.SpecialPackCard
	mysteryPool   []*models.MysteryPackCard
	pullRates     []*models.PullRate
	userPacks     map[string]*models.UserPack
	holdings      []*models.UserCard
	transactions  []*models.Transaction
	feed          []*models.GlobalFeed
	sessions      []*models.GameSession
	notifications []*models.Notification
}

func newState() *state {
	return &state{
		users:        make(map[string]*models.User),
		cards:        make(map[string]*models.InventoryCard),
		packs:        make(map[string]*models.Pack),
		mysteryPacks: make(map[string]*models.MysteryPack),
		userPacks:    make(map[string]*models.UserPack),
	}
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func cloneSlice[T any](s []*T) []*T {
	out := make([]*T, len(s))
	for i, v := range s {
		c := *v
		out[i] = &c
	}
	return out
}

// copyPack detaches the TotalPacks counter from the stored pack.
func copyPack(p *models.Pack) *models.Pack {
	c := *p
	if p.TotalPacks != nil {
		n := *p.TotalPacks
		c.TotalPacks = &n
	}
	return &c
}

func (s *state) clone() *state {
	packs := make(map[string]*models.Pack, len(s.packs))
	for id, p := range s.packs {
		packs[id] = copyPack(p)
	}
	return &state{
		users:         cloneMap(s.users),
		cards:         cloneMap(s.cards),
		packs:         packs,
		mysteryPacks:  cloneMap(s.mysteryPacks),
		specialPool:   cloneSlice(s.specialPool),
		mysteryPool:   cloneSlice(s.mysteryPool),
		pullRates:     cloneSlice(s.pullRates),
		userPacks:     cloneMap(s.userPacks),
		holdings:      cloneSlice(s.holdings),
		transactions:  cloneSlice(s.transactions),
		feed:          cloneSlice(s.feed),
		sessions:      cloneSlice(s.sessions),
		notifications: cloneSlice(s.notifications),
	}
}

type Store struct {
	mu    sync.Mutex
	state *state
}

var _ interfaces.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.state = work
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

type tx struct {
	st *state
}

var _ interfaces.Tx = (*tx)(nil)

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, interfaces.ErrNotFound)
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func touch(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// users

func (t *tx) GetUser(_ context.Context, userID string) (*models.User, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	c := *u
	return &c, nil
}

func (t *tx) LockUser(ctx context.Context, userID string) (*models.User, error) {
	return t.GetUser(ctx, userID)
}

func (t *tx) InsertUser(_ context.Context, user *models.User) error {
	user.ID = newID(user.ID)
	if _, ok := t.st.users[user.ID]; ok {
		return nil
	}
	touch(&user.CreatedAt)
	touch(&user.UpdatedAt)
	c := *user
	t.st.users[user.ID] = &c
	return nil
}

func (t *tx) DeductCredits(_ context.Context, userID string, amount decimal.Decimal) (bool, error) {
	u, ok := t.st.users[userID]
	if !ok || u.Credits.LessThan(amount) {
		return false, nil
	}
	u.Credits = u.Credits.Sub(amount)
	u.TotalSpent = u.TotalSpent.Add(amount)
	u.UpdatedAt = time.Now()
	return true, nil
}

func (t *tx) AddCredits(_ context.Context, userID string, amount decimal.Decimal) error {
	u, ok := t.st.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.Credits = u.Credits.Add(amount)
	u.UpdatedAt = time.Now()
	return nil
}

func (t *tx) SetCredits(_ context.Context, userID string, amount decimal.Decimal) error {
	u, ok := t.st.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.Credits = amount
	u.UpdatedAt = time.Now()
	return nil
}

func (t *tx) InsertTransaction(_ context.Context, tr *models.Transaction) error {
	tr.ID = newID(tr.ID)
	touch(&tr.CreatedAt)
	c := *tr
	t.st.transactions = append(t.st.transactions, &c)
	return nil
}

func (t *tx) ListTransactions(_ context.Context, userID string, limit int) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for i := len(t.st.transactions) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if tr := t.st.transactions[i]; tr.UserID == userID {
			c := *tr
			out = append(out, &c)
		}
	}
	return out, nil
}

// catalog

func (t *tx) CardsByTier(_ context.Context, tier models.Tier) ([]*models.InventoryCard, error) {
	var out []*models.InventoryCard
	for _, c := range t.st.cards {
		if c.Tier == tier && c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) GetCards(_ context.Context, ids []string) ([]*models.InventoryCard, error) {
	var out []*models.InventoryCard
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := t.st.cards[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (t *tx) DecrementCardStock(_ context.Context, cardID string, qty int) (bool, error) {
	c, ok := t.st.cards[cardID]
	if !ok || c.Stock < qty {
		return false, nil
	}
	c.Stock -= qty
	return true, nil
}

func (t *tx) ActivePullRates(_ context.Context, packType string) ([]*models.PullRate, error) {
	var out []*models.PullRate
	for _, r := range t.st.pullRates {
		if r.PackType == packType && r.IsActive {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (t *tx) ReplacePullRates(_ context.Context, packType string, rates []*models.PullRate) error {
	for _, r := range t.st.pullRates {
		if r.PackType == packType {
			r.IsActive = false
		}
	}
	for _, r := range rates {
		r.ID = newID(r.ID)
		touch(&r.CreatedAt)
		c := *r
		t.st.pullRates = append(t.st.pullRates, &c)
	}
	return nil
}

func (t *tx) CountPullRates(context.Context) (int, error) {
	n := 0
	for _, r := range t.st.pullRates {
		if r.IsActive {
			n++
		}
	}
	return n, nil
}

// packs

func (t *tx) GetPack(_ context.Context, packID string) (*models.Pack, error) {
	p, ok := t.st.packs[packID]
	if !ok {
		return nil, notFound("pack", packID)
	}
	return copyPack(p), nil
}

func (t *tx) LockPack(ctx context.Context, packID string) (*models.Pack, error) {
	return t.GetPack(ctx, packID)
}

func (t *tx) ActivePackByType(_ context.Context, packType string) (*models.Pack, error) {
	var best *models.Pack
	for _, p := range t.st.packs {
		if p.Type != packType || p.Kind != models.PackKindRegular || !p.IsActive {
			continue
		}
		if best == nil || p.CreatedAt.Before(best.CreatedAt) || (p.CreatedAt.Equal(best.CreatedAt) && p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, notFound("pack", packType)
	}
	return copyPack(best), nil
}

func (t *tx) DecrementPackStock(_ context.Context, packID string) (int, bool, error) {
	p, ok := t.st.packs[packID]
	if !ok || p.TotalPacks == nil || *p.TotalPacks <= 0 {
		return 0, false, nil
	}
	*p.TotalPacks--
	return *p.TotalPacks, true, nil
}

func (t *tx) GetMysteryPack(_ context.Context, id string) (*models.MysteryPack, error) {
	p, ok := t.st.mysteryPacks[id]
	if !ok {
		return nil, notFound("mystery_pack", id)
	}
	c := *p
	return &c, nil
}

func (t *tx) ActiveMysteryPackByType(_ context.Context, packType string) (*models.MysteryPack, error) {
	var best *models.MysteryPack
	for _, p := range t.st.mysteryPacks {
		if p.PackType != packType || !p.IsActive {
			continue
		}
		if best == nil || p.CreatedAt.Before(best.CreatedAt) || (p.CreatedAt.Equal(best.CreatedAt) && p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, notFound("mystery_pack", packType)
	}
	c := *best
	return &c, nil
}

func (t *tx) LockUnopenedUserPack(_ context.Context, id, userID string) (*models.UserPack, error) {
	up, ok := t.st.userPacks[id]
	if !ok || up.UserID != userID || up.IsOpened {
		return nil, notFound("user_pack", id)
	}
	c := *up
	return &c, nil
}

func (t *tx) MarkUserPackOpened(_ context.Context, id string, at time.Time) error {
	up, ok := t.st.userPacks[id]
	if !ok {
		return notFound("user_pack", id)
	}
	up.IsOpened = true
	up.OpenedAt = &at
	return nil
}

func (t *tx) InsertUserPack(_ context.Context, up *models.UserPack) error {
	up.ID = newID(up.ID)
	touch(&up.EarnedAt)
	c := *up
	t.st.userPacks[up.ID] = &c
	return nil
}

func (t *tx) ListUnopenedUserPacks(_ context.Context, userID string) ([]*models.UserPack, error) {
	var out []*models.UserPack
	for _, up := range t.st.userPacks {
		if up.UserID == userID && !up.IsOpened {
			c := *up
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

// prize pools

func (t *tx) LockPrizePool(_ context.Context, kind models.PoolKind, packID string) ([]*models.PoolEntry, error) {
	var entries []*models.PoolEntry
	add := func(cardID string, qty int) {
		card, ok := t.st.cards[cardID]
		if !ok {
			return
		}
		c := *card
		entries = append(entries, &models.PoolEntry{Kind: kind, PackID: packID, CardID: cardID, Quantity: qty, Card: &c})
	}
	switch kind {
	case models.PoolSpecial:
		for _, row := range t.st.specialPool {
			if row.PackID == packID {
				add(row.CardID, row.Quantity)
			}
		}
	case models.PoolMystery:
		for _, row := range t.st.mysteryPool {
			if row.MysteryPackID == packID {
				add(row.CardID, row.Quantity)
			}
		}
	default:
		return nil, fmt.Errorf("unknown prize pool kind %q", kind)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CardID < entries[j].CardID })
	return entries, nil
}

func (t *tx) DecrementPrizePool(_ context.Context, kind models.PoolKind, packID, cardID string, qty int) (bool, error) {
	switch kind {
	case models.PoolSpecial:
		for _, row := range t.st.specialPool {
			if row.PackID == packID && row.CardID == cardID {
				if row.Quantity < qty {
					return false, nil
				}
				row.Quantity -= qty
				return true, nil
			}
		}
	case models.PoolMystery:
		for _, row := range t.st.mysteryPool {
			if row.MysteryPackID == packID && row.CardID == cardID {
				if row.Quantity < qty {
					return false, nil
				}
				row.Quantity -= qty
				return true, nil
			}
		}
	default:
		return false, fmt.Errorf("unknown prize pool kind %q", kind)
	}
	return false, nil
}

func (t *tx) RestorePrizePool(_ context.Context, cardID string, qty int) (bool, error) {
	var special *models.SpecialPackCard
	for _, row := range t.st.specialPool {
		if row.CardID == cardID && (special == nil || row.PackID < special.PackID) {
			special = row
		}
	}
	if special != nil {
		special.Quantity += qty
		return true, nil
	}

	var mystery *models.MysteryPackCard
	for _, row := range t.st.mysteryPool {
		if row.CardID == cardID && (mystery == nil || row.MysteryPackID < mystery.MysteryPackID) {
			mystery = row
		}
	}
	if mystery != nil {
		mystery.Quantity += qty
		return true, nil
	}
	return false, nil
}

// vault

func (t *tx) holding(id string) *models.UserCard {
	for _, h := range t.st.holdings {
		if h.ID == id {
			return h
		}
	}
	return nil
}

func (t *tx) UpsertHolding(_ context.Context, uc *models.UserCard) error {
	for _, h := range t.st.holdings {
		if h.UserID == uc.UserID && h.CardID == uc.CardID && h.Active() {
			h.Quantity += uc.Quantity
			uc.ID = h.ID
			return nil
		}
	}
	uc.ID = newID(uc.ID)
	touch(&uc.PulledAt)
	c := *uc
	c.Card = nil
	t.st.holdings = append(t.st.holdings, &c)
	return nil
}

func (t *tx) LockActiveHoldings(_ context.Context, userID string, ids []string) ([]*models.UserCard, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*models.UserCard
	for _, h := range t.st.holdings {
		if wanted[h.ID] && h.UserID == userID && h.Active() {
			c := *h
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) MarkHoldingsRefunded(_ context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		if h := t.holding(id); h != nil {
			h.IsRefunded = true
			h.RefundedAt = &at
		}
	}
	return nil
}

func (t *tx) MarkHoldingsShipped(_ context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		if h := t.holding(id); h != nil {
			h.IsShipped = true
			h.ShippedAt = &at
		}
	}
	return nil
}

func (t *tx) ListActiveHoldings(_ context.Context, userID string) ([]*models.UserCard, error) {
	var out []*models.UserCard
	for i := len(t.st.holdings) - 1; i >= 0; i-- {
		h := t.st.holdings[i]
		if h.UserID != userID || !h.Active() {
			continue
		}
		c := *h
		if card, ok := t.st.cards[h.CardID]; ok {
			cc := *card
			c.Card = &cc
		}
		out = append(out, &c)
	}
	return out, nil
}

// activity

func (t *tx) InsertFeedEntry(_ context.Context, f *models.GlobalFeed) error {
	f.ID = newID(f.ID)
	touch(&f.CreatedAt)
	c := *f
	t.st.feed = append(t.st.feed, &c)
	return nil
}

func (t *tx) RecentFeed(_ context.Context, limit int) ([]*models.GlobalFeed, error) {
	var out []*models.GlobalFeed
	for i := len(t.st.feed) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		c := *t.st.feed[i]
		out = append(out, &c)
	}
	return out, nil
}

func (t *tx) InsertGameSession(_ context.Context, s *models.GameSession) error {
	s.ID = newID(s.ID)
	touch(&s.CreatedAt)
	c := *s
	t.st.sessions = append(t.st.sessions, &c)
	return nil
}

func (t *tx) InsertNotification(_ context.Context, n *models.Notification) error {
	n.ID = newID(n.ID)
	touch(&n.CreatedAt)
	c := *n
	t.st.notifications = append(t.st.notifications, &c)
	return nil
}

func (t *tx) ListNotifications(_ context.Context, userID string, limit int) ([]*models.Notification, error) {
	var out []*models.Notification
	for i := len(t.st.notifications) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if n := t.st.notifications[i]; n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}
