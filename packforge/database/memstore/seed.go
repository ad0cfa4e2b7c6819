package memstore

import (
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The helpers below write straight into committed state. They exist for
// fixtures and inspection, never for request paths.

func (s *Store) AddUser(id string, credits decimal.Decimal) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: newID(id), Credits: credits, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.state.users[u.ID] = u
	c := *u
	return &c
}

func (s *Store) AddCard(card models.InventoryCard) *models.InventoryCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	card.ID = newID(card.ID)
	card.IsActive = true
	touch(&card.CreatedAt)
	s.state.cards[card.ID] = &card
	c := card
	return &c
}

func (s *Store) AddPack(pack models.Pack) *models.Pack {
	s.mu.Lock()
	defer s.mu.Unlock()
	pack.ID = newID(pack.ID)
	if pack.Kind == "" {
		pack.Kind = models.PackKindRegular
	}
	touch(&pack.CreatedAt)
	s.state.packs[pack.ID] = copyPack(&pack)
	return copyPack(&pack)
}

func (s *Store) AddMysteryPack(pack models.MysteryPack) *models.MysteryPack {
	s.mu.Lock()
	defer s.mu.Unlock()
	pack.ID = newID(pack.ID)
	touch(&pack.CreatedAt)
	s.state.mysteryPacks[pack.ID] = &pack
	c := pack
	return &c
}

func (s *Store) AddPoolEntry(kind models.PoolKind, packID, cardID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case models.PoolSpecial:
		s.state.specialPool = append(s.state.specialPool, &models.SpecialPackCard{
			ID: uuid.NewString(), PackID: packID, CardID: cardID, Quantity: qty,
		})
	case models.PoolMystery:
		s.state.mysteryPool = append(s.state.mysteryPool, &models.MysteryPackCard{
			ID: uuid.NewString(), MysteryPackID: packID, CardID: cardID, Quantity: qty,
		})
	}
}

func (s *Store) AddUserPack(up models.UserPack) *models.UserPack {
	s.mu.Lock()
	defer s.mu.Unlock()
	up.ID = newID(up.ID)
	touch(&up.EarnedAt)
	s.state.userPacks[up.ID] = &up
	c := up
	return &c
}

func (s *Store) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) Card(id string) (models.InventoryCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.cards[id]
	if !ok {
		return models.InventoryCard{}, false
	}
	return *c, true
}

func (s *Store) Pack(id string) (models.Pack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.packs[id]
	if !ok {
		return models.Pack{}, false
	}
	return *copyPack(p), true
}

func (s *Store) UserPack(id string) (models.UserPack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.state.userPacks[id]
	if !ok {
		return models.UserPack{}, false
	}
	return *up, true
}

func (s *Store) UserPacks(userID string) []models.UserPack {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UserPack
	for _, up := range s.state.userPacks {
		if up.UserID == userID {
			out = append(out, *up)
		}
	}
	return out
}

func (s *Store) PoolQuantity(kind models.PoolKind, packID, cardID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case models.PoolSpecial:
		for _, row := range s.state.specialPool {
			if row.PackID == packID && row.CardID == cardID {
				return row.Quantity
			}
		}
	case models.PoolMystery:
		for _, row := range s.state.mysteryPool {
			if row.MysteryPackID == packID && row.CardID == cardID {
				return row.Quantity
			}
		}
	}
	return 0
}

// Holdings returns every holding of a user, including refunded and shipped ones.
func (s *Store) Holdings(userID string) []models.UserCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UserCard
	for _, h := range s.state.holdings {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out
}

func (s *Store) Transactions(userID string) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.state.transactions {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out
}

func (s *Store) Feed() []models.GlobalFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.GlobalFeed, 0, len(s.state.feed))
	for _, f := range s.state.feed {
		out = append(out, *f)
	}
	return out
}

func (s *Store) GameSessions(userID string) []models.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GameSession
	for _, gs := range s.state.sessions {
		if gs.UserID == userID {
			out = append(out, *gs)
		}
	}
	return out
}

func (s *Store) Notifications(userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.state.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}
