package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is wrapped by every repository lookup that matched no row.
var ErrNotFound = errors.New("record not found")

// Store runs units of work. Everything fn does through tx commits together
// when fn returns nil and is rolled back otherwise.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the set of repository operations available inside a unit of work.
// Lock* methods take row locks held until the unit of work ends.
type Tx interface {
	UserRepository
	CatalogRepository
	PackRepository
	PoolRepository
	VaultRepository
	ActivityRepository
}

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	LockUser(ctx context.Context, userID string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	// DeductCredits subtracts amount only when the balance covers it and
	// reports whether a row was updated.
	DeductCredits(ctx context.Context, userID string, amount decimal.Decimal) (bool, error)
	AddCredits(ctx context.Context, userID string, amount decimal.Decimal) error
	SetCredits(ctx context.Context, userID string, amount decimal.Decimal) error
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
}

type CatalogRepository interface {
	CardsByTier(ctx context.Context, tier models.Tier) ([]*models.InventoryCard, error)
	GetCards(ctx context.Context, ids []string) ([]*models.InventoryCard, error)
	// DecrementCardStock reduces stock by qty only when enough remains.
	DecrementCardStock(ctx context.Context, cardID string, qty int) (bool, error)
	ActivePullRates(ctx context.Context, packType string) ([]*models.PullRate, error)
	ReplacePullRates(ctx context.Context, packType string, rates []*models.PullRate) error
	CountPullRates(ctx context.Context) (int, error)
}

type PackRepository interface {
	GetPack(ctx context.Context, packID string) (*models.Pack, error)
	LockPack(ctx context.Context, packID string) (*models.Pack, error)
	ActivePackByType(ctx context.Context, packType string) (*models.Pack, error)
	// DecrementPackStock consumes one unit of a capped pack and returns the
	// units left; false when none remained.
	DecrementPackStock(ctx context.Context, packID string) (int, bool, error)
	GetMysteryPack(ctx context.Context, id string) (*models.MysteryPack, error)
	ActiveMysteryPackByType(ctx context.Context, packType string) (*models.MysteryPack, error)

	LockUnopenedUserPack(ctx context.Context, id, userID string) (*models.UserPack, error)
	MarkUserPackOpened(ctx context.Context, id string, at time.Time) error
	InsertUserPack(ctx context.Context, up *models.UserPack) error
	ListUnopenedUserPacks(ctx context.Context, userID string) ([]*models.UserPack, error)
}

type PoolRepository interface {
	// LockPrizePool locks every pool row of a pack and returns them with cards loaded.
	LockPrizePool(ctx context.Context, kind models.PoolKind, packID string) ([]*models.PoolEntry, error)
	DecrementPrizePool(ctx context.Context, kind models.PoolKind, packID, cardID string, qty int) (bool, error)
	// RestorePrizePool returns qty copies of a card to the first classic pool
	// row holding it, else the first mystery pool row. False when neither exists.
	RestorePrizePool(ctx context.Context, cardID string, qty int) (bool, error)
}

type VaultRepository interface {
	// UpsertHolding adds uc.Quantity to the active holding of (uc.UserID,
	// uc.CardID), keeping its pull value, or inserts uc when none exists.
	// uc.ID is set to the id of the row written.
	UpsertHolding(ctx context.Context, uc *models.UserCard) error
	// LockActiveHoldings returns the subset of ids owned by userID that are
	// neither refunded nor shipped.
	LockActiveHoldings(ctx context.Context, userID string, ids []string) ([]*models.UserCard, error)
	MarkHoldingsRefunded(ctx context.Context, ids []string, at time.Time) error
	MarkHoldingsShipped(ctx context.Context, ids []string, at time.Time) error
	ListActiveHoldings(ctx context.Context, userID string) ([]*models.UserCard, error)
}

type ActivityRepository interface {
	InsertFeedEntry(ctx context.Context, f *models.GlobalFeed) error
	RecentFeed(ctx context.Context, limit int) ([]*models.GlobalFeed, error)
	InsertGameSession(ctx context.Context, s *models.GameSession) error
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
}
