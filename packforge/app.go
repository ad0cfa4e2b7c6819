package packforge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ellavondegurechaff/packforge/packforge/database"
	"github.com/ellavondegurechaff/packforge/packforge/database/memstore"
	"github.com/ellavondegurechaff/packforge/packforge/database/repositories"
	"github.com/ellavondegurechaff/packforge/packforge/economy/games"
	"github.com/ellavondegurechaff/packforge/packforge/economy/ledger"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/ellavondegurechaff/packforge/packforge/economy/packs"
	"github.com/ellavondegurechaff/packforge/packforge/economy/vault"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/ellavondegurechaff/packforge/packforge/services"
)

// App holds the wired economy services.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB    *database.DB
	Store interfaces.Store

	Ledger        *ledger.Ledger
	Rates         *odds.Table
	Opener        *packs.Opener
	Vault         *vault.Service
	Refunds       *vault.RefundQueue
	Games         *games.Service
	Accounts      *services.AccountService
	Notifications *services.NotificationService
	Feed          *services.FeedService
	Spaces        *services.SpacesService
}

// New connects the configured store and wires every service on top of it.
func New(ctx context.Context, cfg Config, version, commit string) (*App, error) {
	var (
		db    *database.DB
		store interfaces.Store
	)
	switch cfg.DB.Driver {
	case DriverMemory:
		slog.Warn("Using in-memory store, data is lost on exit", slog.String("type", "db"))
		store = memstore.New()
	default:
		var err error
		db, err = database.New(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		store = repositories.NewStore(db.BunDB(), repositories.StandardTransactionOptions())
	}

	app, err := NewWithStore(ctx, cfg, store)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}
	app.DB = db
	app.Version = version
	app.Commit = commit

	if cfg.DB.Driver == DriverMemory {
		if err := app.Rates.SeedDefaults(ctx); err != nil {
			return nil, err
		}
	}
	return app, nil
}

func NewWithStore(ctx context.Context, cfg Config, store interfaces.Store) (*App, error) {
	rates, err := odds.NewTable(store, cfg.Odds)
	if err != nil {
		return nil, err
	}
	accounts, err := services.NewAccountService(store, 0)
	if err != nil {
		return nil, err
	}

	app := &App{
		Cfg:           cfg,
		Store:         store,
		Ledger:        ledger.New(store),
		Rates:         rates,
		Accounts:      accounts,
		Notifications: services.NewNotificationService(store),
		Feed:          services.NewFeedService(store),
	}

	var images packs.ImageResolver
	if cfg.Spaces.Bucket != "" {
		spaces, err := services.NewSpacesService(ctx, cfg.Spaces)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize spaces: %w", err)
		}
		app.Spaces = spaces
		images = spaces
	}

	selector := odds.NewSelector(nil)
	app.Opener = packs.NewOpener(store, app.Ledger, rates, selector, images)
	app.Vault = vault.NewService(store, app.Ledger)
	app.Refunds = vault.NewRefundQueue(app.Vault, app.Notifications, cfg.Refund)
	app.Games = games.NewService(store, app.Ledger, games.NewMapper(selector), cfg.Games)
	return app, nil
}

// Start launches the background refund workers.
func (a *App) Start(ctx context.Context) {
	a.Refunds.Start(ctx)
}

func (a *App) Close(ctx context.Context) error {
	err := a.Refunds.Stop(ctx)
	if a.DB != nil {
		a.DB.Close()
	}
	return err
}
