package odds

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

type cachedRates struct {
	rates     []Rate
	timestamp time.Time
}

// Table reads and writes pull-rate tables. Reads outside a unit of work are
// served from an LRU cache that Set invalidates.
type Table struct {
	store interfaces.Store
	cache *lru.Cache
	ttl   time.Duration
	group singleflight.Group
}

type TableConfig struct {
	CacheSize int           `toml:"cache_size"`
	// CacheTTL is in seconds.
	CacheTTL int `toml:"cache_ttl"`
}

func NewTable(store interfaces.Store, cfg TableConfig) (*Table, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = config.PullRateCacheSize
	}
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = config.PullRateCacheExpiration
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull rate cache: %w", err)
	}
	return &Table{store: store, cache: cache, ttl: ttl}, nil
}

// Get returns the active rates of packType ordered by tier.
func (t *Table) Get(ctx context.Context, packType string) ([]Rate, error) {
	if v, ok := t.cache.Get(packType); ok {
		cached := v.(cachedRates)
		if time.Since(cached.timestamp) < t.ttl {
			return copyRates(cached.rates), nil
		}
		t.cache.Remove(packType)
	}

	v, err, _ := t.group.Do(packType, func() (any, error) {
		var rates []Rate
		err := t.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
			var err error
			rates, err = t.GetTx(ctx, tx, packType)
			return err
		})
		if err != nil {
			return nil, err
		}
		t.cache.Add(packType, cachedRates{rates: rates, timestamp: time.Now()})
		return rates, nil
	})
	if err != nil {
		return nil, err
	}
	return copyRates(v.([]Rate)), nil
}

// GetTx reads the active rates inside an open unit of work, bypassing the cache.
func (t *Table) GetTx(ctx context.Context, tx interfaces.Tx, packType string) ([]Rate, error) {
	rows, err := tx.ActivePullRates(ctx, packType)
	if err != nil {
		return nil, fmt.Errorf("failed to load pull rates for %s: %w", packType, err)
	}
	return FromModels(rows), nil
}

// Set atomically replaces the active table of packType.
func (t *Table) Set(ctx context.Context, packType string, rates []Rate) error {
	if packType == "" {
		return fmt.Errorf("pack type is required")
	}
	if err := Validate(rates); err != nil {
		return err
	}

	err := t.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		return tx.ReplacePullRates(ctx, packType, toModels(packType, rates))
	})
	t.cache.Remove(packType)
	if err != nil {
		return fmt.Errorf("failed to replace pull rates for %s: %w", packType, err)
	}

	slog.Info("Pull rates updated",
		slog.String("pack_type", packType),
		slog.Int("tiers", len(rates)),
	)
	return nil
}

// SeedDefaults installs DefaultRates for every pack type that has no active table.
func (t *Table) SeedDefaults(ctx context.Context) error {
	seeded := 0
	err := t.store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		for _, packType := range models.PackTypes {
			existing, err := tx.ActivePullRates(ctx, packType)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				continue
			}
			if err := tx.ReplacePullRates(ctx, packType, toModels(packType, DefaultRates[packType])); err != nil {
				return err
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed pull rates: %w", err)
	}
	t.cache.Purge()
	if seeded > 0 {
		slog.Info("Default pull rates seeded", slog.Int("pack_types", seeded))
	}
	return nil
}

func toModels(packType string, rates []Rate) []*models.PullRate {
	rows := make([]*models.PullRate, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, &models.PullRate{
			ID:          uuid.NewString(),
			PackType:    packType,
			CardTier:    r.Tier,
			Probability: r.Probability,
			IsActive:    true,
		})
	}
	return rows
}

func copyRates(rates []Rate) []Rate {
	out := make([]Rate, len(rates))
	copy(out, rates)
	return out
}
