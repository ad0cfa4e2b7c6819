package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/ellavondegurechaff/packforge/internal/domain/logger"
	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	// Driver is "postgres" (default) or "memory".
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	SSLMode      string `toml:"ssl_mode"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
	LogQueries   bool   `toml:"log_queries"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		var conn net.Conn
		conn, err = net.DialTimeout("tcp", addr, config.NetworkDialTimeout)
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(buildConnString(cfg))))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	if cfg.LogQueries {
		bunDB.AddQueryHook(logger.NewQueryHook())
	}

	return &DB{pool: pool, bunDB: bunDB}, nil
}

func buildConnString(cfg DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ql := logger.NewQueryLogger("exec", sql, args...)
	result, err := db.pool.Exec(ctx, sql, args...)
	ql.Log(err, result.RowsAffected())
	return result, err
}

// idx_user_cards_active_unique backs the holding upsert; it replaces the
// non-unique idx_user_cards_active of older schemas.
var schemaIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_inventory_cards_tier ON inventory_cards(tier) WHERE is_active;",
	"CREATE INDEX IF NOT EXISTS idx_packs_type ON packs(type, kind) WHERE is_active;",
	"CREATE INDEX IF NOT EXISTS idx_mystery_packs_type ON mystery_packs(pack_type) WHERE is_active;",
	"CREATE INDEX IF NOT EXISTS idx_special_pack_cards_card ON special_pack_cards(card_id);",
	"CREATE INDEX IF NOT EXISTS idx_mystery_pack_cards_card ON mystery_pack_cards(card_id);",
	"CREATE INDEX IF NOT EXISTS idx_pull_rates_active ON pull_rates(pack_type) WHERE is_active;",
	"CREATE INDEX IF NOT EXISTS idx_user_packs_unopened ON user_packs(user_id) WHERE NOT is_opened;",
	"DROP INDEX IF EXISTS idx_user_cards_active;",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_user_cards_active_unique ON user_cards(user_id, card_id) WHERE NOT is_refunded AND NOT is_shipped;",
	"CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at DESC);",
	"CREATE INDEX IF NOT EXISTS idx_global_feed_created ON global_feed(created_at DESC);",
	"CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);",
}

var schemaChecks = []string{
	"ALTER TABLE users DROP CONSTRAINT IF EXISTS users_credits_non_negative;",
	"ALTER TABLE users ADD CONSTRAINT users_credits_non_negative CHECK (credits >= 0);",
	"ALTER TABLE special_pack_cards DROP CONSTRAINT IF EXISTS special_pack_cards_quantity_non_negative;",
	"ALTER TABLE special_pack_cards ADD CONSTRAINT special_pack_cards_quantity_non_negative CHECK (quantity >= 0);",
	"ALTER TABLE mystery_pack_cards DROP CONSTRAINT IF EXISTS mystery_pack_cards_quantity_non_negative;",
	"ALTER TABLE mystery_pack_cards ADD CONSTRAINT mystery_pack_cards_quantity_non_negative CHECK (quantity >= 0);",
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []any{
		(*models.User)(nil),
		(*models.InventoryCard)(nil),
		(*models.Pack)(nil),
		(*models.MysteryPack)(nil),
		(*models.SpecialPackCard)(nil),
		(*models.MysteryPackCard)(nil),
		(*models.PullRate)(nil),
		(*models.UserPack)(nil),
		(*models.UserCard)(nil),
		(*models.Transaction)(nil),
		(*models.GlobalFeed)(nil),
		(*models.GameSession)(nil),
		(*models.Notification)(nil),
	}

	for _, model := range tables {
		if _, err := db.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, stmt := range append(append([]string{}, schemaIndexes...), schemaChecks...) {
		if _, err := db.ExecWithLog(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)),
		slog.Int("indexes", len(schemaIndexes)),
	)
	return nil
}
