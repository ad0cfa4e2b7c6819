package packforge

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/ellavondegurechaff/packforge/packforge/database"
	"github.com/ellavondegurechaff/packforge/packforge/economy/games"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/ellavondegurechaff/packforge/packforge/economy/vault"
	"github.com/ellavondegurechaff/packforge/packforge/services"
	"github.com/pelletier/go-toml/v2"
)

// LoadConfig reads a TOML file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: slog.LevelInfo},
		DB: database.DBConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			Database: "packforge",
			SSLMode:  "disable",
			PoolSize: 10,
		},
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			AllowOrigins: "http://localhost:3000",
			RateLimit:    config.GamePlayRateLimit,
		},
		Auth: AuthConfig{
			Issuer:        "packforge",
			TokenTTLHours: 24,
		},
		Games: games.Config{
			TrustClientResults: true,
			MaxBet:             config.DefaultMaxBet,
		},
		Refund: vault.QueueConfig{
			Workers:   config.DefaultRefundWorkers,
			QueueSize: config.DefaultRefundQueue,
		},
		Odds: odds.TableConfig{
			CacheSize: config.PullRateCacheSize,
		},
	}
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Log    LogConfig             `toml:"log"`
	DB     database.DBConfig     `toml:"db"`
	Web    WebConfig             `toml:"web"`
	Auth   AuthConfig            `toml:"auth"`
	Spaces services.SpacesConfig `toml:"spaces"`
	Games  games.Config          `toml:"games"`
	Refund vault.QueueConfig     `toml:"refund"`
	Odds   odds.TableConfig      `toml:"odds"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	AllowOrigins string `toml:"allow_origins"`
	// RateLimit caps game plays per user per minute.
	RateLimit int  `toml:"rate_limit"`
	Debug     bool `toml:"debug"`
}

type AuthConfig struct {
	Secret        string `toml:"secret"`
	Issuer        string `toml:"issuer"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if c.Games.MaxBet <= 0 {
		return fmt.Errorf("games.max_bet must be positive")
	}
	return nil
}
