package config

import "time"

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	RefundJobTimeout    = 30 * time.Second
	AuditTimeout        = 2 * time.Minute
	ShutdownTimeout     = 10 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	// Cache settings
	PullRateCacheExpiration = 5 * time.Minute
	PullRateCacheSize       = 64
	AccountCacheSize        = 10000
	ImageURLExpiration      = 24 * time.Hour
)

// Pack composition
const (
	RegularCommonCount = 8
	PoolCommonCount    = 7
	PoolPackSize       = 8

	// Probabilities are percentages; a table must sum to 100 within this tolerance.
	RateSumTolerance = 0.01
)

// Game and refund limits
const (
	DefaultMaxBet        = 10000
	DefaultRefundWorkers = 2
	DefaultRefundQueue   = 64
	DefaultAuditDraws    = 100000
	MaxAuditDraws        = 5000000
	FeedLimit            = 50
	RecentTransactions   = 20
)

// Rate limiting
const (
	GamePlayRateLimit  = 30
	GamePlayRateWindow = time.Minute
)
