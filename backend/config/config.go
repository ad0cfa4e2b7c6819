package config

import (
	"time"

	"github.com/ellavondegurechaff/packforge/packforge"
)

// WebAppConfig contains web-specific configuration
type WebAppConfig struct {
	Config      *packforge.Config
	Debug       bool
	Environment string
}

// NewWebAppConfig creates a new web app configuration
func NewWebAppConfig(cfg *packforge.Config) *WebAppConfig {
	environment := "production"
	if cfg.Web.Debug {
		environment = "development"
	}

	return &WebAppConfig{
		Config:      cfg,
		Debug:       cfg.Web.Debug,
		Environment: environment,
	}
}

func (w *WebAppConfig) GetWebConfig() packforge.WebConfig {
	return w.Config.Web
}

func (w *WebAppConfig) GetAuthConfig() packforge.AuthConfig {
	return w.Config.Auth
}

// TokenTTL is the lifetime of issued bearer tokens.
func (w *WebAppConfig) TokenTTL() time.Duration {
	hours := w.Config.Auth.TokenTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// RefundsAsync reports whether refunds are queued instead of run inline.
func (w *WebAppConfig) RefundsAsync() bool {
	return w.Config.Refund.Async
}
