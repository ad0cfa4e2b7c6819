package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ellavondegurechaff/packforge/backend/config"
	"github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/packforge"
)

func newTokenService(t *testing.T, secret string, ttlHours int) *TokenService {
	t.Helper()
	cfg := packforge.DefaultConfig()
	cfg.Auth.Secret = secret
	cfg.Auth.TokenTTLHours = ttlHours
	svc, err := NewTokenService(config.NewWebAppConfig(&cfg))
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTokenService(t, "s3cret", 1)
	token, err := svc.Generate(&models.UserSession{UserID: "u-1", Username: "ash", IsAdmin: true})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u-1" || got.Username != "ash" || !got.IsAdmin || got.ExpiresAt.IsZero() {
		t.Errorf("Parse() = %+v", got)
	}
}

func TestTokenService_Parse_Rejects(t *testing.T) {
	svc := newTokenService(t, "s3cret", 1)
	other := newTokenService(t, "other", 1)
	foreign, err := other.Generate(&models.UserSession{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	expired := newTokenService(t, "s3cret", 1)
	expired.ttl = -time.Hour
	stale, err := expired.Generate(&models.UserSession{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", stale, ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Parse(tt.token); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v, want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
