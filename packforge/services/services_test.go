package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/memstore"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/shopspring/decimal"
)

func TestAccountService_Ensure(t *testing.T) {
	store := memstore.New()
	existing := store.AddUser("", decimal.NewFromInt(25))
	svc, err := NewAccountService(store, 8)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		acc         Account
		wantCredits string
	}{
		{"new account", Account{UserID: "0b7f6c1e-3c52-4f0a-9d1e-6a6f1f1d2a10", Username: "ash"}, "0"},
		{"existing account keeps balance", Account{UserID: existing.ID, Username: "misty"}, "25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 2 {
				if err := svc.Ensure(context.Background(), tt.acc); err != nil {
					t.Fatal(err)
				}
			}
			u, ok := store.User(tt.acc.UserID)
			if !ok {
				t.Fatalf("user %s not created", tt.acc.UserID)
			}
			if !u.Credits.Equal(decimal.RequireFromString(tt.wantCredits)) {
				t.Errorf("credits = %s, want %s", u.Credits, tt.wantCredits)
			}
		})
	}

	if err := svc.Ensure(context.Background(), Account{}); err == nil {
		t.Error("Ensure() without user id succeeded")
	}
}

func TestNotificationService(t *testing.T) {
	store := memstore.New()
	svc := NewNotificationService(store)

	if err := svc.Notify(context.Background(), "u-1", models.NotificationRefundCompleted, "Refund completed", "3 cards"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.List(context.Background(), "u-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Type != models.NotificationRefundCompleted || got[0].IsRead {
		t.Errorf("List() = %+v", got)
	}
}

func TestSpacesService_CardImageURL(t *testing.T) {
	ctx := context.Background()
	public, err := NewSpacesService(ctx, SpacesConfig{Key: "k", Secret: "s", Region: "nyc3", Bucket: "cards", CardRoot: "/images/"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", ""},
		{"absolute url", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"bucket key", "/base/pikachu.png", "https://cards.nyc3.digitaloceanspaces.com/images/base/pikachu.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := public.CardImageURL(ctx, tt.key); got != tt.want {
				t.Errorf("CardImageURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	signed, err := NewSpacesService(ctx, SpacesConfig{Key: "k", Secret: "s", Region: "nyc3", Bucket: "cards", Presign: true})
	if err != nil {
		t.Fatal(err)
	}
	got := signed.CardImageURL(ctx, "base/pikachu.png")
	if !strings.Contains(got, "base/pikachu.png") || !strings.Contains(got, "X-Amz-Signature=") {
		t.Errorf("presigned URL = %q", got)
	}

	if _, err := NewSpacesService(ctx, SpacesConfig{Region: "nyc3"}); err == nil {
		t.Error("NewSpacesService() without bucket succeeded")
	}
}
