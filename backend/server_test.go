package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ellavondegurechaff/packforge/backend/handlers"
	webmodels "github.com/ellavondegurechaff/packforge/backend/models"
	"github.com/ellavondegurechaff/packforge/packforge"
	"github.com/ellavondegurechaff/packforge/packforge/database/memstore"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type testServer struct {
	app   *fiber.App
	web   *handlers.WebApp
	store *memstore.Store
	user  *models.User
	token string
	admin string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := packforge.DefaultConfig()
	cfg.DB.Driver = packforge.DriverMemory
	cfg.Auth.Secret = "test-secret"

	store := memstore.New()
	core, err := packforge.NewWithStore(context.Background(), cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	if err := core.Rates.SeedDefaults(context.Background()); err != nil {
		t.Fatal(err)
	}
	web, err := handlers.NewWebApp(core)
	if err != nil {
		t.Fatal(err)
	}

	s := &testServer{
		app:   NewServer(web),
		web:   web,
		store: store,
		user:  store.AddUser("", decimal.NewFromInt(10)),
	}
	s.token = s.issue(t, s.user.ID, false)
	s.admin = s.issue(t, store.AddUser("", decimal.Zero).ID, true)
	return s
}

func (s *testServer) issue(t *testing.T, userID string, admin bool) string {
	t.Helper()
	token, err := s.web.Tokens.Generate(&webmodels.UserSession{UserID: userID, IsAdmin: admin})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func (s *testServer) seedCatalog() {
	for _, tier := range models.Tiers {
		s.store.AddCard(models.InventoryCard{Name: "Card " + string(tier), Tier: tier, Credits: decimal.NewFromInt(1), Stock: 5})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Errorf("GET /health = %d %v", status, body)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodGet, "/api/credits", tt.token, nil)
			if status != http.StatusUnauthorized || body["success"] != false {
				t.Errorf("GET /api/credits = %d %v", status, body)
			}
		})
	}
}

func TestAuthRequired_ProvisionsNewAccount(t *testing.T) {
	s := newTestServer(t)
	token := s.issue(t, "5d0e8f0c-6a3e-4e7c-9b1f-3c2a4b5d6e7f", false)

	status, body := s.do(t, http.MethodGet, "/api/credits", token, nil)
	if status != http.StatusOK {
		t.Fatalf("GET /api/credits = %d %v", status, body)
	}
	if _, ok := s.store.User("5d0e8f0c-6a3e-4e7c-9b1f-3c2a4b5d6e7f"); !ok {
		t.Error("account was not provisioned")
	}
}

func TestDeductCredits(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name       string
		amount     string
		wantStatus int
		wantMsg    string
	}{
		{"covered", "4", http.StatusOK, "Credits deducted"},
		{"insufficient", "100", http.StatusBadRequest, "Insufficient credits"},
		{"invalid amount", "-1", http.StatusBadRequest, "Validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/api/credits/deduct", s.token, map[string]any{
				"amount": json.Number(tt.amount),
				"reason": "test",
			})
			if status != tt.wantStatus || body["message"] != tt.wantMsg {
				t.Errorf("POST /api/credits/deduct = %d %v", status, body)
			}
		})
	}

	user, _ := s.store.User(s.user.ID)
	if !user.Credits.Equal(decimal.NewFromInt(6)) {
		t.Errorf("credits = %s, want 6", user.Credits)
	}
}

func TestPlayGame_AwardsOpenablePack(t *testing.T) {
	s := newTestServer(t)
	s.seedCatalog()
	s.store.AddPack(models.Pack{Name: "Poke Ball", Type: models.PackTypePokeball, IsActive: true})

	status, body := s.do(t, http.MethodPost, "/api/games/play", s.token, map[string]any{
		"gameType":     "plinko",
		"betAmount":    2,
		"plinkoResult": "pokeball",
	})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("POST /api/games/play = %d %v", status, body)
	}
	result, _ := body["result"].(map[string]any)
	if result["tier"] != "pokeball" || result["gameType"] != "plinko" || body["sessionId"] == "" {
		t.Errorf("play response = %v", body)
	}

	status, body = s.do(t, http.MethodGet, "/api/packs", s.token, nil)
	packs, _ := body["data"].([]any)
	if status != http.StatusOK || len(packs) != 1 {
		t.Fatalf("GET /api/packs = %d %v", status, body)
	}
	packID := result["cardId"].(string)

	status, body = s.do(t, http.MethodPost, "/api/packs/open/"+packID, s.token, nil)
	if status != http.StatusOK {
		t.Fatalf("open = %d %v", status, body)
	}
	cards, _ := body["packCards"].([]any)
	if len(cards) != 9 || body["hitCardPosition"] != float64(8) || body["packType"] != "pokeball" {
		t.Errorf("open response = %v", body)
	}

	status, body = s.do(t, http.MethodPost, "/api/packs/open/"+packID, s.token, nil)
	if status != http.StatusNotFound || body["message"] != "Pack not found or already opened" {
		t.Errorf("second open = %d %v", status, body)
	}
}

func TestOpenPack_Unknown(t *testing.T) {
	s := newTestServer(t)
	for _, id := range []string{"not-a-uuid", "7a1c3e55-2b4d-4f6a-8c9e-0d1f2a3b4c5d"} {
		status, body := s.do(t, http.MethodPost, "/api/packs/open/"+id, s.token, nil)
		if status != http.StatusNotFound || body["message"] != "Pack not found or already opened" {
			t.Errorf("open %s = %d %v", id, status, body)
		}
	}
}

func TestVaultRefund(t *testing.T) {
	s := newTestServer(t)
	card := s.store.AddCard(models.InventoryCard{Name: "Mew", Tier: models.TierS, Credits: decimal.RequireFromString("7.25")})
	pack := s.store.AddPack(models.Pack{Name: "Classic", Type: models.PackTypeUltraball, Kind: models.PackKindClassic, IsActive: true})
	for i := 0; i < 7; i++ {
		common := s.store.AddCard(models.InventoryCard{Name: "Common", Tier: models.TierD, Credits: decimal.Zero})
		s.store.AddPoolEntry(models.PoolSpecial, pack.ID, common.ID, 1)
	}
	s.store.AddPoolEntry(models.PoolSpecial, pack.ID, card.ID, 1)

	status, body := s.do(t, http.MethodPost, "/api/packs/classic/"+pack.ID+"/purchase", s.token, nil)
	if status != http.StatusOK || body["hitCardPosition"] != float64(7) {
		t.Fatalf("purchase = %d %v", status, body)
	}

	var holdingID string
	for _, h := range s.store.Holdings(s.user.ID) {
		if h.CardID == card.ID {
			holdingID = h.ID
		}
	}
	status, body = s.do(t, http.MethodPost, "/api/vault/refund", s.token, map[string]any{"cardIds": []string{holdingID}})
	if status != http.StatusOK || body["creditsRefunded"] != "7.25" {
		t.Fatalf("refund = %d %v", status, body)
	}
	if got := s.store.PoolQuantity(models.PoolSpecial, pack.ID, card.ID); got != 1 {
		t.Errorf("pool quantity = %d, want 1", got)
	}

	status, _ = s.do(t, http.MethodPost, "/api/vault/refund", s.token, map[string]any{"cardIds": []string{holdingID}})
	if status != http.StatusBadRequest {
		t.Errorf("second refund status = %d, want 400", status)
	}
	status, _ = s.do(t, http.MethodPost, "/api/vault/refund", s.token, map[string]any{"cardIds": []string{}})
	if status != http.StatusBadRequest {
		t.Errorf("empty refund status = %d, want 400", status)
	}
}

func TestAdminPullRates(t *testing.T) {
	s := newTestServer(t)
	valid := map[string]any{"rates": []map[string]any{
		{"tier": "D", "probability": 60},
		{"tier": "C", "probability": 40},
	}}
	malformed := map[string]any{"rates": []map[string]any{
		{"tier": "D", "probability": 60},
		{"tier": "C", "probability": 30},
	}}

	tests := []struct {
		name       string
		token      string
		body       any
		wantStatus int
	}{
		{"not admin", s.token, valid, http.StatusForbidden},
		{"malformed", s.admin, malformed, http.StatusBadRequest},
		{"valid", s.admin, valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPut, "/api/admin/pull-rates/pokeball", tt.token, tt.body)
			if status != tt.wantStatus {
				t.Errorf("PUT pull rates = %d %v", status, body)
			}
		})
	}

	status, body := s.do(t, http.MethodGet, "/api/admin/pull-rates/pokeball", s.admin, nil)
	data, _ := body["data"].(map[string]any)
	rates, _ := data["rates"].([]any)
	if status != http.StatusOK || len(rates) != 2 {
		t.Errorf("GET pull rates = %d %v", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/admin/pull-rates/pokeball/audit?draws=20000", s.admin, nil)
	if status != http.StatusOK || body["success"] != true {
		t.Errorf("audit = %d %v", status, body)
	}
}

func TestAdminSetUserCredits(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodPut, "/api/admin/users/"+s.user.ID+"/credits", s.admin, map[string]any{
		"amount":      50,
		"description": "support grant",
	})
	if status != http.StatusOK {
		t.Fatalf("PUT credits = %d %v", status, body)
	}
	user, _ := s.store.User(s.user.ID)
	if !user.Credits.Equal(decimal.NewFromInt(50)) {
		t.Errorf("credits = %s, want 50", user.Credits)
	}
}
