package games

import (
	"context"
	"errors"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/memstore"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/economy/ledger"
	"github.com/ellavondegurechaff/packforge/packforge/economy/odds"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(store *memstore.Store, r float64, trust bool) *Service {
	mapper := NewMapper(odds.NewSelector(fixedRand(r)))
	return NewService(store, ledger.New(store), mapper, Config{TrustClientResults: trust})
}

func TestService_Play_AwardsPack(t *testing.T) {
	store := memstore.New()
	user := store.AddUser("", dec("10"))
	pack := store.AddPack(models.Pack{Name: "Ultra Ball", Type: models.PackTypeUltraball, Price: dec("5"), IsActive: true})

	svc := newService(store, 0.5, true)
	res, err := svc.Play(context.Background(), user.ID, PlayRequest{
		GameType:     GamePlinko,
		BetAmount:    dec("2.50"),
		PlinkoResult: models.PackTypeUltraball,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != models.PackTypeUltraball {
		t.Errorf("tier = %s, want ultraball", res.Tier)
	}

	up, ok := store.UserPack(res.CardID)
	if !ok {
		t.Fatalf("awarded user pack %s not stored", res.CardID)
	}
	if up.PackID != pack.ID || up.IsOpened || up.EarnedFrom != GamePlinko {
		t.Errorf("user pack = %+v", up)
	}

	after, _ := store.User(user.ID)
	if !after.Credits.Equal(dec("7.50")) {
		t.Errorf("credits = %s, want 7.50", after.Credits)
	}
	txs := store.Transactions(user.ID)
	if len(txs) != 1 || txs[0].Type != models.TxGamePlay {
		t.Errorf("transactions = %+v, want one game_play", txs)
	}
	sessions := store.GameSessions(user.ID)
	if len(sessions) != 1 || sessions[0].ID != res.SessionID || sessions[0].Result["tier"] != models.PackTypeUltraball {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestService_Play_RecordsEarnedFrom(t *testing.T) {
	tests := []struct {
		name string
		req  PlayRequest
	}{
		{"plinko", PlayRequest{GameType: GamePlinko, BetAmount: dec("1"), PlinkoResult: models.PackTypeGreatball}},
		{"wheel", PlayRequest{GameType: GameWheel, BetAmount: dec("1"), WheelResult: models.PackTypeGreatball}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			user := store.AddUser("", dec("10"))
			store.AddPack(models.Pack{Name: "Great Ball", Type: models.PackTypeGreatball, IsActive: true})

			res, err := newService(store, 0.5, true).Play(context.Background(), user.ID, tt.req)
			if err != nil {
				t.Fatal(err)
			}
			up, ok := store.UserPack(res.CardID)
			if !ok {
				t.Fatalf("awarded user pack %s not stored", res.CardID)
			}
			if up.EarnedFrom != tt.req.GameType {
				t.Errorf("earned from = %q, want %q", up.EarnedFrom, tt.req.GameType)
			}
		})
	}
}

func TestService_Play_FallsBackToMysteryPack(t *testing.T) {
	store := memstore.New()
	user := store.AddUser("", dec("10"))
	mp := store.AddMysteryPack(models.MysteryPack{Name: "Mystery Master", PackType: models.PackTypeMasterball, IsActive: true})

	// 0.01 lands on the masterball wheel segment.
	svc := newService(store, 0.01, false)
	res, err := svc.Play(context.Background(), user.ID, PlayRequest{GameType: GameWheel, BetAmount: dec("1")})
	if err != nil {
		t.Fatal(err)
	}
	up, _ := store.UserPack(res.CardID)
	if up.PackID != mp.ID || up.Tier != models.PackTypeMasterball {
		t.Errorf("user pack = %+v, want mystery pack %s", up, mp.ID)
	}
	if up.EarnedFrom != GameWheel {
		t.Errorf("earned from = %q, want %q", up.EarnedFrom, GameWheel)
	}
}

func TestService_Play_NoPackForType(t *testing.T) {
	store := memstore.New()
	user := store.AddUser("", dec("10"))

	svc := newService(store, 0.5, false)
	_, err := svc.Play(context.Background(), user.ID, PlayRequest{GameType: GameWheel, BetAmount: dec("1")})
	if !errors.Is(err, economy.ErrPackTypeNotFound) {
		t.Fatalf("Play() error = %v, want ErrPackTypeNotFound", err)
	}
	after, _ := store.User(user.ID)
	if !after.Credits.Equal(dec("10")) {
		t.Errorf("bet was charged on a failed play: credits = %s", after.Credits)
	}
}

func TestService_Play_LegacyCard(t *testing.T) {
	tests := []struct {
		name     string
		r        float64
		stockC   int
		wantTier models.Tier
		wantFeed int
	}{
		// 0.6 draws tier C with the legacy rates.
		{"drawn tier in stock", 0.6, 1, models.TierC, 1},
		{"drawn tier sold out", 0.6, 0, models.TierD, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			user := store.AddUser("", dec("5"))
			common := store.AddCard(models.InventoryCard{Name: "Rattata", Tier: models.TierD, Credits: dec("0.50"), Stock: 3})
			rare := store.AddCard(models.InventoryCard{Name: "Eevee", Tier: models.TierC, Credits: dec("2.00"), Stock: tt.stockC})

			svc := newService(store, tt.r, true)
			res, err := svc.Play(context.Background(), user.ID, PlayRequest{GameType: GameEnergy, BetAmount: dec("1")})
			if err != nil {
				t.Fatal(err)
			}
			if res.Tier != string(tt.wantTier) {
				t.Errorf("tier = %s, want %s", res.Tier, tt.wantTier)
			}

			want := common
			if tt.wantTier == models.TierC {
				want = rare
			}
			card, _ := store.Card(want.ID)
			if card.Stock != want.Stock-1 {
				t.Errorf("stock of %s = %d, want %d", card.Name, card.Stock, want.Stock-1)
			}
			holdings := store.Holdings(user.ID)
			if len(holdings) != 1 || holdings[0].CardID != want.ID {
				t.Errorf("holdings = %+v, want %s", holdings, want.Name)
			}
			if n := len(store.Feed()); n != tt.wantFeed {
				t.Errorf("feed entries = %d, want %d", n, tt.wantFeed)
			}
		})
	}
}

func TestService_Play_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		credits string
		req     PlayRequest
		wantErr error
	}{
		{"insufficient credits", "1", PlayRequest{GameType: GamePlinko, BetAmount: dec("2")}, economy.ErrInsufficientCredits},
		{"unknown game", "10", PlayRequest{GameType: "roulette", BetAmount: dec("1")}, economy.ErrUnknownGameType},
		{"zero bet", "10", PlayRequest{GameType: GamePlinko, BetAmount: decimal.Zero}, economy.ErrInvalidBet},
		{"bet over max", "100000", PlayRequest{GameType: GamePlinko, BetAmount: dec("10000.01")}, economy.ErrInvalidBet},
		{"bad client result", "10", PlayRequest{GameType: GamePlinko, BetAmount: dec("1"), PlinkoResult: "rocketball"}, economy.ErrInvalidGameResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			user := store.AddUser("", dec(tt.credits))
			store.AddPack(models.Pack{Type: models.PackTypePokeball, IsActive: true})

			svc := newService(store, 0.5, true)
			_, err := svc.Play(context.Background(), user.ID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Play() error = %v, want %v", err, tt.wantErr)
			}
			after, _ := store.User(user.ID)
			if !after.Credits.Equal(dec(tt.credits)) {
				t.Errorf("credits = %s, want %s", after.Credits, tt.credits)
			}
			if n := len(store.GameSessions(user.ID)); n != 0 {
				t.Errorf("sessions = %d, want 0", n)
			}
		})
	}
}

func TestService_Play_UnknownUser(t *testing.T) {
	svc := newService(memstore.New(), 0.5, true)
	_, err := svc.Play(context.Background(), "ghost", PlayRequest{GameType: GamePlinko, BetAmount: dec("1")})
	if !errors.Is(err, economy.ErrUserNotFound) {
		t.Fatalf("Play() error = %v, want ErrUserNotFound", err)
	}
}
