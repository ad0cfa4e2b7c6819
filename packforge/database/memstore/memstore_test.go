package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
	"github.com/shopspring/decimal"
)

func TestRunInTx_RollsBackOnError(t *testing.T) {
	s := New()
	u := s.AddUser("", decimal.NewFromInt(100))
	boom := errors.New("boom")

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
		ok, err := tx.DeductCredits(ctx, u.ID, decimal.NewFromInt(40))
		if err != nil || !ok {
			t.Fatalf("DeductCredits() = %v, %v", ok, err)
		}
		if err := tx.InsertTransaction(ctx, &models.Transaction{UserID: u.ID, Type: models.TxDeduction}); err != nil {
			t.Fatal(err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx() error = %v, want %v", err, boom)
	}

	got, _ := s.User(u.ID)
	if !got.Credits.Equal(decimal.NewFromInt(100)) {
		t.Errorf("credits = %s, want 100", got.Credits)
	}
	if n := len(s.Transactions(u.ID)); n != 0 {
		t.Errorf("transactions = %d, want 0", n)
	}
}

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	s := New()
	u := s.AddUser("", decimal.NewFromInt(100))

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
		_, err := tx.DeductCredits(ctx, u.ID, decimal.NewFromInt(40))
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := s.User(u.ID)
	if !got.Credits.Equal(decimal.NewFromInt(60)) {
		t.Errorf("credits = %s, want 60", got.Credits)
	}
	if !got.TotalSpent.Equal(decimal.NewFromInt(40)) {
		t.Errorf("total spent = %s, want 40", got.TotalSpent)
	}
}

func Test_tx_DeductCredits(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
		want    bool
		left    int64
	}{
		{"covered", 100, 100, true, 0},
		{"insufficient", 50, 100, false, 50},
		{"partial", 100, 30, true, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			u := s.AddUser("", decimal.NewFromInt(tt.balance))
			var got bool
			_ = s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
				var err error
				got, err = tx.DeductCredits(ctx, u.ID, decimal.NewFromInt(tt.amount))
				return err
			})
			if got != tt.want {
				t.Errorf("DeductCredits() = %v, want %v", got, tt.want)
			}
			after, _ := s.User(u.ID)
			if !after.Credits.Equal(decimal.NewFromInt(tt.left)) {
				t.Errorf("credits = %s, want %d", after.Credits, tt.left)
			}
		})
	}
}

func Test_tx_RestorePrizePool(t *testing.T) {
	s := New()
	card := s.AddCard(models.InventoryCard{Name: "Pikachu", Tier: models.TierC})
	s.AddPoolEntry(models.PoolMystery, "m-1", card.ID, 2)
	s.AddPoolEntry(models.PoolSpecial, "s-2", card.ID, 1)
	s.AddPoolEntry(models.PoolSpecial, "s-1", card.ID, 0)

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
		ok, err := tx.RestorePrizePool(ctx, card.ID, 3)
		if !ok {
			t.Error("RestorePrizePool() = false, want true")
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := s.PoolQuantity(models.PoolSpecial, "s-1", card.ID); got != 3 {
		t.Errorf("s-1 quantity = %d, want 3", got)
	}
	if got := s.PoolQuantity(models.PoolSpecial, "s-2", card.ID); got != 1 {
		t.Errorf("s-2 quantity = %d, want 1", got)
	}
	if got := s.PoolQuantity(models.PoolMystery, "m-1", card.ID); got != 2 {
		t.Errorf("m-1 quantity = %d, want 2", got)
	}
}

func Test_tx_LockUnopenedUserPack(t *testing.T) {
	s := New()
	up := s.AddUserPack(models.UserPack{UserID: "u-1", PackID: "p-1", Tier: "pokeball"})

	tests := []struct {
		name   string
		id     string
		userID string
	}{
		{"wrong owner", up.ID, "u-2"},
		{"unknown id", "missing", "u-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
				_, err := tx.LockUnopenedUserPack(ctx, tt.id, tt.userID)
				return err
			})
			if !errors.Is(err, interfaces.ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func Test_tx_DecrementPackStock(t *testing.T) {
	s := New()
	total := 2
	pack := s.AddPack(models.Pack{Name: "Base Set", Kind: models.PackKindClassic, TotalPacks: &total})

	tests := []struct {
		name   string
		wantOK bool
		left   int
	}{
		{"first", true, 1},
		{"last", true, 0},
		{"sold out", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
				read, err := tx.LockPack(ctx, pack.ID)
				if err != nil {
					return err
				}
				before := *read.TotalPacks
				left, ok, err := tx.DecrementPackStock(ctx, pack.ID)
				if err != nil {
					return err
				}
				if ok != tt.wantOK || left != tt.left {
					t.Errorf("DecrementPackStock() = %d, %v; want %d, %v", left, ok, tt.left, tt.wantOK)
				}
				if *read.TotalPacks != before {
					t.Errorf("pack read before the decrement changed from %d to %d", before, *read.TotalPacks)
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
		})
	}
	if total != 2 {
		t.Errorf("caller's total = %d, want 2", total)
	}
}

func Test_tx_UpsertHolding(t *testing.T) {
	s := New()
	card := s.AddCard(models.InventoryCard{Name: "Pikachu", Tier: models.TierC, Credits: decimal.NewFromInt(5)})

	var ids []string
	for _, value := range []int64{5, 9} {
		err := s.RunInTx(context.Background(), func(ctx context.Context, tx interfaces.Tx) error {
			uc := &models.UserCard{UserID: "u-1", CardID: card.ID, Quantity: 2, PullValue: decimal.NewFromInt(value)}
			if err := tx.UpsertHolding(ctx, uc); err != nil {
				return err
			}
			ids = append(ids, uc.ID)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if ids[0] == "" || ids[0] != ids[1] {
		t.Errorf("upserted ids = %v, want the same holding twice", ids)
	}
	holdings := s.Holdings("u-1")
	if len(holdings) != 1 || holdings[0].Quantity != 4 {
		t.Fatalf("holdings = %+v, want one holding of 4", holdings)
	}
	if !holdings[0].PullValue.Equal(decimal.NewFromInt(5)) {
		t.Errorf("pull value = %s, want the first deposit's 5", holdings[0].PullValue)
	}
}
