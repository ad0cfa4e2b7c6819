package economy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/shopspring/decimal"
)

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("opening pack: %w", NoCardsInTier(models.TierS))

	if !errors.Is(wrapped, ErrNoCardsInTier) {
		t.Error("NoCardsInTier should match ErrNoCardsInTier")
	}
	if errors.Is(wrapped, ErrNoCardsInPrizePool) {
		t.Error("NoCardsInTier should not match ErrNoCardsInPrizePool")
	}
	if KindOf(wrapped) != KindExhausted {
		t.Errorf("KindOf() = %v, want exhausted", KindOf(wrapped))
	}
	if KindOf(errors.New("db down")) != KindSystem {
		t.Error("plain errors should be system errors")
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"10", false},
		{"0.01", false},
		{"12.5", false},
		{"0", true},
		{"-5", true},
		{"1.005", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.in))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAmount(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
