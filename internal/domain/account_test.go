package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
)

func TestAccount_ValidateDelta(t *testing.T) {
	tests := []struct {
		name          string
		balance       int64
		allowNegative bool
		delta         int64
		wantErr       error
	}{
		{"withdrawal within balance", 500, false, -300, nil},
		{"withdrawal to exactly zero", 500, false, -500, nil},
		{"withdrawal below zero rejected", 500, false, -501, domain.ErrInsufficientBalance},
		{"withdrawal below zero allowed by policy", 500, true, -501, nil},
		{"deposit always fine", 0, false, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &domain.Account{
				CurrentBalance: decimal.NewFromInt(tt.balance),
				AllowNegative:  tt.allowNegative,
			}

			err := a.ValidateDelta(decimal.NewFromInt(tt.delta))
			if err != tt.wantErr {
				t.Errorf("ValidateDelta() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	a := &domain.Account{CurrentBalance: decimal.NewFromInt(700)}

	got := a.ApplyDelta(decimal.NewFromInt(-200))
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("ApplyDelta() = %s, want 500", got)
	}

	// ApplyDelta does not mutate the account.
	if !a.CurrentBalance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("account balance mutated to %s", a.CurrentBalance)
	}
}
