package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/cashify/ledger/internal/domain"
)

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	entries := []*domain.Entry{
		testEntry("e-1", "acc-1", domain.EntryKindIncome, "50", domain.EntryStatusCleared),
		testEntry("e-2", "acc-1", domain.EntryKindExpense, "20", domain.EntryStatusCleared),
	}

	tests := []struct {
		name           string
		cachedBalance  string
		wantConsistent bool
		wantDifference string
	}{
		{
			name:           "cached balance matches replay",
			cachedBalance:  "130",
			wantConsistent: true,
			wantDifference: "0",
		},
		{
			name:           "drift is reported, not repaired",
			cachedBalance:  "140",
			wantConsistent: false,
			wantDifference: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLedgerMocks(t)

			account := activeAccount("acc-1", tt.cachedBalance)
			account.InitialBalance = decimal.RequireFromString("100")

			m.accountRepo.EXPECT().
				GetByID(gomock.Any(), testBusinessID, "acc-1").
				Return(account, nil).
				Times(2)
			m.entryRepo.EXPECT().
				ListForReplay(gomock.Any(), testBusinessID, "acc-1", time.Time{}).
				Return(entries, nil)
			m.defaults()

			result, err := newReconciliationUC(m).ReconcileAccount(context.Background(), testBusinessID, "acc-1")

			if tt.wantConsistent {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else {
				if !errors.Is(err, domain.ErrConsistencyViolation) {
					t.Fatalf("expected consistency violation, got %v", err)
				}
			}

			if result == nil {
				t.Fatal("expected a result alongside the error")
			}
			if result.Consistent != tt.wantConsistent {
				t.Errorf("expected consistent=%v, got %v", tt.wantConsistent, result.Consistent)
			}
			if !result.ReplayBalance.Equal(decimal.RequireFromString("130")) {
				t.Errorf("expected replay balance 130, got %s", result.ReplayBalance)
			}
			if !result.Difference.Equal(decimal.RequireFromString(tt.wantDifference)) {
				t.Errorf("expected difference %s, got %s", tt.wantDifference, result.Difference)
			}
		})
	}

	t.Run("unknown account", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.accountRepo.EXPECT().
			GetByID(gomock.Any(), testBusinessID, "acc-1").
			Return(nil, domain.ErrAccountNotFound)
		m.defaults()

		result, err := newReconciliationUC(m).ReconcileAccount(context.Background(), testBusinessID, "acc-1")
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if result != nil {
			t.Errorf("expected nil result, got %+v", result)
		}
	})
}

func TestReconciliationUseCase_ReconcileAll(t *testing.T) {
	m := newLedgerMocks(t)

	drifted := activeAccount("acc-a", "999")
	drifted.InitialBalance = decimal.RequireFromString("100")
	clean := activeAccount("acc-b", "100")
	clean.InitialBalance = decimal.RequireFromString("100")

	m.accountRepo.EXPECT().
		List(gomock.Any(), testBusinessID, 1000, 0).
		Return([]*domain.Account{drifted, clean}, nil)
	m.accountRepo.EXPECT().
		GetByID(gomock.Any(), testBusinessID, "acc-a").
		Return(drifted, nil).
		AnyTimes()
	m.accountRepo.EXPECT().
		GetByID(gomock.Any(), testBusinessID, "acc-b").
		Return(clean, nil).
		AnyTimes()
	m.entryRepo.EXPECT().
		ListForReplay(gomock.Any(), testBusinessID, gomock.Any(), time.Time{}).
		Return(nil, nil).
		Times(2)
	m.defaults()

	results, err := newReconciliationUC(m).ReconcileAll(context.Background(), testBusinessID)

	// The scan continues past the first drift and reports every account.
	if !errors.Is(err, domain.ErrConsistencyViolation) {
		t.Fatalf("expected consistency violation, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Consistent {
		t.Error("expected acc-a to be reported as drifted")
	}
	if !results[1].Consistent {
		t.Error("expected acc-b to be consistent")
	}
}

func TestReconciliationUseCase_RepairAccount(t *testing.T) {
	t.Run("consistent balance is left alone", func(t *testing.T) {
		m := newLedgerMocks(t)

		account := activeAccount("acc-1", "100")
		account.InitialBalance = decimal.RequireFromString("100")

		m.accountRepo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
			Return(account, nil)
		m.accountRepo.EXPECT().
			GetByID(gomock.Any(), testBusinessID, "acc-1").
			Return(account, nil)
		m.entryRepo.EXPECT().
			ListForReplay(gomock.Any(), testBusinessID, "acc-1", time.Time{}).
			Return(nil, nil)
		m.defaults()

		result, err := newReconciliationUC(m).RepairAccount(context.Background(), testBusinessID, "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Consistent {
			t.Error("expected consistent result")
		}
	})

	t.Run("drifted balance is overwritten from replay", func(t *testing.T) {
		m := newLedgerMocks(t)

		account := activeAccount("acc-1", "999")
		account.InitialBalance = decimal.RequireFromString("100")

		entries := []*domain.Entry{
			testEntry("e-1", "acc-1", domain.EntryKindIncome, "50", domain.EntryStatusCleared),
		}

		m.accountRepo.EXPECT().
			GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
			Return(account, nil)
		m.accountRepo.EXPECT().
			GetByID(gomock.Any(), testBusinessID, "acc-1").
			Return(account, nil)
		m.entryRepo.EXPECT().
			ListForReplay(gomock.Any(), testBusinessID, "acc-1", time.Time{}).
			Return(entries, nil)
		m.accountRepo.EXPECT().
			UpdateBalance(gomock.Any(), gomock.Any(), "acc-1", decimalEq("150"), gomock.Any()).
			Return(nil)
		m.cache.EXPECT().Invalidate(gomock.Any(), "acc-1").Return(nil)
		m.defaults()

		result, err := newReconciliationUC(m).RepairAccount(context.Background(), testBusinessID, "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Consistent {
			t.Error("expected drift to be reported in the result")
		}
		if !result.ReplayBalance.Equal(decimal.RequireFromString("150")) {
			t.Errorf("expected replay balance 150, got %s", result.ReplayBalance)
		}
	})
}
