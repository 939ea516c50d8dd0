package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/usecase"
)

func TestEntryUseCase_CreateEntry(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateEntryInput
		setupMocks  func(m *ledgerMocks)
		expectError bool
		errorType   error
	}{
		{
			name: "income entry credits the balance",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("50"),
				EntryDate:  time.Date(2026, time.March, 14, 15, 4, 5, 0, time.UTC),
				Note:       "invoice 42",
				CreatedBy:  "user-1",
			},
			setupMocks: func(m *ledgerMocks) {
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "100"), nil)
				m.entryRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-1", decimalEq("150"), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "expense entry debits the balance",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindExpense,
				Amount:     decimal.RequireFromString("30"),
				EntryDate:  testDate,
				Status:     domain.EntryStatusCleared,
			},
			setupMocks: func(m *ledgerMocks) {
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "100"), nil)
				m.entryRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-1", decimalEq("70"), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "missing business id",
			input: usecase.CreateEntryInput{
				AccountID: "acc-1",
				Kind:      domain.EntryKindIncome,
				Amount:    decimal.RequireFromString("10"),
			},
			expectError: true,
			errorType:   domain.ErrMissingBusinessID,
		},
		{
			name: "transfer kinds reserved for the coordinator",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindTransferOut,
				Amount:     decimal.RequireFromString("10"),
			},
			expectError: true,
			errorType:   domain.ErrInvalidEntryKind,
		},
		{
			name: "non-positive amount rejected",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("-5"),
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "amount above cap rejected",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("1000000000001"),
			},
			expectError: true,
			errorType:   domain.ErrAmountTooLarge,
		},
		{
			name: "cannot create in reconciled status",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("10"),
				Status:     domain.EntryStatusReconciled,
			},
			expectError: true,
			errorType:   domain.ErrInvalidStatusTransition,
		},
		{
			name: "inactive account",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("10"),
			},
			setupMocks: func(m *ledgerMocks) {
				account := activeAccount("acc-1", "100")
				account.IsActive = false
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(account, nil)
			},
			expectError: true,
			errorType:   domain.ErrAccountInactive,
		},
		{
			name: "currency mismatch",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("10"),
				Currency:   "EUR",
			},
			setupMocks: func(m *ledgerMocks) {
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "100"), nil)
			},
			expectError: true,
			errorType:   domain.ErrCurrencyMismatch,
		},
		{
			name: "insufficient balance",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindExpense,
				Amount:     decimal.RequireFromString("200"),
			},
			setupMocks: func(m *ledgerMocks) {
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "100"), nil)
			},
			expectError: true,
			errorType:   domain.ErrInsufficientBalance,
		},
		{
			name: "unknown account",
			input: usecase.CreateEntryInput{
				BusinessID: testBusinessID,
				AccountID:  "acc-1",
				Kind:       domain.EntryKindIncome,
				Amount:     decimal.RequireFromString("10"),
			},
			setupMocks: func(m *ledgerMocks) {
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(nil, domain.ErrAccountNotFound)
			},
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLedgerMocks(t)
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			m.defaults()

			entry, err := newEntryUC(m).CreateEntry(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if entry.ID != "id-1" {
				t.Errorf("expected id id-1, got %s", entry.ID)
			}
			if entry.Currency != "USD" {
				t.Errorf("expected account currency USD, got %s", entry.Currency)
			}
			if !entry.EntryDate.Equal(domain.NormalizeDate(tt.input.EntryDate)) {
				t.Errorf("expected normalized date %s, got %s", domain.NormalizeDate(tt.input.EntryDate), entry.EntryDate)
			}
			wantStatus := tt.input.Status
			if wantStatus == "" {
				wantStatus = domain.EntryStatusPending
			}
			if entry.Status != wantStatus {
				t.Errorf("expected status %s, got %s", wantStatus, entry.Status)
			}
		})
	}
}

func TestEntryUseCase_UpdateEntry(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.UpdateEntryInput
		setupMocks  func(m *ledgerMocks)
		expectError bool
		errorType   error
	}{
		{
			name: "amount change adjusts the balance by the delta",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Amount:     ptr(decimal.RequireFromString("150")),
				UpdatedBy:  "user-1",
			},
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindExpense, "100", domain.EntryStatusPending)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "400"), nil)
				m.entryRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-1", decimalEq("350"), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "note-only change leaves the balance untouched",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Note:       ptr("corrected memo"),
			},
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindExpense, "100", domain.EntryStatusCleared)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "400"), nil)
				m.entryRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "pending clears to cleared",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Status:     ptr(domain.EntryStatusCleared),
			},
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindIncome, "100", domain.EntryStatusPending)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "400"), nil)
				m.entryRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "cleared cannot go back to pending",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Status:     ptr(domain.EntryStatusPending),
			},
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindIncome, "100", domain.EntryStatusCleared)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "400"), nil)
			},
			expectError: true,
			errorType:   domain.ErrInvalidStatusTransition,
		},
		{
			name: "cancel via update rejected",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Status:     ptr(domain.EntryStatusCancelled),
			},
			expectError: true,
			errorType:   domain.ErrInvalidStatusTransition,
		},
		{
			name: "transfer leg amount edit rejected",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Amount:     ptr(decimal.RequireFromString("150")),
			},
			setupMocks: func(m *ledgerMocks) {
				leg := testEntry("e-1", "acc-1", domain.EntryKindTransferOut, "100", domain.EntryStatusCleared)
				leg.TransferGroupID = "grp-1"
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(leg, nil)
			},
			expectError: true,
			errorType:   domain.ErrTransferLegEdit,
		},
		{
			name: "reconciled entry is immutable",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Note:       ptr("late edit"),
			},
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindExpense, "100", domain.EntryStatusReconciled)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "400"), nil)
			},
			expectError: true,
			errorType:   domain.ErrEntryImmutable,
		},
		{
			name: "unknown entry",
			input: usecase.UpdateEntryInput{
				BusinessID: testBusinessID,
				EntryID:    "e-1",
				Note:       ptr("memo"),
			},
			setupMocks: func(m *ledgerMocks) {
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(nil, domain.ErrEntryNotFound)
			},
			expectError: true,
			errorType:   domain.ErrEntryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLedgerMocks(t)
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			m.defaults()

			entry, err := newEntryUC(m).UpdateEntry(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.input.Amount != nil && !entry.Amount.Equal(*tt.input.Amount) {
				t.Errorf("expected amount %s, got %s", tt.input.Amount, entry.Amount)
			}
			if tt.input.Note != nil && entry.Note != *tt.input.Note {
				t.Errorf("expected note %q, got %q", *tt.input.Note, entry.Note)
			}
			if tt.input.Status != nil && entry.Status != *tt.input.Status {
				t.Errorf("expected status %s, got %s", *tt.input.Status, entry.Status)
			}
		})
	}
}

func TestEntryUseCase_CancelEntry(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(m *ledgerMocks)
		expectError bool
		errorType   error
	}{
		{
			name: "cancels pending entry and reverses its effect",
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindExpense, "30", domain.EntryStatusPending)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "70"), nil)
				m.entryRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-1", decimalEq("100"), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "already cancelled is a no-op",
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindExpense, "30", domain.EntryStatusCancelled)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
			},
		},
		{
			name: "reconciled entry undone by a reversing entry",
			setupMocks: func(m *ledgerMocks) {
				entry := testEntry("e-1", "acc-1", domain.EntryKindIncome, "50", domain.EntryStatusReconciled)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.entryRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "e-1").
					Return(entry, nil)
				m.accountRepo.EXPECT().
					GetByIDForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "acc-1").
					Return(activeAccount("acc-1", "150"), nil)
				m.entryRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-1", decimalEq("100"), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "transfer leg cancels the whole pair",
			setupMocks: func(m *ledgerMocks) {
				legs := transferLegs("grp-1", "acc-a", "acc-b", "100", domain.EntryStatusCleared)
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(legs[0], nil)
				m.entryRepo.EXPECT().
					GetByGroup(gomock.Any(), testBusinessID, "grp-1").
					Return(legs, nil)
				m.accountRepo.EXPECT().
					GetByIDsForUpdate(gomock.Any(), gomock.Any(), testBusinessID, []string{"acc-a", "acc-b"}).
					Return([]*domain.Account{activeAccount("acc-a", "400"), activeAccount("acc-b", "120")}, nil)
				m.entryRepo.EXPECT().
					GetByGroupForUpdate(gomock.Any(), gomock.Any(), testBusinessID, "grp-1").
					Return(legs, nil)
				m.entryRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-a", decimalEq("500"), gomock.Any()).
					Return(nil)
				m.accountRepo.EXPECT().
					UpdateBalance(gomock.Any(), gomock.Any(), "acc-b", decimalEq("20"), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "unknown entry",
			setupMocks: func(m *ledgerMocks) {
				m.entryRepo.EXPECT().
					GetByID(gomock.Any(), testBusinessID, "e-1").
					Return(nil, domain.ErrEntryNotFound)
			},
			expectError: true,
			errorType:   domain.ErrEntryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLedgerMocks(t)
			tt.setupMocks(m)
			m.defaults()

			err := newEntryUC(m).CancelEntry(context.Background(), testBusinessID, "e-1", "user-1")

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEntryUseCase_ListEntries(t *testing.T) {
	m := newLedgerMocks(t)
	entries := []*domain.Entry{
		testEntry("e-1", "acc-1", domain.EntryKindIncome, "50", domain.EntryStatusCleared),
	}
	m.entryRepo.EXPECT().
		ListByAccount(gomock.Any(), testBusinessID, "acc-1", usecase.DateRange{}, 50, 0).
		Return(entries, nil)
	m.defaults()

	got, err := newEntryUC(m).ListEntries(context.Background(), usecase.ListEntriesInput{
		BusinessID: testBusinessID,
		AccountID:  "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e-1" {
		t.Errorf("unexpected entries: %+v", got)
	}
}
