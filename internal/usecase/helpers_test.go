package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/usecase"
	"github.com/cashify/ledger/internal/usecase/mocks"
)

const testBusinessID = "biz-1"

var testDate = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

// ledgerMocks bundles every mocked dependency of the use cases. Test cases
// register their specific expectations first, then defaults() backfills
// permissive stubs for the infrastructure ports; gomock matches expectations
// in registration order, so case-specific ones win.
type ledgerMocks struct {
	txManager   *mocks.MockTransactionManager
	tx          *mocks.MockTransaction
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockEntryRepository
	auditRepo   *mocks.MockAuditRepository
	locker      *mocks.MockAccountLocker
	idGen       *mocks.MockIDGenerator
	cache       *mocks.MockBalanceCache
	retrier     *mocks.MockRetrier

	idSeq int
}

func newLedgerMocks(t *testing.T) *ledgerMocks {
	ctrl := gomock.NewController(t)

	return &ledgerMocks{
		txManager:   mocks.NewMockTransactionManager(ctrl),
		tx:          mocks.NewMockTransaction(ctrl),
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		entryRepo:   mocks.NewMockEntryRepository(ctrl),
		auditRepo:   mocks.NewMockAuditRepository(ctrl),
		locker:      mocks.NewMockAccountLocker(ctrl),
		idGen:       mocks.NewMockIDGenerator(ctrl),
		cache:       mocks.NewMockBalanceCache(ctrl),
		retrier:     mocks.NewMockRetrier(ctrl),
	}
}

func (m *ledgerMocks) defaults() {
	m.locker.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return(func() {}, nil).AnyTimes()
	m.retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, operation func() error) error { return operation() },
	).AnyTimes()
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).AnyTimes()
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil).AnyTimes()
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.auditRepo.EXPECT().CreateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.idGen.EXPECT().Generate().DoAndReturn(func() string {
		m.idSeq++
		return fmt.Sprintf("id-%d", m.idSeq)
	}).AnyTimes()
}

func newTransferUC(m *ledgerMocks) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(
		m.txManager, m.accountRepo, m.entryRepo, m.auditRepo,
		m.locker, m.idGen, m.cache, m.retrier, nil, zerolog.Nop(),
	)
}

func newEntryUC(m *ledgerMocks) *usecase.EntryUseCase {
	return usecase.NewEntryUseCase(
		m.txManager, m.accountRepo, m.entryRepo, m.auditRepo,
		m.locker, m.idGen, m.cache, m.retrier, newTransferUC(m), nil, zerolog.Nop(),
	)
}

func newBalanceUC(m *ledgerMocks) *usecase.BalanceUseCase {
	return usecase.NewBalanceUseCase(m.accountRepo, m.entryRepo, m.cache, 0, nil, zerolog.Nop())
}

func newReconciliationUC(m *ledgerMocks) *usecase.ReconciliationUseCase {
	return usecase.NewReconciliationUseCase(
		m.txManager, m.accountRepo, newBalanceUC(m), m.locker, m.cache, nil, zerolog.Nop(),
	)
}

func activeAccount(id, balance string) *domain.Account {
	return &domain.Account{
		ID:             id,
		BusinessID:     testBusinessID,
		Name:           "Account " + id,
		Kind:           domain.AccountKindBank,
		Currency:       "USD",
		InitialBalance: decimal.Zero,
		CurrentBalance: decimal.RequireFromString(balance),
		IsActive:       true,
		Version:        1,
	}
}

func testEntry(id, accountID string, kind domain.EntryKind, amount string, status domain.EntryStatus) *domain.Entry {
	return &domain.Entry{
		ID:         id,
		BusinessID: testBusinessID,
		AccountID:  accountID,
		Kind:       kind,
		Amount:     decimal.RequireFromString(amount),
		Currency:   "USD",
		EntryDate:  testDate,
		Status:     status,
	}
}

// transferLegs builds a well-formed pair of linked legs for groupID, both in
// the given status.
func transferLegs(groupID, fromAccountID, toAccountID, amount string, status domain.EntryStatus) []*domain.Entry {
	out := testEntry(groupID+"-out", fromAccountID, domain.EntryKindTransferOut, amount, status)
	out.LinkedEntryID = groupID + "-in"
	out.TransferGroupID = groupID

	in := testEntry(groupID+"-in", toAccountID, domain.EntryKindTransferIn, amount, status)
	in.LinkedEntryID = groupID + "-out"
	in.TransferGroupID = groupID

	return []*domain.Entry{out, in}
}

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)

	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "decimal equal to " + m.want.String()
}

// decimalEq matches a decimal by numeric value rather than representation.
func decimalEq(value string) gomock.Matcher {
	return decimalMatcher{want: decimal.RequireFromString(value)}
}

func ptr[T any](v T) *T {
	return &v
}
