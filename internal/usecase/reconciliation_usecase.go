package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase verifies that cached balances match a full replay of
// entry history. Drift is fatal corruption: it is reported, never silently
// repaired. Repair is a separate, explicit operation.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balanceUC   *BalanceUseCase
	locker      AccountLocker
	cache       BalanceCache
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase. metrics may
// be nil.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	balanceUC *BalanceUseCase,
	locker AccountLocker,
	cache BalanceCache,
	metricsCollector *metrics.Metrics,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		balanceUC:   balanceUC,
		locker:      locker,
		cache:       cache,
		metrics:     metricsCollector,
		logger:      logger,
	}
}

// ReconciliationResult reports one account's cached balance against replay.
type ReconciliationResult struct {
	AccountID     string
	CachedBalance decimal.Decimal
	ReplayBalance decimal.Decimal
	Difference    decimal.Decimal
	Consistent    bool
	CheckedAt     time.Time
}

// ReconcileAccount recomputes the account's balance from entry history and
// compares it against the cached balance. Drift returns the result together
// with ErrConsistencyViolation.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, businessID, accountID string) (*ReconciliationResult, error) {
	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
	}

	account, err := uc.accountRepo.GetByID(ctx, businessID, accountID)
	if err != nil {
		return nil, err
	}

	replayed, err := uc.balanceUC.ReplayBalance(ctx, businessID, accountID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		AccountID:     accountID,
		CachedBalance: account.CurrentBalance,
		ReplayBalance: replayed,
		Difference:    account.CurrentBalance.Sub(replayed),
		Consistent:    account.CurrentBalance.Equal(replayed),
		CheckedAt:     time.Now().UTC(),
	}

	if !result.Consistent {
		uc.logger.Error().
			Str("business_id", businessID).
			Str("account_id", accountID).
			Str("cached_balance", result.CachedBalance.String()).
			Str("replay_balance", result.ReplayBalance.String()).
			Str("difference", result.Difference.String()).
			Msg("balance drift detected")

		if uc.metrics != nil {
			uc.metrics.BalanceDriftDetected.Inc()
			uc.metrics.ConsistencyViolations.WithLabelValues("balance_drift").Inc()
		}

		return result, domain.ErrConsistencyViolation
	}

	return result, nil
}

// ReconcileAll reconciles every account of a business. The first detected
// drift does not stop the scan; all results are returned along with
// ErrConsistencyViolation if any account drifted.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context, businessID string) ([]*ReconciliationResult, error) {
	limit, offset := domain.ValidatePagination(1000, 0)

	accounts, err := uc.accountRepo.List(ctx, businessID, limit, offset)
	if err != nil {
		return nil, err
	}

	var firstErr error

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.ReconcileAccount(ctx, businessID, account.ID)
		if err != nil && result == nil {
			return nil, err
		}

		if err != nil && firstErr == nil {
			firstErr = err
		}

		results = append(results, result)
	}

	return results, firstErr
}

// RepairAccount recomputes the balance from scratch and overwrites the
// cached value under the account's lock. It is only ever invoked explicitly
// by an operator; automatic repair would mask the corruption signal.
func (uc *ReconciliationUseCase) RepairAccount(ctx context.Context, businessID, accountID string) (*ReconciliationResult, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, businessID, accountID)
	if err != nil {
		return nil, err
	}

	replayed, err := uc.balanceUC.ReplayBalance(ctx, businessID, accountID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		AccountID:     accountID,
		CachedBalance: account.CurrentBalance,
		ReplayBalance: replayed,
		Difference:    account.CurrentBalance.Sub(replayed),
		Consistent:    account.CurrentBalance.Equal(replayed),
		CheckedAt:     time.Now().UTC(),
	}

	if result.Consistent {
		return result, tx.Commit(ctx)
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, replayed, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Warn().
		Str("business_id", businessID).
		Str("account_id", accountID).
		Str("old_balance", result.CachedBalance.String()).
		Str("new_balance", replayed.String()).
		Msg("cached balance repaired from replay")

	if err := uc.cache.Invalidate(ctx, accountID); err != nil {
		uc.logger.Warn().Str("account_id", accountID).Err(err).Msg("failed to invalidate balance cache")
	}

	return result, nil
}
