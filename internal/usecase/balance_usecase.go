package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/infrastructure/metrics"
)

// BalanceUseCase derives account balances from entry history. The canonical
// definition of a balance is a fold over the account's entries in
// (entry_date, seq) order starting from the initial balance; the account
// row's cached balance and the Redis cache are both derived views of that
// fold and are verified against it by the reconciliation use case.
type BalanceUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	cache       BalanceCache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase. A non-positive cacheTTL
// falls back to BalanceCacheTTL; metrics may be nil.
func NewBalanceUseCase(accountRepo AccountRepository, entryRepo EntryRepository, cache BalanceCache, cacheTTL time.Duration, metricsCollector *metrics.Metrics, logger zerolog.Logger) *BalanceUseCase {
	if cacheTTL <= 0 {
		cacheTTL = BalanceCacheTTL
	}

	return &BalanceUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metricsCollector,
		logger:      logger,
	}
}

// CurrentBalance returns the account's balance. Reads go through the Redis
// cache; on a miss the committed account row is served and cached. The row
// is kept consistent with entry history transactionally on every write.
func (uc *BalanceUseCase) CurrentBalance(ctx context.Context, businessID, accountID string) (decimal.Decimal, error) {
	balance, ok, err := uc.cache.Get(ctx, accountID)
	if err != nil {
		uc.logger.Warn().Str("account_id", accountID).Err(err).Msg("balance cache read failed")
	} else if ok {
		if uc.metrics != nil {
			uc.metrics.BalanceCacheHits.Inc()
		}

		return balance, nil
	}

	if uc.metrics != nil {
		uc.metrics.BalanceCacheMisses.Inc()
	}

	account, err := uc.accountRepo.GetByID(ctx, businessID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := uc.cache.Set(ctx, accountID, account.CurrentBalance, uc.cacheTTL); err != nil {
		uc.logger.Warn().Str("account_id", accountID).Err(err).Msg("balance cache write failed")
	}

	return account.CurrentBalance, nil
}

// RunningBalance pairs an entry with the account balance immediately after it.
type RunningBalance struct {
	Entry        *domain.Entry
	BalanceAfter decimal.Decimal
}

// RunningBalancesInput represents input for a running balance listing.
type RunningBalancesInput struct {
	BusinessID string
	AccountID  string
	Range      DateRange
}

// RunningBalances replays the account's entries in canonical order and
// reports the balance after each one. Cancelled entries appear with an
// unchanged balance. When a from-date is given, history before it is still
// folded in so reported balances stay absolute; the full replay cost is
// linear in the account's entry count.
func (uc *BalanceUseCase) RunningBalances(ctx context.Context, input RunningBalancesInput) ([]RunningBalance, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.BusinessID, input.AccountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListForReplay(ctx, input.BusinessID, input.AccountID, input.Range.To)
	if err != nil {
		return nil, err
	}

	balance := account.InitialBalance
	result := make([]RunningBalance, 0, len(entries))

	for _, e := range entries {
		balance = balance.Add(e.SignedAmount())

		if !input.Range.From.IsZero() && e.EntryDate.Before(input.Range.From) {
			continue
		}

		result = append(result, RunningBalance{Entry: e, BalanceAfter: balance})
	}

	return result, nil
}

// ReplayBalance recomputes the balance from scratch, ignoring every cache.
// This is the ground truth the cached balances must match.
func (uc *BalanceUseCase) ReplayBalance(ctx context.Context, businessID, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, businessID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	entries, err := uc.entryRepo.ListForReplay(ctx, businessID, accountID, time.Time{})
	if err != nil {
		return decimal.Zero, err
	}

	balance := account.InitialBalance
	for _, e := range entries {
		balance = balance.Add(e.SignedAmount())
	}

	return balance, nil
}
