package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
)

// DateRange bounds a listing by calendar date. Zero values mean unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// AccountRepository defines data access for accounts. Every lookup is
// tenant-scoped: an account belonging to a different business is not found.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, businessID, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, businessID, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, businessID string, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, businessID string, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for ledger entries. Append assigns the
// entry's monotonic sequence number. Listings are ordered by
// (entry_date asc, seq asc), the canonical replay order.
type EntryRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, businessID, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, businessID, id string) (*domain.Entry, error)
	GetByGroup(ctx context.Context, businessID, groupID string) ([]*domain.Entry, error)
	GetByGroupForUpdate(ctx context.Context, tx Transaction, businessID, groupID string) ([]*domain.Entry, error)
	ListByAccount(ctx context.Context, businessID, accountID string, rng DateRange, limit, offset int) ([]*domain.Entry, error)
	ListForReplay(ctx context.Context, businessID, accountID string, until time.Time) ([]*domain.Entry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// AccountLocker serializes mutating operations per account. Acquire blocks
// until all named locks are held or the lock timeout elapses, in which case
// it returns domain.ErrBusy. Locks are always taken in sorted ID order so
// multi-account operations cannot deadlock.
type AccountLocker interface {
	Acquire(ctx context.Context, accountIDs ...string) (release func(), err error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// BalanceCache caches computed account balances outside the database.
type BalanceCache interface {
	Get(ctx context.Context, accountID string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, accountID string, balance decimal.Decimal, ttl time.Duration) error
	Invalidate(ctx context.Context, accountID string) error
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
