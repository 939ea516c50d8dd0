package usecase

import "time"

const (
	// DefaultLockTimeout bounds how long a mutation waits for its account
	// locks before failing with domain.ErrBusy.
	DefaultLockTimeout = 3 * time.Second

	// BalanceCacheTTL is how long cached balances live outside the database.
	BalanceCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
