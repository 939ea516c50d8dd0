package domain

import "errors"

var (
	// Lookup errors. Wrong-tenant access surfaces as not found.
	ErrAccountNotFound  = errors.New("account not found")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrTransferNotFound = errors.New("transfer not found")

	// Transfer validation errors.
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrCurrencyMismatch    = errors.New("currency does not match account currency")

	// Policy and lifecycle errors.
	ErrInsufficientBalance     = errors.New("operation would drive balance negative")
	ErrInvalidStatusTransition = errors.New("invalid entry status transition")
	ErrEntryImmutable          = errors.New("entry is no longer editable in place")
	ErrTransferLegEdit         = errors.New("transfer legs cannot be edited independently")
	ErrAccountInactive         = errors.New("account is inactive")

	// ErrBusy means a per-account lock could not be acquired within the
	// configured timeout. Callers may retry with backoff.
	ErrBusy = errors.New("account is busy, retry later")

	// ErrConsistencyViolation is never expected in correct operation: it
	// marks detected corruption such as an orphaned transfer leg or balance
	// drift. It must be surfaced, never silently repaired.
	ErrConsistencyViolation = errors.New("ledger consistency violation detected")
)
