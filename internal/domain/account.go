package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the type of money holder an account represents.
type AccountKind string

const (
	AccountKindCash       AccountKind = "cash"
	AccountKindBank       AccountKind = "bank"
	AccountKindCredit     AccountKind = "credit"
	AccountKindInvestment AccountKind = "investment"
)

// Account is a cash or bank account owned by one business. CurrentBalance is
// a denormalized cache: it must always equal InitialBalance plus the signed
// sum of the account's non-cancelled entries.
type Account struct {
	ID             string
	BusinessID     string
	Name           string
	Kind           AccountKind
	Currency       string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	AllowNegative  bool
	IsActive       bool
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDelta checks whether applying delta to the cached balance would
// violate the account's negative-balance policy.
func (a *Account) ValidateDelta(delta decimal.Decimal) error {
	if a.AllowNegative {
		return nil
	}

	if a.CurrentBalance.Add(delta).IsNegative() {
		return ErrInsufficientBalance
	}

	return nil
}

// ApplyDelta returns the cached balance after applying delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Add(delta)
}
