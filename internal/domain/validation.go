package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidAccountKind = errors.New("invalid account kind")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidEntryKind   = errors.New("invalid entry kind")
	ErrInvalidEntryStatus = errors.New("invalid entry status")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrInvalidAuditAction = errors.New("invalid audit action")
	ErrMissingBusinessID  = errors.New("business id is required")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxNoteLength        = 2048
	MaxEntryAmount       = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"IDR": true, "PHP": true, "THB": true, "VND": true,
}

var validAccountKinds = map[AccountKind]bool{
	AccountKindCash:       true,
	AccountKindBank:       true,
	AccountKindCredit:     true,
	AccountKindInvestment: true,
}

var validEntryStatuses = map[EntryStatus]bool{
	EntryStatusPending:    true,
	EntryStatusCleared:    true,
	EntryStatusReconciled: true,
	EntryStatusCancelled:  true,
}

// ValidateAccountName validates account display name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAccountKind validates the account kind.
func ValidateAccountKind(kind AccountKind) error {
	if !validAccountKinds[kind] {
		return fmt.Errorf("%w: %s", ErrInvalidAccountKind, kind)
	}

	return nil
}

// ValidateCurrency validates currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateEntryKind validates an entry kind string from the API surface.
// Transfer legs are only ever created by the transfer coordinator.
func ValidateEntryKind(kind EntryKind) error {
	if kind != EntryKindIncome && kind != EntryKindExpense {
		return fmt.Errorf("%w: %s", ErrInvalidEntryKind, kind)
	}

	return nil
}

// ValidateEntryStatus validates an entry status string.
func ValidateEntryStatus(status EntryStatus) error {
	if !validEntryStatuses[status] {
		return fmt.Errorf("%w: %s", ErrInvalidEntryStatus, status)
	}

	return nil
}

// ValidateAmount validates an entry or transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxEntryAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEntryAmount)
	}

	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	const (
		maxPageSize     = 1000
		defaultPageSize = 50
	)

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
