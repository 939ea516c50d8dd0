package domain_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cashify/ledger/internal/domain"
)

func TestValidateAccountName(t *testing.T) {
	assert.NoError(t, domain.ValidateAccountName("Main Checking"))
	assert.Error(t, domain.ValidateAccountName(""))
	assert.Error(t, domain.ValidateAccountName("   "))
	assert.Error(t, domain.ValidateAccountName(strings.Repeat("x", 256)))
}

func TestValidateAccountKind(t *testing.T) {
	assert.NoError(t, domain.ValidateAccountKind(domain.AccountKindCash))
	assert.NoError(t, domain.ValidateAccountKind(domain.AccountKindBank))
	assert.NoError(t, domain.ValidateAccountKind(domain.AccountKindCredit))
	assert.NoError(t, domain.ValidateAccountKind(domain.AccountKindInvestment))
	assert.Error(t, domain.ValidateAccountKind("wallet"))
}

func TestValidateCurrency(t *testing.T) {
	assert.NoError(t, domain.ValidateCurrency("USD"))
	assert.NoError(t, domain.ValidateCurrency(" eur "))
	assert.Error(t, domain.ValidateCurrency("XYZ"))
	assert.Error(t, domain.ValidateCurrency(""))
}

func TestValidateEntryKind(t *testing.T) {
	assert.NoError(t, domain.ValidateEntryKind(domain.EntryKindIncome))
	assert.NoError(t, domain.ValidateEntryKind(domain.EntryKindExpense))

	// Transfer legs are reserved for the transfer coordinator.
	assert.Error(t, domain.ValidateEntryKind(domain.EntryKindTransferOut))
	assert.Error(t, domain.ValidateEntryKind(domain.EntryKindTransferIn))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, domain.ValidateAmount(decimal.NewFromInt(1)))
	assert.NoError(t, domain.ValidateAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, domain.ValidateAmount(decimal.Zero), domain.ErrInvalidAmount)
	assert.ErrorIs(t, domain.ValidateAmount(decimal.NewFromInt(-1)), domain.ErrInvalidAmount)
	assert.ErrorIs(t, domain.ValidateAmount(decimal.RequireFromString("1000000000001")), domain.ErrAmountTooLarge)
}

func TestValidatePagination(t *testing.T) {
	limit, offset := domain.ValidatePagination(0, -1)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, offset = domain.ValidatePagination(5000, 10)
	assert.Equal(t, 1000, limit)
	assert.Equal(t, 10, offset)

	limit, offset = domain.ValidatePagination(25, 100)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 100, offset)
}
