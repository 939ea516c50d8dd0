package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account management.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. metrics may be nil.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, metricsCollector *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		metrics:     metricsCollector,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	BusinessID     string
	Name           string
	Kind           domain.AccountKind
	Currency       string
	InitialBalance decimal.Decimal
	AllowNegative  bool
	CreatedBy      string
}

// CreateAccount validates and creates a new account. The cached balance
// starts at the initial balance: zero entries replayed.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.BusinessID == "" {
		return nil, domain.ErrMissingBusinessID
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountKind(input.Kind); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		BusinessID:     input.BusinessID,
		Name:           strings.TrimSpace(input.Name),
		Kind:           input.Kind,
		Currency:       strings.ToUpper(strings.TrimSpace(input.Currency)),
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		AllowNegative:  input.AllowNegative,
		IsActive:       true,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID within a business.
func (uc *AccountUseCase) GetAccount(ctx context.Context, businessID, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, businessID, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	BusinessID string
	Limit      int
	Offset     int
}

// ListAccounts lists a business's accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, input.BusinessID, limit, offset)
}
