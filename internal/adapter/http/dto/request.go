package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	AllowNegative  bool            `json:"allow_negative"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(businessID, actor string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		BusinessID:     businessID,
		Name:           r.Name,
		Kind:           domain.AccountKind(r.Kind),
		Currency:       r.Currency,
		InitialBalance: r.InitialBalance,
		AllowNegative:  r.AllowNegative,
		CreatedBy:      actor,
	}
}

// CreateEntryRequest represents a request to create an income or expense
// entry. Transfer legs are never created through this request.
type CreateEntryRequest struct {
	AccountID     string          `json:"account_id"`
	BookID        string          `json:"book_id,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	EntryDate     time.Time       `json:"entry_date"`
	Note          string          `json:"note,omitempty"`
	PaymentMode   string          `json:"payment_mode,omitempty"`
	Status        string          `json:"status,omitempty"`
	AttachmentIDs []string        `json:"attachment_ids,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput(businessID, actor string) usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		BusinessID:    businessID,
		AccountID:     r.AccountID,
		BookID:        r.BookID,
		CategoryID:    r.CategoryID,
		Kind:          domain.EntryKind(r.Kind),
		Amount:        r.Amount,
		Currency:      r.Currency,
		EntryDate:     r.EntryDate,
		Note:          r.Note,
		PaymentMode:   r.PaymentMode,
		Status:        domain.EntryStatus(r.Status),
		AttachmentIDs: r.AttachmentIDs,
		CreatedBy:     actor,
	}
}

// UpdateEntryRequest patches an entry. Absent fields are left unchanged.
type UpdateEntryRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	EntryDate   *time.Time       `json:"entry_date,omitempty"`
	Note        *string          `json:"note,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty"`
	BookID      *string          `json:"book_id,omitempty"`
	PaymentMode *string          `json:"payment_mode,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateEntryRequest) ToUseCaseInput(businessID, entryID, actor string) usecase.UpdateEntryInput {
	input := usecase.UpdateEntryInput{
		BusinessID:  businessID,
		EntryID:     entryID,
		Amount:      r.Amount,
		EntryDate:   r.EntryDate,
		Note:        r.Note,
		CategoryID:  r.CategoryID,
		BookID:      r.BookID,
		PaymentMode: r.PaymentMode,
		UpdatedBy:   actor,
	}

	if r.Status != nil {
		status := domain.EntryStatus(*r.Status)
		input.Status = &status
	}

	return input
}

// CreateTransferRequest represents a request to create a transfer pair.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	EntryDate     time.Time       `json:"entry_date"`
	Note          string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(businessID, actor string) usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		BusinessID:    businessID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		EntryDate:     r.EntryDate,
		Note:          r.Note,
		CreatedBy:     actor,
	}
}

// UpdateTransferRequest patches both legs of a transfer together.
type UpdateTransferRequest struct {
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	EntryDate *time.Time       `json:"entry_date,omitempty"`
	Note      *string          `json:"note,omitempty"`
	Status    *string          `json:"status,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransferRequest) ToUseCaseInput(businessID, groupID, actor string) usecase.UpdateTransferInput {
	input := usecase.UpdateTransferInput{
		BusinessID: businessID,
		GroupID:    groupID,
		Amount:     r.Amount,
		EntryDate:  r.EntryDate,
		Note:       r.Note,
		UpdatedBy:  actor,
	}

	if r.Status != nil {
		status := domain.EntryStatus(*r.Status)
		input.Status = &status
	}

	return input
}
