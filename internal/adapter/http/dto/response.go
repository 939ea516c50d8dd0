package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	AllowNegative  bool            `json:"allow_negative"`
	IsActive       bool            `json:"is_active"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Kind:           string(a.Kind),
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		AllowNegative:  a.AllowNegative,
		IsActive:       a.IsActive,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	BookID          string          `json:"book_id,omitempty"`
	CategoryID      string          `json:"category_id,omitempty"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	EntryDate       time.Time       `json:"entry_date"`
	Note            string          `json:"note,omitempty"`
	PaymentMode     string          `json:"payment_mode,omitempty"`
	Status          string          `json:"status"`
	LinkedEntryID   string          `json:"linked_entry_id,omitempty"`
	TransferGroupID string          `json:"transfer_group_id,omitempty"`
	ReversedEntryID string          `json:"reversed_entry_id,omitempty"`
	AttachmentIDs   []string        `json:"attachment_ids,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		BookID:          e.BookID,
		CategoryID:      e.CategoryID,
		Kind:            string(e.Kind),
		Amount:          e.Amount,
		Currency:        e.Currency,
		EntryDate:       e.EntryDate,
		Note:            e.Note,
		PaymentMode:     e.PaymentMode,
		Status:          string(e.Status),
		LinkedEntryID:   e.LinkedEntryID,
		TransferGroupID: e.TransferGroupID,
		ReversedEntryID: e.ReversedEntryID,
		AttachmentIDs:   e.AttachmentIDs,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TransferResponse represents a transfer pair in API responses.
type TransferResponse struct {
	GroupID       string          `json:"group_id"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	EntryDate     time.Time       `json:"entry_date"`
	Note          string          `json:"note,omitempty"`
	Status        string          `json:"status"`
	OutEntryID    string          `json:"out_entry_id"`
	InEntryID     string          `json:"in_entry_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		GroupID:       t.GroupID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		EntryDate:     t.EntryDate,
		Note:          t.Note,
		Status:        string(t.Status),
		OutEntryID:    t.OutEntryID,
		InEntryID:     t.InEntryID,
		CreatedAt:     t.CreatedAt,
	}
}

// BalanceResponse reports an account's current balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	AsOf      time.Time       `json:"as_of"`
}

// RunningBalanceResponse is one row of an entry listing with the balance
// after that entry.
type RunningBalanceResponse struct {
	Entry        *EntryResponse  `json:"entry"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// RunningBalancesFromDomain converts running balance rows to responses.
func RunningBalancesFromDomain(rows []usecase.RunningBalance) []*RunningBalanceResponse {
	result := make([]*RunningBalanceResponse, len(rows))
	for i, row := range rows {
		result[i] = &RunningBalanceResponse{
			Entry:        EntryFromDomain(row.Entry),
			BalanceAfter: row.BalanceAfter,
		}
	}
	return result
}

// ReconciliationResponse reports a cached-vs-replayed balance comparison.
type ReconciliationResponse struct {
	AccountID     string          `json:"account_id"`
	CachedBalance decimal.Decimal `json:"cached_balance"`
	ReplayBalance decimal.Decimal `json:"replay_balance"`
	Difference    decimal.Decimal `json:"difference"`
	Consistent    bool            `json:"consistent"`
	CheckedAt     time.Time       `json:"checked_at"`
}

// ReconciliationFromResult converts a reconciliation result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:     r.AccountID,
		CachedBalance: r.CachedBalance,
		ReplayBalance: r.ReplayBalance,
		Difference:    r.Difference,
		Consistent:    r.Consistent,
		CheckedAt:     r.CheckedAt,
	}
}

// ReconciliationsFromResults converts reconciliation results to responses.
func ReconciliationsFromResults(results []*usecase.ReconciliationResult) []*ReconciliationResponse {
	out := make([]*ReconciliationResponse, len(results))
	for i, r := range results {
		out[i] = ReconciliationFromResult(r)
	}
	return out
}

// AuditLogResponse represents an audit log in API responses.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Actor        string         `json:"actor,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	out := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		out[i] = &AuditLogResponse{
			ID:           l.ID,
			Actor:        l.Actor,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			CreatedAt:    l.CreatedAt,
		}
	}
	return out
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
