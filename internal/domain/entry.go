package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies how an entry affects its account's balance.
type EntryKind string

const (
	EntryKindIncome      EntryKind = "income"
	EntryKindExpense     EntryKind = "expense"
	EntryKindTransferOut EntryKind = "transfer_out"
	EntryKindTransferIn  EntryKind = "transfer_in"
)

// IsTransfer reports whether the kind is one leg of a transfer pair.
func (k EntryKind) IsTransfer() bool {
	return k == EntryKindTransferOut || k == EntryKindTransferIn
}

// IsCredit reports whether the kind increases the account balance.
func (k EntryKind) IsCredit() bool {
	return k == EntryKindIncome || k == EntryKindTransferIn
}

// EntryStatus is the lifecycle state of an entry.
type EntryStatus string

const (
	EntryStatusPending    EntryStatus = "pending"
	EntryStatusCleared    EntryStatus = "cleared"
	EntryStatusReconciled EntryStatus = "reconciled"
	EntryStatusCancelled  EntryStatus = "cancelled"
)

// CanTransitionTo reports whether the status machine allows moving to next.
// pending -> cleared -> reconciled, and pending|cleared -> cancelled.
// cancelled is terminal; reconciled entries are only ever cancelled through
// an explicit reversing entry, never in place.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case EntryStatusPending:
		return next == EntryStatusCleared || next == EntryStatusCancelled
	case EntryStatusCleared:
		return next == EntryStatusReconciled || next == EntryStatusCancelled
	default:
		return false
	}
}

// Entry is a single financial record affecting exactly one account's balance.
// Amount is always stored positive; the sign of its balance effect is implied
// by Kind. Entries are append-mostly: deletion is modelled as cancellation.
type Entry struct {
	ID              string
	BusinessID      string
	AccountID       string
	BookID          string
	CategoryID      string
	Kind            EntryKind
	Amount          decimal.Decimal
	Currency        string
	EntryDate       time.Time // calendar date, midnight UTC
	Note            string
	PaymentMode     string
	Status          EntryStatus
	LinkedEntryID   string // set only on transfer legs, symmetric
	TransferGroupID string // correlates exactly two transfer legs
	ReversedEntryID string // set on reversing entries created for reconciled originals
	AttachmentIDs   []string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Seq             int64 // monotonic append sequence, breaks date ties
}

// SignedAmount is the entry's effect on its account balance: a pure function
// of (kind, amount, status). Cancelled entries contribute zero.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.Status == EntryStatusCancelled {
		return decimal.Zero
	}

	if e.Kind.IsCredit() {
		return e.Amount
	}

	return e.Amount.Neg()
}

// TransitionTo applies a status change, enforcing the state machine.
func (e *Entry) TransitionTo(next EntryStatus) error {
	if e.Status == next {
		return nil
	}

	if !e.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}

	e.Status = next

	return nil
}

// Editable reports whether the entry may still be modified in place.
func (e *Entry) Editable() bool {
	return e.Status == EntryStatusPending || e.Status == EntryStatusCleared
}

// NormalizeDate truncates t to its calendar date in UTC.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
