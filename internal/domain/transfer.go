package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer describes a money movement between two accounts of one business,
// materialized as a linked pair of entries (transfer_out, transfer_in)
// sharing GroupID. The pair is created and cancelled atomically.
type Transfer struct {
	GroupID         string
	BusinessID      string
	FromAccountID   string
	ToAccountID     string
	Amount          decimal.Decimal
	EntryDate       time.Time
	Note            string
	Status          EntryStatus
	ReversedGroupID string // set when this pair reverses a reconciled transfer
	OutEntryID      string
	InEntryID       string
	CreatedBy       string
	CreatedAt       time.Time
}

// Validate checks transfer preconditions before any write.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccountTransfer
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// FromPair reconstructs a Transfer view from its two legs. It returns
// ErrConsistencyViolation when the legs do not form a valid pair.
func FromPair(out, in *Entry) (*Transfer, error) {
	if out == nil || in == nil {
		return nil, ErrConsistencyViolation
	}

	if out.Kind != EntryKindTransferOut || in.Kind != EntryKindTransferIn {
		return nil, ErrConsistencyViolation
	}

	if out.TransferGroupID == "" || out.TransferGroupID != in.TransferGroupID {
		return nil, ErrConsistencyViolation
	}

	if out.LinkedEntryID != in.ID || in.LinkedEntryID != out.ID {
		return nil, ErrConsistencyViolation
	}

	if !out.Amount.Equal(in.Amount) || out.AccountID == in.AccountID {
		return nil, ErrConsistencyViolation
	}

	return &Transfer{
		GroupID:       out.TransferGroupID,
		BusinessID:    out.BusinessID,
		FromAccountID: out.AccountID,
		ToAccountID:   in.AccountID,
		Amount:        out.Amount,
		EntryDate:     out.EntryDate,
		Note:          out.Note,
		Status:        out.Status,
		OutEntryID:    out.ID,
		InEntryID:     in.ID,
		CreatedBy:     out.CreatedBy,
		CreatedAt:     out.CreatedAt,
	}, nil
}
