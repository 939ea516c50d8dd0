package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/usecase"
)

const entryColumns = `id, business_id, account_id, book_id, category_id, kind, amount, currency,
	entry_date, note, payment_mode, status, linked_entry_id, transfer_group_id,
	reversed_entry_id, attachment_ids, created_by, created_at, updated_at, seq`

// EntryRepository implements usecase.EntryRepository. The seq column is a
// BIGSERIAL assigned at append time; (entry_date, seq) is the canonical
// replay order for every listing this repository returns.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Append inserts a new entry and fills in its assigned sequence number.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO entries (
			id, business_id, account_id, book_id, category_id, kind, amount, currency,
			entry_date, note, payment_mode, status, linked_entry_id, transfer_group_id,
			reversed_entry_id, attachment_ids, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING seq
	`

	return pgxTx.QueryRow(ctx, query,
		entry.ID,
		entry.BusinessID,
		entry.AccountID,
		nullIfEmpty(entry.BookID),
		nullIfEmpty(entry.CategoryID),
		string(entry.Kind),
		decimalToNumeric(entry.Amount),
		entry.Currency,
		dateToPgDate(entry.EntryDate),
		entry.Note,
		entry.PaymentMode,
		string(entry.Status),
		nullIfEmpty(entry.LinkedEntryID),
		nullIfEmpty(entry.TransferGroupID),
		nullIfEmpty(entry.ReversedEntryID),
		emptyIfNil(entry.AttachmentIDs),
		entry.CreatedBy,
		timeToPgTimestamptz(entry.CreatedAt),
		timeToPgTimestamptz(entry.UpdatedAt),
	).Scan(&entry.Seq)
}

// GetByID retrieves an entry by ID within a business.
func (r *EntryRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND id = $2`

	return r.scanEntry(r.pool.QueryRow(ctx, query, businessID, id))
}

// GetByIDForUpdate retrieves an entry with a FOR UPDATE row lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, businessID, id string) (*domain.Entry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND id = $2 FOR UPDATE`

	return r.scanEntry(pgxTx.QueryRow(ctx, query, businessID, id))
}

// GetByGroup retrieves the legs of a transfer group.
func (r *EntryRepository) GetByGroup(ctx context.Context, businessID, groupID string) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND transfer_group_id = $2 ORDER BY seq`

	return r.queryEntries(ctx, r.pool, query, businessID, groupID)
}

// GetByGroupForUpdate retrieves the legs of a transfer group with FOR UPDATE
// row locks.
func (r *EntryRepository) GetByGroupForUpdate(ctx context.Context, tx usecase.Transaction, businessID, groupID string) ([]*domain.Entry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND transfer_group_id = $2 ORDER BY seq FOR UPDATE`

	return r.queryEntries(ctx, pgxTx, query, businessID, groupID)
}

// ListByAccount lists an account's entries in canonical order, optionally
// bounded by a date range.
func (r *EntryRepository) ListByAccount(ctx context.Context, businessID, accountID string, rng usecase.DateRange, limit, offset int) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND account_id = $2`
	args := []any{businessID, accountID}

	if !rng.From.IsZero() {
		args = append(args, dateToPgDate(rng.From))
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}

	if !rng.To.IsZero() {
		args = append(args, dateToPgDate(rng.To))
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY entry_date, seq LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.queryEntries(ctx, r.pool, query, args...)
}

// ListForReplay returns every entry of an account in canonical order, up to
// and including the given date when one is set. Used for balance replay, so
// it is deliberately unpaginated.
func (r *EntryRepository) ListForReplay(ctx context.Context, businessID, accountID string, until time.Time) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE business_id = $1 AND account_id = $2`
	args := []any{businessID, accountID}

	if !until.IsZero() {
		args = append(args, dateToPgDate(until))
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}

	query += " ORDER BY entry_date, seq"

	return r.queryEntries(ctx, r.pool, query, args...)
}

// Update persists changes to an entry's mutable fields.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE entries
		SET amount = $2, entry_date = $3, note = $4, category_id = $5, book_id = $6,
			payment_mode = $7, status = $8, attachment_ids = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		entry.ID,
		decimalToNumeric(entry.Amount),
		dateToPgDate(entry.EntryDate),
		entry.Note,
		nullIfEmpty(entry.CategoryID),
		nullIfEmpty(entry.BookID),
		entry.PaymentMode,
		string(entry.Status),
		emptyIfNil(entry.AttachmentIDs),
		timeToPgTimestamptz(entry.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *EntryRepository) queryEntries(ctx context.Context, q querier, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry

	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *EntryRepository) scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		e               domain.Entry
		bookID          pgtype.Text
		categoryID      pgtype.Text
		kind            string
		amount          pgtype.Numeric
		entryDate       pgtype.Date
		status          string
		linkedEntryID   pgtype.Text
		transferGroupID pgtype.Text
		reversedEntryID pgtype.Text
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
	)

	err := row.Scan(
		&e.ID,
		&e.BusinessID,
		&e.AccountID,
		&bookID,
		&categoryID,
		&kind,
		&amount,
		&e.Currency,
		&entryDate,
		&e.Note,
		&e.PaymentMode,
		&status,
		&linkedEntryID,
		&transferGroupID,
		&reversedEntryID,
		&e.AttachmentIDs,
		&e.CreatedBy,
		&createdAt,
		&updatedAt,
		&e.Seq,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	e.BookID = bookID.String
	e.CategoryID = categoryID.String
	e.Kind = domain.EntryKind(kind)
	e.Amount = numericToDecimal(amount)
	e.EntryDate = domain.NormalizeDate(entryDate.Time)
	e.Status = domain.EntryStatus(status)
	e.LinkedEntryID = linkedEntryID.String
	e.TransferGroupID = transferGroupID.String
	e.ReversedEntryID = reversedEntryID.String
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}

func nullIfEmpty(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// emptyIfNil keeps a nil slice from encoding as SQL NULL, which the
// NOT NULL attachment_ids column rejects.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
