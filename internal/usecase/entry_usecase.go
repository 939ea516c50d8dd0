package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/infrastructure/metrics"
)

// EntryUseCase handles the lifecycle of income and expense entries. Transfer
// legs are created and cancelled through the TransferUseCase; cancelling one
// leg here cancels the whole pair.
type EntryUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	auditRepo   AuditRepository
	locker      AccountLocker
	idGen       IDGenerator
	cache       BalanceCache
	retrier     Retrier
	transferUC  *TransferUseCase
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewEntryUseCase creates a new EntryUseCase. metrics may be nil.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	locker AccountLocker,
	idGen IDGenerator,
	cache BalanceCache,
	retrier Retrier,
	transferUC *TransferUseCase,
	metricsCollector *metrics.Metrics,
	logger zerolog.Logger,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		auditRepo:   auditRepo,
		locker:      locker,
		idGen:       idGen,
		cache:       cache,
		retrier:     retrier,
		transferUC:  transferUC,
		metrics:     metricsCollector,
		logger:      logger,
	}
}

// CreateEntryInput represents input for creating an income or expense entry.
type CreateEntryInput struct {
	BusinessID    string
	AccountID     string
	BookID        string
	CategoryID    string
	Kind          domain.EntryKind
	Amount        decimal.Decimal
	Currency      string
	EntryDate     time.Time
	Note          string
	PaymentMode   string
	Status        domain.EntryStatus
	AttachmentIDs []string
	CreatedBy     string
}

// CreateEntry validates and appends a new entry, updating the account's
// cached balance in the same transaction.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	if input.BusinessID == "" {
		return nil, domain.ErrMissingBusinessID
	}

	if err := domain.ValidateEntryKind(input.Kind); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = domain.EntryStatusPending
	}

	if input.Status != domain.EntryStatusPending && input.Status != domain.EntryStatusCleared {
		return nil, domain.ErrInvalidStatusTransition
	}

	release, err := uc.locker.Acquire(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var entry *domain.Entry

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		entry, txErr = uc.createEntryTx(ctx, input)

		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.AccountID)

	if uc.metrics != nil {
		uc.metrics.EntriesCreated.WithLabelValues(string(entry.Kind)).Inc()
		uc.metrics.EntryAmount.WithLabelValues(string(entry.Kind)).Observe(entry.Amount.InexactFloat64())
	}

	return entry, nil
}

func (uc *EntryUseCase) createEntryTx(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.BusinessID, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if input.Currency != "" && input.Currency != account.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	now := time.Now().UTC()

	entry := &domain.Entry{
		ID:            uc.idGen.Generate(),
		BusinessID:    input.BusinessID,
		AccountID:     input.AccountID,
		BookID:        input.BookID,
		CategoryID:    input.CategoryID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		Currency:      account.Currency,
		EntryDate:     domain.NormalizeDate(input.EntryDate),
		Note:          input.Note,
		PaymentMode:   input.PaymentMode,
		Status:        input.Status,
		AttachmentIDs: input.AttachmentIDs,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	delta := entry.SignedAmount()

	if err := account.ValidateDelta(delta); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDelta(delta), now); err != nil {
		return nil, err
	}

	if err := uc.audit(ctx, tx, input.BusinessID, input.CreatedBy, domain.AuditActionCreate, entry.ID, nil, entryState(entry)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetEntry retrieves an entry by ID within a business.
func (uc *EntryUseCase) GetEntry(ctx context.Context, businessID, entryID string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, businessID, entryID)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	BusinessID string
	AccountID  string
	Range      DateRange
	Limit      int
	Offset     int
}

// ListEntries lists an account's entries in canonical order.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, input.Range, limit, offset)
}

// UpdateEntryInput patches an entry. Nil fields are left unchanged.
type UpdateEntryInput struct {
	BusinessID  string
	EntryID     string
	Amount      *decimal.Decimal
	EntryDate   *time.Time
	Note        *string
	CategoryID  *string
	BookID      *string
	PaymentMode *string
	Status      *domain.EntryStatus
	UpdatedBy   string
}

// UpdateEntry edits an entry in place. Reconciled entries are immutable;
// amount and date of transfer legs can only change through UpdateTransfer,
// which re-validates both sides.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, input UpdateEntryInput) (*domain.Entry, error) {
	if input.Amount != nil {
		if err := domain.ValidateAmount(*input.Amount); err != nil {
			return nil, err
		}
	}

	if input.Status != nil {
		if err := domain.ValidateEntryStatus(*input.Status); err != nil {
			return nil, err
		}

		if *input.Status == domain.EntryStatusCancelled {
			return nil, domain.ErrInvalidStatusTransition
		}
	}

	existing, err := uc.entryRepo.GetByID(ctx, input.BusinessID, input.EntryID)
	if err != nil {
		return nil, err
	}

	if existing.Kind.IsTransfer() && (input.Amount != nil || input.EntryDate != nil || input.Status != nil) {
		return nil, domain.ErrTransferLegEdit
	}

	release, err := uc.locker.Acquire(ctx, existing.AccountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var entry *domain.Entry

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		entry, txErr = uc.updateEntryTx(ctx, input)

		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, existing.AccountID)

	return entry, nil
}

func (uc *EntryUseCase) updateEntryTx(ctx context.Context, input UpdateEntryInput) (*domain.Entry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, input.BusinessID, input.EntryID)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.BusinessID, entry.AccountID)
	if err != nil {
		return nil, err
	}

	before := entryState(entry)

	if input.Status != nil {
		if err := entry.TransitionTo(*input.Status); err != nil {
			return nil, err
		}
	}

	changesFields := input.Amount != nil || input.EntryDate != nil || input.Note != nil ||
		input.CategoryID != nil || input.BookID != nil || input.PaymentMode != nil

	if changesFields && !entry.Editable() {
		return nil, domain.ErrEntryImmutable
	}

	oldSigned := entry.SignedAmount()

	if input.Amount != nil {
		entry.Amount = *input.Amount
	}

	if input.EntryDate != nil {
		entry.EntryDate = domain.NormalizeDate(*input.EntryDate)
	}

	if input.Note != nil {
		entry.Note = *input.Note
	}

	if input.CategoryID != nil {
		entry.CategoryID = *input.CategoryID
	}

	if input.BookID != nil {
		entry.BookID = *input.BookID
	}

	if input.PaymentMode != nil {
		entry.PaymentMode = *input.PaymentMode
	}

	now := time.Now().UTC()
	delta := entry.SignedAmount().Sub(oldSigned)

	if err := account.ValidateDelta(delta); err != nil {
		return nil, err
	}

	entry.UpdatedAt = now

	if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDelta(delta), now); err != nil {
			return nil, err
		}
	}

	if err := uc.audit(ctx, tx, input.BusinessID, input.UpdatedBy, domain.AuditActionUpdate, entry.ID, before, entryState(entry)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// CancelEntry soft-cancels an entry. Entries are never physically deleted.
// Cancelling an already-cancelled entry is a no-op success. A transfer leg
// cancels the whole pair. A reconciled entry is preserved and undone by an
// explicit reversing entry instead.
func (uc *EntryUseCase) CancelEntry(ctx context.Context, businessID, entryID, actor string) error {
	existing, err := uc.entryRepo.GetByID(ctx, businessID, entryID)
	if err != nil {
		return err
	}

	if existing.TransferGroupID != "" {
		return uc.transferUC.CancelTransfer(ctx, businessID, existing.TransferGroupID, actor)
	}

	release, err := uc.locker.Acquire(ctx, existing.AccountID)
	if err != nil {
		return err
	}
	defer release()

	err = uc.retrier.Retry(ctx, func() error {
		return uc.cancelEntryTx(ctx, businessID, entryID, actor)
	})
	if err != nil {
		return err
	}

	uc.invalidateBalance(ctx, existing.AccountID)

	if uc.metrics != nil {
		switch existing.Status {
		case domain.EntryStatusReconciled:
			uc.metrics.EntriesReversed.Inc()
		case domain.EntryStatusCancelled:
		default:
			uc.metrics.EntriesCancelled.WithLabelValues(string(existing.Kind)).Inc()
		}
	}

	return nil
}

func (uc *EntryUseCase) cancelEntryTx(ctx context.Context, businessID, entryID, actor string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, businessID, entryID)
	if err != nil {
		return err
	}

	if entry.Status == domain.EntryStatusCancelled {
		return tx.Commit(ctx)
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, businessID, entry.AccountID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if entry.Status == domain.EntryStatusReconciled {
		return uc.appendReversingEntry(ctx, tx, account, entry, actor, now)
	}

	before := entryState(entry)
	delta := entry.SignedAmount().Neg()

	if err := entry.TransitionTo(domain.EntryStatusCancelled); err != nil {
		return err
	}

	if err := account.ValidateDelta(delta); err != nil {
		return err
	}

	entry.UpdatedAt = now

	if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDelta(delta), now); err != nil {
		return err
	}

	if err := uc.audit(ctx, tx, businessID, actor, domain.AuditActionCancel, entry.ID, before, entryState(entry)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// appendReversingEntry undoes a reconciled entry with an opposite entry,
// leaving the original untouched.
func (uc *EntryUseCase) appendReversingEntry(ctx context.Context, tx Transaction, account *domain.Account, original *domain.Entry, actor string, now time.Time) error {
	kind := domain.EntryKindExpense
	if original.Kind == domain.EntryKindExpense {
		kind = domain.EntryKindIncome
	}

	reversal := &domain.Entry{
		ID:              uc.idGen.Generate(),
		BusinessID:      original.BusinessID,
		AccountID:       original.AccountID,
		BookID:          original.BookID,
		CategoryID:      original.CategoryID,
		Kind:            kind,
		Amount:          original.Amount,
		Currency:        original.Currency,
		EntryDate:       domain.NormalizeDate(now),
		Note:            "reversal of entry " + original.ID,
		PaymentMode:     original.PaymentMode,
		Status:          domain.EntryStatusCleared,
		ReversedEntryID: original.ID,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	delta := reversal.SignedAmount()

	if err := account.ValidateDelta(delta); err != nil {
		return err
	}

	if err := uc.entryRepo.Append(ctx, tx, reversal); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDelta(delta), now); err != nil {
		return err
	}

	if err := uc.audit(ctx, tx, original.BusinessID, actor, domain.AuditActionCancel, original.ID, entryState(original), entryState(reversal)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *EntryUseCase) invalidateBalance(ctx context.Context, accountID string) {
	if err := uc.cache.Invalidate(ctx, accountID); err != nil {
		uc.logger.Warn().Str("account_id", accountID).Err(err).Msg("failed to invalidate balance cache")
	}
}

func (uc *EntryUseCase) audit(ctx context.Context, tx Transaction, businessID, actor string, action domain.AuditAction, resourceID string, before, after map[string]any) error {
	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		BusinessID:   businessID,
		Actor:        actor,
		Action:       action,
		ResourceType: "entry",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		CreatedAt:    time.Now().UTC(),
	})
}

func entryState(e *domain.Entry) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"account_id": e.AccountID,
		"kind":       string(e.Kind),
		"amount":     e.Amount.String(),
		"entry_date": e.EntryDate.Format("2006-01-02"),
		"status":     string(e.Status),
		"note":       e.Note,
	}
}
