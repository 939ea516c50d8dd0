package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/infrastructure/metrics"
)

// TransferUseCase coordinates linked entry pairs representing money moving
// between two accounts. Both legs are written inside one storage transaction:
// a partial transfer is never observable.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	auditRepo   AuditRepository
	locker      AccountLocker
	idGen       IDGenerator
	cache       BalanceCache
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase. metrics may be nil.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	locker AccountLocker,
	idGen IDGenerator,
	cache BalanceCache,
	retrier Retrier,
	metricsCollector *metrics.Metrics,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		auditRepo:   auditRepo,
		locker:      locker,
		idGen:       idGen,
		cache:       cache,
		retrier:     retrier,
		metrics:     metricsCollector,
		logger:      logger,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	BusinessID    string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	EntryDate     time.Time
	Note          string
	CreatedBy     string
}

// CreateTransfer appends a transfer-out entry on the source account and a
// transfer-in entry on the destination account, linked to each other and
// sharing one group ID, atomically.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	start := time.Now()

	if input.BusinessID == "" {
		return nil, domain.ErrMissingBusinessID
	}

	transfer := &domain.Transfer{
		GroupID:       uc.idGen.Generate(),
		BusinessID:    input.BusinessID,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		EntryDate:     domain.NormalizeDate(input.EntryDate),
		Note:          input.Note,
		Status:        domain.EntryStatusCleared,
		CreatedBy:     input.CreatedBy,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	accountIDs := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(accountIDs)

	release, err := uc.locker.Acquire(ctx, accountIDs...)
	if err != nil {
		return nil, err
	}
	defer release()

	err = uc.retrier.Retry(ctx, func() error {
		return uc.createTransferTx(ctx, transfer, accountIDs)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, input.FromAccountID, input.ToAccountID)

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}

	return transfer, nil
}

func (uc *TransferUseCase) createTransferTx(ctx context.Context, transfer *domain.Transfer, sortedAccountIDs []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, transfer.BusinessID, sortedAccountIDs)
	if err != nil {
		return err
	}

	if len(accounts) != len(sortedAccountIDs) {
		return domain.ErrAccountNotFound
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	from := byID[transfer.FromAccountID]
	to := byID[transfer.ToAccountID]

	if !from.IsActive || !to.IsActive {
		return domain.ErrAccountInactive
	}

	if from.Currency != to.Currency {
		return domain.ErrCurrencyMismatch
	}

	if err := from.ValidateDelta(transfer.Amount.Neg()); err != nil {
		return err
	}

	now := time.Now().UTC()
	outID := uc.idGen.Generate()
	inID := uc.idGen.Generate()

	out := &domain.Entry{
		ID:              outID,
		BusinessID:      transfer.BusinessID,
		AccountID:       from.ID,
		Kind:            domain.EntryKindTransferOut,
		Amount:          transfer.Amount,
		Currency:        from.Currency,
		EntryDate:       transfer.EntryDate,
		Note:            transfer.Note,
		Status:          transfer.Status,
		LinkedEntryID:   inID,
		TransferGroupID: transfer.GroupID,
		CreatedBy:       transfer.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	in := &domain.Entry{
		ID:              inID,
		BusinessID:      transfer.BusinessID,
		AccountID:       to.ID,
		Kind:            domain.EntryKindTransferIn,
		Amount:          transfer.Amount,
		Currency:        to.Currency,
		EntryDate:       transfer.EntryDate,
		Note:            transfer.Note,
		Status:          transfer.Status,
		LinkedEntryID:   outID,
		TransferGroupID: transfer.GroupID,
		CreatedBy:       transfer.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.entryRepo.Append(ctx, tx, out); err != nil {
		return err
	}

	if err := uc.entryRepo.Append(ctx, tx, in); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, from.ID, from.ApplyDelta(transfer.Amount.Neg()), now); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, to.ID, to.ApplyDelta(transfer.Amount), now); err != nil {
		return err
	}

	if err := uc.audit(ctx, tx, transfer.BusinessID, transfer.CreatedBy, domain.AuditActionCreate, transfer.GroupID, nil, transferState(transfer)); err != nil {
		return err
	}

	transfer.OutEntryID = outID
	transfer.InEntryID = inID
	transfer.CreatedAt = now

	return tx.Commit(ctx)
}

// GetTransfer returns the transfer view for a group ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, businessID, groupID string) (*domain.Transfer, error) {
	legs, err := uc.entryRepo.GetByGroup(ctx, businessID, groupID)
	if err != nil {
		return nil, err
	}

	return uc.pairFromLegs(groupID, legs)
}

// UpdateTransferInput patches both legs of a transfer together. Nil fields
// are left unchanged.
type UpdateTransferInput struct {
	BusinessID string
	GroupID    string
	Amount     *decimal.Decimal
	EntryDate  *time.Time
	Note       *string
	Status     *domain.EntryStatus
	UpdatedBy  string
}

// UpdateTransfer re-validates and applies changes to both legs in one
// transaction. Legs are never edited independently.
func (uc *TransferUseCase) UpdateTransfer(ctx context.Context, input UpdateTransferInput) (*domain.Transfer, error) {
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

	transfer, err := uc.GetTransfer(ctx, input.BusinessID, input.GroupID)
	if err != nil {
		return nil, err
	}

	accountIDs := []string{transfer.FromAccountID, transfer.ToAccountID}
	sort.Strings(accountIDs)

	release, err := uc.locker.Acquire(ctx, accountIDs...)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *domain.Transfer

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		updated, txErr = uc.updateTransferTx(ctx, input, accountIDs)

		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, transfer.FromAccountID, transfer.ToAccountID)

	return updated, nil
}

func (uc *TransferUseCase) updateTransferTx(ctx context.Context, input UpdateTransferInput, sortedAccountIDs []string) (*domain.Transfer, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, input.BusinessID, sortedAccountIDs)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(sortedAccountIDs) {
		return nil, domain.ErrAccountNotFound
	}

	legs, err := uc.entryRepo.GetByGroupForUpdate(ctx, tx, input.BusinessID, input.GroupID)
	if err != nil {
		return nil, err
	}

	transfer, err := uc.pairFromLegs(input.GroupID, legs)
	if err != nil {
		return nil, err
	}

	before := transferState(transfer)

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	now := time.Now().UTC()

	for _, leg := range legs {
		if input.Status != nil {
			if err := leg.TransitionTo(*input.Status); err != nil {
				return nil, err
			}
		}

		changesFields := input.Amount != nil || input.EntryDate != nil || input.Note != nil
		if changesFields && !leg.Editable() {
			return nil, domain.ErrEntryImmutable
		}

		oldSigned := leg.SignedAmount()

		if input.Amount != nil {
			leg.Amount = *input.Amount
		}

		if input.EntryDate != nil {
			leg.EntryDate = domain.NormalizeDate(*input.EntryDate)
		}

		if input.Note != nil {
			leg.Note = *input.Note
		}

		delta := leg.SignedAmount().Sub(oldSigned)
		account := byID[leg.AccountID]

		if err := account.ValidateDelta(delta); err != nil {
			return nil, err
		}

		leg.UpdatedAt = now

		if err := uc.entryRepo.Update(ctx, tx, leg); err != nil {
			return nil, err
		}

		if !delta.IsZero() {
			newBalance := account.ApplyDelta(delta)
			if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
				return nil, err
			}

			account.CurrentBalance = newBalance
		}
	}

	updated, err := uc.pairFromLegs(input.GroupID, legs)
	if err != nil {
		return nil, err
	}

	if err := uc.audit(ctx, tx, input.BusinessID, input.UpdatedBy, domain.AuditActionUpdate, input.GroupID, before, transferState(updated)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// CancelTransfer cancels both legs of a transfer atomically. Cancelling an
// already-cancelled transfer is a no-op. A reconciled transfer is not
// cancelled in place: a reversing pair is appended instead.
func (uc *TransferUseCase) CancelTransfer(ctx context.Context, businessID, groupID, actor string) error {
	transfer, err := uc.GetTransfer(ctx, businessID, groupID)
	if err != nil {
		return err
	}

	accountIDs := []string{transfer.FromAccountID, transfer.ToAccountID}
	sort.Strings(accountIDs)

	release, err := uc.locker.Acquire(ctx, accountIDs...)
	if err != nil {
		return err
	}
	defer release()

	err = uc.retrier.Retry(ctx, func() error {
		return uc.cancelTransferTx(ctx, businessID, groupID, actor, accountIDs)
	})
	if err != nil {
		return err
	}

	uc.invalidateBalances(ctx, transfer.FromAccountID, transfer.ToAccountID)

	if uc.metrics != nil && transfer.Status != domain.EntryStatusCancelled {
		uc.metrics.TransfersCancelled.Inc()
	}

	return nil
}

func (uc *TransferUseCase) cancelTransferTx(ctx context.Context, businessID, groupID, actor string, sortedAccountIDs []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, businessID, sortedAccountIDs)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	legs, err := uc.entryRepo.GetByGroupForUpdate(ctx, tx, businessID, groupID)
	if err != nil {
		return err
	}

	transfer, err := uc.pairFromLegs(groupID, legs)
	if err != nil {
		return err
	}

	if transfer.Status == domain.EntryStatusCancelled {
		// Idempotent: both legs already cancelled.
		return tx.Commit(ctx)
	}

	now := time.Now().UTC()

	if transfer.Status == domain.EntryStatusReconciled {
		if err := uc.appendReversalPair(ctx, tx, byID, legs, actor, now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	before := transferState(transfer)

	for _, leg := range legs {
		if err := leg.TransitionTo(domain.EntryStatusCancelled); err != nil {
			return err
		}

		delta := leg.Amount
		if leg.Kind.IsCredit() {
			delta = leg.Amount.Neg()
		}

		account := byID[leg.AccountID]
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if err := account.ValidateDelta(delta); err != nil {
			return err
		}

		leg.UpdatedAt = now

		if err := uc.entryRepo.Update(ctx, tx, leg); err != nil {
			return err
		}

		newBalance := account.ApplyDelta(delta)
		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
			return err
		}

		account.CurrentBalance = newBalance
	}

	transfer.Status = domain.EntryStatusCancelled

	if err := uc.audit(ctx, tx, businessID, actor, domain.AuditActionCancel, groupID, before, transferState(transfer)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// appendReversalPair creates a new transfer pair undoing a reconciled
// transfer, leaving the original pair intact.
func (uc *TransferUseCase) appendReversalPair(ctx context.Context, tx Transaction, byID map[string]*domain.Account, legs []*domain.Entry, actor string, now time.Time) error {
	var origOut, origIn *domain.Entry
	for _, leg := range legs {
		if leg.Kind == domain.EntryKindTransferOut {
			origOut = leg
		} else {
			origIn = leg
		}
	}

	newGroup := uc.idGen.Generate()
	outID := uc.idGen.Generate()
	inID := uc.idGen.Generate()

	// Money flows back: the original destination pays the original source.
	revOut := &domain.Entry{
		ID:              outID,
		BusinessID:      origIn.BusinessID,
		AccountID:       origIn.AccountID,
		Kind:            domain.EntryKindTransferOut,
		Amount:          origIn.Amount,
		Currency:        origIn.Currency,
		EntryDate:       domain.NormalizeDate(now),
		Note:            "reversal of transfer " + origIn.TransferGroupID,
		Status:          domain.EntryStatusCleared,
		LinkedEntryID:   inID,
		TransferGroupID: newGroup,
		ReversedEntryID: origIn.ID,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	revIn := &domain.Entry{
		ID:              inID,
		BusinessID:      origOut.BusinessID,
		AccountID:       origOut.AccountID,
		Kind:            domain.EntryKindTransferIn,
		Amount:          origOut.Amount,
		Currency:        origOut.Currency,
		EntryDate:       domain.NormalizeDate(now),
		Note:            "reversal of transfer " + origOut.TransferGroupID,
		Status:          domain.EntryStatusCleared,
		LinkedEntryID:   outID,
		TransferGroupID: newGroup,
		ReversedEntryID: origOut.ID,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	payer := byID[revOut.AccountID]
	payee := byID[revIn.AccountID]

	if payer == nil || payee == nil {
		return domain.ErrAccountNotFound
	}

	if err := payer.ValidateDelta(revOut.Amount.Neg()); err != nil {
		return err
	}

	if err := uc.entryRepo.Append(ctx, tx, revOut); err != nil {
		return err
	}

	if err := uc.entryRepo.Append(ctx, tx, revIn); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, payer.ID, payer.ApplyDelta(revOut.Amount.Neg()), now); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, payee.ID, payee.ApplyDelta(revIn.Amount), now); err != nil {
		return err
	}

	return uc.audit(ctx, tx, origOut.BusinessID, actor, domain.AuditActionCancel, newGroup, map[string]any{"reversed_group_id": origOut.TransferGroupID}, nil)
}

// pairFromLegs validates the loaded legs and builds the transfer view. An
// orphaned half-transfer is fatal corruption and is never repaired here.
func (uc *TransferUseCase) pairFromLegs(groupID string, legs []*domain.Entry) (*domain.Transfer, error) {
	switch len(legs) {
	case 0:
		return nil, domain.ErrTransferNotFound
	case 2:
	default:
		uc.logger.Error().
			Str("transfer_group_id", groupID).
			Int("leg_count", len(legs)).
			Msg("orphaned transfer leg detected")

		if uc.metrics != nil {
			uc.metrics.ConsistencyViolations.WithLabelValues("orphaned_transfer_leg").Inc()
		}

		return nil, domain.ErrConsistencyViolation
	}

	var out, in *domain.Entry
	for _, leg := range legs {
		switch leg.Kind {
		case domain.EntryKindTransferOut:
			out = leg
		case domain.EntryKindTransferIn:
			in = leg
		}
	}

	transfer, err := domain.FromPair(out, in)
	if err != nil {
		uc.logger.Error().
			Str("transfer_group_id", groupID).
			Err(err).
			Msg("transfer pair failed validation")

		if uc.metrics != nil {
			uc.metrics.ConsistencyViolations.WithLabelValues("transfer_pair_mismatch").Inc()
		}

		return nil, err
	}

	return transfer, nil
}

func (uc *TransferUseCase) invalidateBalances(ctx context.Context, accountIDs ...string) {
	for _, id := range accountIDs {
		if err := uc.cache.Invalidate(ctx, id); err != nil {
			uc.logger.Warn().Str("account_id", id).Err(err).Msg("failed to invalidate balance cache")
		}
	}
}

func (uc *TransferUseCase) audit(ctx context.Context, tx Transaction, businessID, actor string, action domain.AuditAction, resourceID string, before, after map[string]any) error {
	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		BusinessID:   businessID,
		Actor:        actor,
		Action:       action,
		ResourceType: "transfer",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		CreatedAt:    time.Now().UTC(),
	})
}

func transferState(t *domain.Transfer) map[string]any {
	return map[string]any{
		"group_id":        t.GroupID,
		"from_account_id": t.FromAccountID,
		"to_account_id":   t.ToAccountID,
		"amount":          t.Amount.String(),
		"entry_date":      t.EntryDate.Format("2006-01-02"),
		"status":          string(t.Status),
	}
}
