package usecase

import (
	"context"

	"github.com/cashify/ledger/internal/domain"
)

// AuditUseCase exposes the audit trail written alongside every mutation.
type AuditUseCase struct {
	auditRepo AuditRepository
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(auditRepo AuditRepository) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo}
}

// ListAuditLogsInput represents input for listing audit logs.
type ListAuditLogsInput struct {
	BusinessID   string
	ResourceType string
	ResourceID   string
	Action       domain.AuditAction
	Limit        int
	Offset       int
}

// ListAuditLogs lists a business's audit logs, newest first.
func (uc *AuditUseCase) ListAuditLogs(ctx context.Context, input ListAuditLogsInput) ([]*domain.AuditLog, error) {
	if input.BusinessID == "" {
		return nil, domain.ErrMissingBusinessID
	}

	if input.Action != "" {
		switch input.Action {
		case domain.AuditActionCreate, domain.AuditActionUpdate, domain.AuditActionCancel:
		default:
			return nil, domain.ErrInvalidAuditAction
		}
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.auditRepo.List(ctx, domain.AuditFilter{
		BusinessID:   input.BusinessID,
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		Action:       input.Action,
		Limit:        limit,
		Offset:       offset,
	})
}
