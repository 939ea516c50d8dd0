package handler

import (
	"net/http"

	"github.com/cashify/ledger/internal/adapter/http/dto"
	"github.com/cashify/ledger/internal/adapter/http/middleware"
	"github.com/cashify/ledger/internal/domain"
	"github.com/cashify/ledger/internal/usecase"
)

// AuditHandler exposes the business's audit trail.
type AuditHandler struct {
	auditUC *usecase.AuditUseCase
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditUC *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

// List lists audit logs, newest first. Optional resource_type, resource_id
// and action query parameters narrow the listing.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.auditUC.ListAuditLogs(r.Context(), usecase.ListAuditLogsInput{
		BusinessID:   middleware.BusinessID(r.Context()),
		ResourceType: r.URL.Query().Get("resource_type"),
		ResourceID:   r.URL.Query().Get("resource_id"),
		Action:       domain.AuditAction(r.URL.Query().Get("action")),
		Limit:        parseIntQuery(r, "limit", 0),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
