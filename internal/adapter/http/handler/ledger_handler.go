package handler

import (
	"net/http"

	"github.com/cashify/ledger/internal/adapter/http/dto"
	"github.com/cashify/ledger/internal/adapter/http/middleware"
	"github.com/cashify/ledger/internal/usecase"
)

// LedgerHandler exposes ledger-wide consistency checks.
type LedgerHandler struct {
	reconUC *usecase.ReconciliationUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconUC *usecase.ReconciliationUseCase) *LedgerHandler {
	return &LedgerHandler{reconUC: reconUC}
}

// Reconcile checks every account of the business and reports per-account
// results. Accounts with drift appear with consistent=false.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	results, err := h.reconUC.ReconcileAll(r.Context(), middleware.BusinessID(r.Context()))
	if results == nil && err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationsFromResults(results))
}
