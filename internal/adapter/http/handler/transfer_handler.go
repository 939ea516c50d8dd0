package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cashify/ledger/internal/adapter/http/dto"
	"github.com/cashify/ledger/internal/adapter/http/middleware"
	"github.com/cashify/ledger/internal/usecase"
)

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC *usecase.TransferUseCase) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create creates a linked pair of transfer entries.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	businessID := middleware.BusinessID(r.Context())
	actor := middleware.Actor(r.Context())

	transfer, err := h.transferUC.CreateTransfer(r.Context(), req.ToUseCaseInput(businessID, actor))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// Get retrieves a transfer by group ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing transfer group ID")
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), middleware.BusinessID(r.Context()), groupID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// Update applies a patch to both legs of a transfer in one transaction.
func (h *TransferHandler) Update(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing transfer group ID")
		return
	}

	var req dto.UpdateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	businessID := middleware.BusinessID(r.Context())
	actor := middleware.Actor(r.Context())

	transfer, err := h.transferUC.UpdateTransfer(r.Context(), req.ToUseCaseInput(businessID, groupID, actor))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// Cancel soft-cancels both legs of a transfer atomically. Repeating a cancel
// succeeds without effect.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	if groupID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing transfer group ID")
		return
	}

	businessID := middleware.BusinessID(r.Context())
	actor := middleware.Actor(r.Context())

	if err := h.transferUC.CancelTransfer(r.Context(), businessID, groupID, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
