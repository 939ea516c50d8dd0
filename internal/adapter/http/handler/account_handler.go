package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cashify/ledger/internal/adapter/http/dto"
	"github.com/cashify/ledger/internal/adapter/http/middleware"
	"github.com/cashify/ledger/internal/usecase"
)

// AccountHandler handles account-related HTTP requests, including balance
// reads and per-account consistency checks.
type AccountHandler struct {
	accountUC *usecase.AccountUseCase
	balanceUC *usecase.BalanceUseCase
	reconUC   *usecase.ReconciliationUseCase
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC *usecase.AccountUseCase, balanceUC *usecase.BalanceUseCase, reconUC *usecase.ReconciliationUseCase) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		balanceUC: balanceUC,
		reconUC:   reconUC,
	}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	businessID := middleware.BusinessID(r.Context())
	actor := middleware.Actor(r.Context())

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(businessID, actor))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing account ID")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), middleware.BusinessID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the business's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		BusinessID: middleware.BusinessID(r.Context()),
		Limit:      parseIntQuery(r, "limit", 0),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Balance returns the account's current balance.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing account ID")
		return
	}

	businessID := middleware.BusinessID(r.Context())

	account, err := h.accountUC.GetAccount(r.Context(), businessID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	balance, err := h.balanceUC.CurrentBalance(r.Context(), businessID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: id,
		Balance:   balance,
		Currency:  account.Currency,
		AsOf:      time.Now().UTC(),
	})
}

// Entries lists the account's entries in replay order with the running
// balance after each one. Optional from/to date bounds narrow the listing.
func (h *AccountHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing account ID")
		return
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed from date, want YYYY-MM-DD")
		return
	}

	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed to date, want YYYY-MM-DD")
		return
	}

	rows, err := h.balanceUC.RunningBalances(r.Context(), usecase.RunningBalancesInput{
		BusinessID: middleware.BusinessID(r.Context()),
		AccountID:  id,
		Range:      usecase.DateRange{From: from, To: to},
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RunningBalancesFromDomain(rows))
}

// Reconcile recomputes the account's balance from its entries and compares
// it against the cached balance. Drift is reported, never repaired here.
func (h *AccountHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing account ID")
		return
	}

	result, err := h.reconUC.ReconcileAccount(r.Context(), middleware.BusinessID(r.Context()), id)
	if result == nil && err != nil {
		writeDomainError(w, err)
		return
	}

	// Drift is reported in the body, not as a transport failure. The use
	// case has already logged it.
	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// Repair overwrites the account's cached balance with a full replay of its
// entry history. The response reports the pre-repair comparison; an account
// without drift is left untouched.
func (h *AccountHandler) Repair(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing account ID")
		return
	}

	result, err := h.reconUC.RepairAccount(r.Context(), middleware.BusinessID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
