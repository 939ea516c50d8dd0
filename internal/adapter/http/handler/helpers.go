package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cashify/ledger/internal/adapter/http/dto"
	"github.com/cashify/ledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, kind, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   kind,
		Message: details,
	})
}

// writeDomainError maps a domain error onto the wire taxonomy.
func writeDomainError(w http.ResponseWriter, err error) {
	status, kind := mapDomainError(err)
	writeError(w, status, kind, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes and stable machine
// readable error kinds.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSameAccountTransfer),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge):
		return http.StatusBadRequest, "invalid_transfer"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest, "currency_mismatch"
	case errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountKind),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidEntryKind),
		errors.Is(err, domain.ErrInvalidEntryStatus),
		errors.Is(err, domain.ErrInvalidAuditAction),
		errors.Is(err, domain.ErrMissingBusinessID):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient_balance"
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnprocessableEntity, "account_inactive"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrEntryImmutable),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrTransferLegEdit):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrConsistencyViolation):
		return http.StatusInternalServerError, "consistency_violation"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a YYYY-MM-DD query parameter. A missing parameter
// yields the zero time; a malformed one is an error.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", val)
}
