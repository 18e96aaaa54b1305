package httpapi

import (
	"errors"
	"net/http"

	"github.com/openbooks/ledger/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }

// writeDomainErr maps sentinel errors from the service and store layers to
// HTTP statuses. Unknown errors surface as 500 with a generic message.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found", "not_found")
	case errors.Is(err, errs.ErrAccountNotFound):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "account_not_found")
	case errors.Is(err, errs.ErrAccountArchived):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "account_archived")
	case errors.Is(err, errs.ErrNoEntries):
		writeErr(w, http.StatusBadRequest, err.Error(), "no_entries")
	case errors.Is(err, errs.ErrUnbalanced):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "unbalanced_transaction")
	case errors.Is(err, errs.ErrCurrencyMismatch):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "currency_mismatch")
	case errors.Is(err, errs.ErrUnknownCurrency):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "unknown_currency")
	case errors.Is(err, errs.ErrSystemAccount):
		writeErr(w, http.StatusForbidden, err.Error(), "system_account")
	case errors.Is(err, errs.ErrImmutable):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "immutable_field")
	case errors.Is(err, errs.ErrBalanceReadOnly):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "balance_read_only")
	case errors.Is(err, errs.ErrDeleteBlocked):
		writeErr(w, http.StatusConflict, err.Error(), "delete_blocked")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, errs.ErrInvalid), errors.Is(err, errs.ErrUnprocessable):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid")
	case errors.Is(err, errs.ErrUnavailable):
		writeErr(w, http.StatusServiceUnavailable, "store unavailable", "store_unavailable")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
