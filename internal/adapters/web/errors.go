package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps a core error to its HTTP status and code. Unknown
// errors (including StorageError) surface as 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *core.ValidationError
		notFoundErr     *core.NotFoundError
		overpaymentErr  *core.OverpaymentError
		insufficientErr *core.InsufficientBalanceError
		duplicateErr    *core.DuplicatePaymentError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, validationErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		writeError(w, r, notFoundErr.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &overpaymentErr):
		writeError(w, r, overpaymentErr.Error(), "OVERPAYMENT", http.StatusConflict)
	case errors.As(err, &insufficientErr):
		writeError(w, r, insufficientErr.Error(), "INSUFFICIENT_BALANCE", http.StatusConflict)
	case errors.As(err, &duplicateErr):
		writeError(w, r, duplicateErr.Error(), "DUPLICATE_PAYMENT", http.StatusConflict)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
