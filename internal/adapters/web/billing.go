package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shopledger/internal/app"
)

// createBill handles POST /api/bills.
func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req app.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	result, err := h.svc.CreateBill(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result.Bill)
}

// getBill handles GET /api/bills/{id}.
func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	result, err := h.svc.GetBill(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"bill":     result.Bill,
		"payments": result.Payments,
		"paid":     result.Paid,
		"pending":  result.Pending,
	})
}

// updateBill handles PUT /api/bills/{id}.
func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	var req app.UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdateBill(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Bill)
}

// listBills handles GET /api/bills?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	req := app.ListBillsRequest{
		FromDate: r.URL.Query().Get("from"),
		ToDate:   r.URL.Query().Get("to"),
	}
	result, err := h.svc.ListBills(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Bills)
}

// listOutstandingBills handles GET /api/bills/outstanding.
func (h *Handler) listOutstandingBills(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOutstandingBills(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Bills)
}

// pendingAmount handles GET /api/bills/{id}/pending.
func (h *Handler) pendingAmount(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	result, err := h.svc.PendingAmount(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"bill_id": result.BillID, "pending": result.Pending})
}

// recordPayment handles POST /api/bills/{id}/payments.
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	var req app.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	req.BillID = id
	result, err := h.svc.RecordPayment(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result.Payment)
}

// getBalance handles GET /api/balance.
func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBalance(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"balance": result.Balance})
}

// getStatement handles GET /api/balance/statement?from=...&to=...
func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBalanceStatement(r.Context(),
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Lines)
}

// recordPayout handles POST /api/balance/payouts.
func (h *Handler) recordPayout(w http.ResponseWriter, r *http.Request) {
	var req app.RecordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	result, err := h.svc.RecordPayout(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result.Entry)
}

// listExpiringProducts handles GET /api/products/expiring?days=N.
func (h *Handler) listExpiringProducts(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			writeError(w, r, "days must be an integer", "VALIDATION_ERROR", http.StatusBadRequest)
			return
		}
		days = parsed
	}
	result, err := h.svc.ListExpiringProducts(r.Context(), days)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}
