package web

import (
	"encoding/json"
	"net/http"

	"shopledger/internal/app"
)

// listWholesalers handles GET /api/wholesalers.
func (h *Handler) listWholesalers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListWholesalers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Wholesalers)
}

// getWholesaler handles GET /api/wholesalers/{id}.
func (h *Handler) getWholesaler(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	result, err := h.svc.GetWholesaler(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Wholesaler)
}

// createWholesaler handles POST /api/wholesalers.
func (h *Handler) createWholesaler(w http.ResponseWriter, r *http.Request) {
	var req app.WholesalerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	result, err := h.svc.CreateWholesaler(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result.Wholesaler)
}

// updateWholesaler handles PUT /api/wholesalers/{id}.
func (h *Handler) updateWholesaler(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	var req app.WholesalerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "VALIDATION_ERROR", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdateWholesaler(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Wholesaler)
}

// deactivateWholesaler handles DELETE /api/wholesalers/{id}.
func (h *Handler) deactivateWholesaler(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	if err := h.svc.DeactivateWholesaler(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listBillsByWholesaler handles GET /api/wholesalers/{id}/bills.
func (h *Handler) listBillsByWholesaler(w http.ResponseWriter, r *http.Request) {
	id := urlID(w, r)
	if id == 0 {
		return
	}
	result, err := h.svc.ListBills(r.Context(), app.ListBillsRequest{WholesalerID: id})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Bills)
}
