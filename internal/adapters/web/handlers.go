package web

import (
	"net/http"
	"strconv"

	"shopledger/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20))

	r.Get("/api/health", h.health)

	r.Route("/api/wholesalers", func(r chi.Router) {
		r.Get("/", h.listWholesalers)
		r.Post("/", h.createWholesaler)
		r.Get("/{id}", h.getWholesaler)
		r.Put("/{id}", h.updateWholesaler)
		r.Delete("/{id}", h.deactivateWholesaler)
		r.Get("/{id}/bills", h.listBillsByWholesaler)
	})

	r.Route("/api/bills", func(r chi.Router) {
		r.Get("/", h.listBills)
		r.Post("/", h.createBill)
		r.Get("/outstanding", h.listOutstandingBills)
		r.Get("/{id}", h.getBill)
		r.Put("/{id}", h.updateBill)
		r.Get("/{id}/pending", h.pendingAmount)
		r.Post("/{id}/payments", h.recordPayment)
	})

	r.Route("/api/balance", func(r chi.Router) {
		r.Get("/", h.getBalance)
		r.Get("/statement", h.getStatement)
		r.Post("/payouts", h.recordPayout)
	})

	r.Get("/api/products/expiring", h.listExpiringProducts)

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// urlID parses the {id} route parameter. Returns 0 and writes a 400 response
// when the parameter is not a positive integer.
func urlID(w http.ResponseWriter, r *http.Request) int {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "id must be a positive integer", "VALIDATION_ERROR", http.StatusBadRequest)
		return 0
	}
	return id
}
