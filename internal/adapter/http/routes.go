package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. planMW wraps
// only the planning endpoint.
func MountRoutes(r chi.Router, h *Handlers, planMW ...func(http.Handler) http.Handler) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.With(planMW...).Post("/plan-trip", h.PlanTrip)

	r.Get("/memory", h.GetMemory)
	r.Post("/memory/clear", h.ClearMemory)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}
