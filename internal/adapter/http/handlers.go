package http

import (
	"context"
	"net/http"

	"github.com/Strob0t/TripForge/internal/domain/agent"
	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/domain/trip"
	"github.com/Strob0t/TripForge/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// ServiceName is the human-readable service name.
const ServiceName = "Travel Planning Assistant"

// Planner is the application surface the handlers depend on.
type Planner interface {
	Plan(ctx context.Context, req trip.Request) (*service.Plan, error)
	History(ctx context.Context) (*memory.Document, error)
	ResetHistory(ctx context.Context) error
}

// Handlers holds the HTTP handlers for the trip API.
type Handlers struct {
	Planner Planner
}

// PlanTrip handles POST /plan-trip.
func (h *Handlers) PlanTrip(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[trip.Request](w, r)
	if !ok {
		return
	}

	plan, err := h.Planner.Plan(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plan.Envelope())
}

// GetMemory handles GET /memory.
func (h *Handlers) GetMemory(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Planner.History(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc.Snapshot())
}

// ClearMemory handles POST /memory/clear.
func (h *Handlers) ClearMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.ResetHistory(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Memory cleared"})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
}

type rootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Agents    []string          `json:"agents"`
}

// Root handles GET / with service metadata.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	agents := make([]string, 0, len(agent.AllKinds))
	for _, k := range agent.AllKinds {
		agents = append(agents, k.DisplayName())
	}
	writeJSON(w, http.StatusOK, rootResponse{
		Message: ServiceName + " API",
		Version: Version,
		Endpoints: map[string]string{
			"POST /plan-trip":    "Plan a trip with AI agents",
			"GET /memory":        "Get travel history",
			"POST /memory/clear": "Clear travel memory",
			"GET /health":        "Health check",
		},
		Agents: agents,
	})
}
