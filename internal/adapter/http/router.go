package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	tfotel "github.com/Strob0t/TripForge/internal/adapter/otel"
	"github.com/Strob0t/TripForge/internal/middleware"
	"github.com/Strob0t/TripForge/internal/port/cache"
)

// RouterConfig selects the optional parts of the router.
type RouterConfig struct {
	CORSOrigin     string
	RequestTimeout time.Duration

	// TraceService enables otelhttp spans under this name when non-empty.
	TraceService string

	// MetricsPath and Metrics mount a scrape handler when both are set.
	MetricsPath string
	Metrics     http.Handler

	// MCP is mounted at /mcp when non-nil.
	MCP http.Handler

	// Idempotency replays POST /plan-trip responses by Idempotency-Key
	// when non-nil.
	Idempotency    cache.Cache
	IdempotencyTTL time.Duration
}

// NewRouter builds the full middleware chain and mounts all routes.
func NewRouter(h *Handlers, rc RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if rc.TraceService != "" {
		r.Use(tfotel.HTTPMiddleware(rc.TraceService, "/health", rc.MetricsPath))
	}
	r.Use(Logger)
	r.Use(Recover)
	r.Use(chimw.RealIP)
	r.Use(CORS(rc.CORSOrigin))
	r.Use(SecurityHeaders)

	if rc.Metrics != nil && rc.MetricsPath != "" {
		r.Method(http.MethodGet, rc.MetricsPath, rc.Metrics)
	}
	if rc.MCP != nil {
		r.Handle("/mcp", rc.MCP)
	}

	r.Group(func(r chi.Router) {
		if rc.RequestTimeout > 0 {
			r.Use(chimw.Timeout(rc.RequestTimeout))
		}
		var plan []func(http.Handler) http.Handler
		if rc.Idempotency != nil {
			plan = append(plan, middleware.Idempotency(rc.Idempotency, rc.IdempotencyTTL))
		}
		MountRoutes(r, h, plan...)
	})
	return r
}
