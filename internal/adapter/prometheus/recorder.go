// Package prometheus exposes TripForge metrics for scraping on /metrics.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements metrics.Recorder on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	completions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	pipelines   *prometheus.CounterVec
	cache       *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripforge_completions_total",
				Help: "Remote completion calls by provider and status",
			},
			[]string{"provider", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripforge_completion_duration_seconds",
				Help:    "Remote completion latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		pipelines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripforge_pipeline_results_total",
				Help: "Domain pipeline results by kind and extraction outcome",
			},
			[]string{"kind", "outcome"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripforge_cache_lookups_total",
				Help: "Completion cache lookups by result",
			},
			[]string{"result"},
		),
	}
	r.registry.MustRegister(
		r.completions, r.latency, r.pipelines, r.cache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) CompletionFinished(_ context.Context, provider string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.completions.WithLabelValues(provider, status).Inc()
	r.latency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (r *Recorder) PipelineFinished(_ context.Context, kind, outcome string) {
	r.pipelines.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) CacheLookup(_ context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}
