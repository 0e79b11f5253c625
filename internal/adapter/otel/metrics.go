package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tripforge"

// Metrics holds the TripForge metric instruments. It implements
// metrics.Recorder.
type Metrics struct {
	Completions        metric.Int64Counter
	CompletionErrors   metric.Int64Counter
	CompletionDuration metric.Float64Histogram
	Pipelines          metric.Int64Counter
	CacheLookups       metric.Int64Counter
}

// NewMetrics creates all metric instruments on mp. A nil mp uses the global
// meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Completions, err = meter.Int64Counter("tripforge.completions",
		metric.WithDescription("Number of remote completion calls"))
	if err != nil {
		return nil, err
	}

	m.CompletionErrors, err = meter.Int64Counter("tripforge.completions.failed",
		metric.WithDescription("Number of failed remote completion calls"))
	if err != nil {
		return nil, err
	}

	m.CompletionDuration, err = meter.Float64Histogram("tripforge.completion.duration_seconds",
		metric.WithDescription("Remote completion latency in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.Pipelines, err = meter.Int64Counter("tripforge.pipelines",
		metric.WithDescription("Domain pipeline results by kind and extraction outcome"))
	if err != nil {
		return nil, err
	}

	m.CacheLookups, err = meter.Int64Counter("tripforge.cache.lookups",
		metric.WithDescription("Completion cache lookups by result"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) CompletionFinished(ctx context.Context, provider string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	m.Completions.Add(ctx, 1, attrs)
	m.CompletionDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.CompletionErrors.Add(ctx, 1, attrs)
	}
}

func (m *Metrics) PipelineFinished(ctx context.Context, kind, outcome string) {
	m.Pipelines.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) CacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
