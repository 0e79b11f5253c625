// Package metrics defines the port through which services report what
// happened to exporters (OpenTelemetry, Prometheus).
package metrics

import (
	"context"
	"time"
)

// Recorder receives service-level measurements. Implementations must be safe
// for concurrent use and must not block.
type Recorder interface {
	// CompletionFinished records one remote completion call.
	CompletionFinished(ctx context.Context, provider string, elapsed time.Duration, err error)
	// PipelineFinished records how a domain pipeline obtained its payload.
	PipelineFinished(ctx context.Context, kind, outcome string)
	// CacheLookup records a completion cache lookup.
	CacheLookup(ctx context.Context, hit bool)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) CompletionFinished(context.Context, string, time.Duration, error) {}
func (Nop) PipelineFinished(context.Context, string, string) {}
func (Nop) CacheLookup(context.Context, bool) {}

// Multi fans measurements out to several recorders.
type Multi []Recorder

func (m Multi) CompletionFinished(ctx context.Context, provider string, elapsed time.Duration, err error) {
	for _, r := range m {
		r.CompletionFinished(ctx, provider, elapsed, err)
	}
}

func (m Multi) PipelineFinished(ctx context.Context, kind, outcome string) {
	for _, r := range m {
		r.PipelineFinished(ctx, kind, outcome)
	}
}

func (m Multi) CacheLookup(ctx context.Context, hit bool) {
	for _, r := range m {
		r.CacheLookup(ctx, hit)
	}
}
