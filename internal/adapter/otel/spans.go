package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tripforge"

// StartPlanSpan starts a span covering one trip planning request.
func StartPlanSpan(ctx context.Context, destination, selection string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "plan",
		trace.WithAttributes(
			attribute.String("trip.destination", destination),
			attribute.String("trip.agent", selection),
		),
	)
}

// StartPipelineSpan starts a span for one domain pipeline.
func StartPipelineSpan(ctx context.Context, kind string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "pipeline",
		trace.WithAttributes(attribute.String("pipeline.kind", kind)),
	)
}

// StartCompletionSpan starts a span for a remote completion call.
func StartCompletionSpan(ctx context.Context, provider string, promptLen int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", provider),
			attribute.Int("llm.prompt_length", promptLen),
		),
	)
}
