package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	tfotel "github.com/Strob0t/TripForge/internal/adapter/otel"
	"github.com/Strob0t/TripForge/internal/domain/agent"
	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/domain/prompt"
	"github.com/Strob0t/TripForge/internal/domain/trip"
	"github.com/Strob0t/TripForge/internal/port/metrics"
)

// Agent is one domain pipeline: prompt, completion, extraction.
// Produce never returns an error; failures are carried in the Result.
type Agent interface {
	Kind() agent.Kind
	Produce(ctx context.Context, req trip.Request) agent.Result
}

// pipeline is the skeleton shared by all agents.
type pipeline struct {
	kind    agent.Kind
	llm     Completer
	metrics metrics.Recorder
}

func (p pipeline) run(ctx context.Context, text string) (res agent.Result) {
	res.Kind = p.kind

	raw, err := p.llm.Complete(ctx, text)
	if err != nil {
		msg := err.Error()
		var rce *RemoteCallError
		if !errors.As(err, &rce) {
			msg = (&RemoteCallError{Service: "completion", Err: err}).Error()
		}
		res.Payload = p.kind.Fallback(msg)
		res.RawResponse = msg
		res.Outcome = agent.OutcomeRemoteFailure
		return res
	}

	res.RawResponse = raw
	res.Payload, res.Outcome = agent.Extract(raw, p.kind)
	if res.Outcome != agent.OutcomeOK {
		slog.InfoContext(ctx, "model answer not usable", "kind", p.kind, "outcome", res.Outcome, "chars", len(raw))
	}
	return res
}

// guard runs fn and converts a panic into an error-marker result.
func (p pipeline) guard(ctx context.Context, fn func(ctx context.Context) agent.Result) (res agent.Result) {
	ctx, span := tfotel.StartPipelineSpan(ctx, string(p.kind))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "pipeline panic", "kind", p.kind, "panic", r, "stack", string(debug.Stack()))
			msg := fmt.Sprintf("Internal error: %v", r)
			res = agent.Result{
				Kind:        p.kind,
				Payload:     p.kind.Fallback(msg),
				RawResponse: msg,
				Outcome:     agent.OutcomeInternal,
			}
		}
		p.metrics.PipelineFinished(ctx, string(p.kind), string(res.Outcome))
	}()

	return fn(ctx)
}

// ItineraryAgent builds a day-by-day schedule and records every request in
// memory, whether or not the model produced usable JSON.
type ItineraryAgent struct {
	pipeline
	memory *MemoryService
	now    func() time.Time
}

// NewItineraryAgent creates the itinerary pipeline.
func NewItineraryAgent(llm Completer, mem *MemoryService, rec metrics.Recorder) *ItineraryAgent {
	return &ItineraryAgent{
		pipeline: newPipeline(agent.KindItinerary, llm, rec),
		memory:   mem,
		now:      time.Now,
	}
}

func (a *ItineraryAgent) Kind() agent.Kind { return a.kind }

func (a *ItineraryAgent) Produce(ctx context.Context, req trip.Request) agent.Result {
	return a.guard(ctx, func(ctx context.Context) agent.Result {
		prefs, err := a.memory.Preferences(ctx)
		if err != nil {
			slog.WarnContext(ctx, "load preferences failed, continuing without", "error", err)
			prefs = map[string]any{}
		}

		res := a.run(ctx, prompt.Itinerary(req, prefs))

		record := trip.NewRecord(req, res.Payload, a.now().UTC())
		if err := a.memory.Append(ctx, memory.KeyTrips, record); err != nil {
			slog.ErrorContext(ctx, "record trip in memory failed", "destination", req.Destination, "error", err)
			res.MemoryError = err.Error()
		}
		return res
	})
}

// CostAgent estimates a budget breakdown at three spending levels.
type CostAgent struct {
	pipeline
}

// NewCostAgent creates the cost pipeline.
func NewCostAgent(llm Completer, rec metrics.Recorder) *CostAgent {
	return &CostAgent{pipeline: newPipeline(agent.KindCost, llm, rec)}
}

func (a *CostAgent) Kind() agent.Kind { return a.kind }

func (a *CostAgent) Produce(ctx context.Context, req trip.Request) agent.Result {
	return a.guard(ctx, func(ctx context.Context) agent.Result {
		return a.run(ctx, prompt.Cost(req))
	})
}

// CultureAgent gives etiquette, language and local-knowledge guidance.
type CultureAgent struct {
	pipeline
}

// NewCultureAgent creates the culture pipeline.
func NewCultureAgent(llm Completer, rec metrics.Recorder) *CultureAgent {
	return &CultureAgent{pipeline: newPipeline(agent.KindCulture, llm, rec)}
}

func (a *CultureAgent) Kind() agent.Kind { return a.kind }

func (a *CultureAgent) Produce(ctx context.Context, req trip.Request) agent.Result {
	return a.guard(ctx, func(ctx context.Context) agent.Result {
		return a.run(ctx, prompt.Culture(req))
	})
}

func newPipeline(kind agent.Kind, llm Completer, rec metrics.Recorder) pipeline {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return pipeline{kind: kind, llm: llm, metrics: rec}
}
