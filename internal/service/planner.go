package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	tfotel "github.com/Strob0t/TripForge/internal/adapter/otel"
	"github.com/Strob0t/TripForge/internal/domain/agent"
	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/domain/trip"
	"github.com/Strob0t/TripForge/internal/logger"
	"github.com/Strob0t/TripForge/internal/port/messagequeue"
)

// Plan is the aggregated outcome of one trip request.
type Plan struct {
	Destination string
	Budget      float64
	Duration    int
	Selection   trip.Selection
	Results     map[agent.Kind]agent.Result
}

// Single returns the only result of a single-agent plan.
func (p *Plan) Single() (agent.Result, bool) {
	if p.Selection == trip.SelectAll || len(p.Results) != 1 {
		return agent.Result{}, false
	}
	for _, r := range p.Results {
		return r, true
	}
	return agent.Result{}, false
}

// AllResults holds one result per pipeline under its envelope key.
type AllResults struct {
	Itinerary     agent.Result `json:"itinerary"`
	CostEstimate  agent.Result `json:"cost_estimate"`
	CulturalGuide agent.Result `json:"cultural_guide"`
}

// AllEnvelope is the response body of an all-agents plan.
type AllEnvelope struct {
	Success     bool       `json:"success"`
	Destination string     `json:"destination"`
	Budget      float64    `json:"budget"`
	Duration    int        `json:"duration"`
	Results     AllResults `json:"results"`
}

// SingleEnvelope is the response body of a single-agent plan.
type SingleEnvelope struct {
	Success bool         `json:"success"`
	Results agent.Result `json:"results"`
}

// Envelope renders the plan in its wire shape: a SingleEnvelope for one
// agent, otherwise an AllEnvelope. Every surface that returns a plan uses it.
func (p *Plan) Envelope() any {
	if res, ok := p.Single(); ok {
		return SingleEnvelope{Success: true, Results: res}
	}
	return AllEnvelope{
		Success:     true,
		Destination: p.Destination,
		Budget:      p.Budget,
		Duration:    p.Duration,
		Results: AllResults{
			Itinerary:     p.Results[agent.KindItinerary],
			CostEstimate:  p.Results[agent.KindCost],
			CulturalGuide: p.Results[agent.KindCulture],
		},
	}
}

// PlannerService routes a trip request to the selected domain pipelines.
type PlannerService struct {
	agents  map[agent.Kind]Agent
	memory  *MemoryService
	events  messagequeue.Publisher
	subject string
	now     func() time.Time
}

// PlannerOption configures a PlannerService.
type PlannerOption func(*PlannerService)

// WithEvents publishes a trip-planned event on subject after each plan and
// a memory-cleared event after each reset. Publishing is best effort.
func WithEvents(pub messagequeue.Publisher, subject string) PlannerOption {
	return func(s *PlannerService) {
		s.events = pub
		if subject != "" {
			s.subject = subject
		}
	}
}

// NewPlannerService creates a PlannerService over the given agents.
func NewPlannerService(agents []Agent, mem *MemoryService, opts ...PlannerOption) *PlannerService {
	s := &PlannerService{
		agents:  make(map[agent.Kind]Agent, len(agents)),
		memory:  mem,
		subject: messagequeue.SubjectTripPlanned,
		now:     time.Now,
	}
	for _, a := range agents {
		s.agents[a.Kind()] = a
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan validates req and runs the selected pipelines. With selection "all"
// the three pipelines run concurrently and each one's failure stays inside
// its own Result. The returned error is reserved for invalid requests and
// missing wiring.
func (s *PlannerService) Plan(ctx context.Context, req trip.Request) (*Plan, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	kinds := []agent.Kind{agent.Kind(req.Agent)}
	if req.Agent == trip.SelectAll {
		kinds = agent.AllKinds
	}
	for _, k := range kinds {
		if _, ok := s.agents[k]; !ok {
			return nil, fmt.Errorf("no agent registered for %q", k)
		}
	}

	ctx, span := tfotel.StartPlanSpan(ctx, req.Destination, string(req.Agent))
	defer span.End()

	start := time.Now()
	results := make([]agent.Result, len(kinds))
	var g errgroup.Group
	for i, k := range kinds {
		a := s.agents[k]
		g.Go(func() error {
			results[i] = a.Produce(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	plan := &Plan{
		Destination: req.Destination,
		Budget:      req.Budget,
		Duration:    req.Duration,
		Selection:   req.Agent,
		Results:     make(map[agent.Kind]agent.Result, len(results)),
	}
	outcomes := make(map[string]string, len(results))
	for _, r := range results {
		plan.Results[r.Kind] = r
		outcomes[string(r.Kind)] = string(r.Outcome)
	}

	slog.InfoContext(ctx, "trip planned",
		"destination", req.Destination,
		"agent", req.Agent,
		"outcomes", outcomes,
		"elapsed", time.Since(start),
	)

	s.publish(ctx, s.subject, messagequeue.TripPlannedPayload{
		RequestID:   logger.RequestID(ctx),
		Destination: req.Destination,
		Budget:      req.Budget,
		Duration:    req.Duration,
		Interests:   req.Interests,
		Agent:       string(req.Agent),
		Outcomes:    outcomes,
		PlannedAt:   s.now().UTC(),
	})
	return plan, nil
}

// History returns the memory document.
func (s *PlannerService) History(ctx context.Context) (*memory.Document, error) {
	return s.memory.Load(ctx)
}

// ResetHistory clears the memory document.
func (s *PlannerService) ResetHistory(ctx context.Context) error {
	if err := s.memory.Clear(ctx); err != nil {
		return err
	}
	s.publish(ctx, messagequeue.SubjectMemoryReset, messagequeue.MemoryClearedPayload{
		RequestID: logger.RequestID(ctx),
		ClearedAt: s.now().UTC(),
	})
	return nil
}

func (s *PlannerService) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "marshal event failed", "subject", subject, "error", err)
		return
	}
	if err := s.events.Publish(ctx, subject, data); err != nil {
		slog.WarnContext(ctx, "publish event failed", "subject", subject, "error", err)
	}
}
