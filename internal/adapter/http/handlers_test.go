package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tfhttp "github.com/Strob0t/TripForge/internal/adapter/http"
	"github.com/Strob0t/TripForge/internal/adapter/filestore"
	"github.com/Strob0t/TripForge/internal/adapter/ristretto"
	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/domain/trip"
	"github.com/Strob0t/TripForge/internal/middleware"
	"github.com/Strob0t/TripForge/internal/service"
)

// scriptedProvider answers each pipeline's prompt with a canned reply.
type scriptedProvider struct {
	itinerary, cost, culture string
	costErr                  error
	n                        atomic.Int32
}

func (p *scriptedProvider) Name() string { return "Gemini" }

func (p *scriptedProvider) calls() int { return int(p.n.Load()) }

func (p *scriptedProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.n.Add(1)
	switch {
	case strings.Contains(prompt, "itinerary for"):
		return p.itinerary, nil
	case strings.Contains(prompt, "cost breakdown"):
		return p.cost, p.costErr
	default:
		return p.culture, nil
	}
}

func newServer(t *testing.T, p *scriptedProvider) (*httptest.Server, *filestore.Store) {
	t.Helper()
	store := filestore.New(filepath.Join(t.TempDir(), "memory_store.json"))
	llm := service.NewCompletionService(p, time.Second)
	mem := service.NewMemoryService(store)
	planner := service.NewPlannerService([]service.Agent{
		service.NewItineraryAgent(llm, mem, nil),
		service.NewCostAgent(llm, nil),
		service.NewCultureAgent(llm, nil),
	}, mem)

	r := tfhttp.NewRouter(&tfhttp.Handlers{Planner: planner}, tfhttp.RouterConfig{
		CORSOrigin:     "*",
		RequestTimeout: 5 * time.Second,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestPlanTripAll(t *testing.T) {
	srv, _ := newServer(t, &scriptedProvider{
		itinerary: `Sure! {"days":[{"day":1,"activities":[]}],"tips":["Go early"]}`,
		costErr:   errors.New("quota exceeded"),
		culture:   `{"cultural_warnings":["Remove shoes indoors"]}`,
	})

	resp, body := do(t, http.MethodPost, srv.URL+"/plan-trip",
		`{"destination":"Paris","budget":1000,"interests":["Food","Art"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["destination"] != "Paris" || body["duration"] != float64(3) {
		t.Errorf("unexpected envelope %v", body)
	}

	results := body["results"].(map[string]any)
	itinerary := results["itinerary"].(map[string]any)
	if itinerary["agent"] != "Itinerary Builder" {
		t.Errorf("unexpected agent %v", itinerary["agent"])
	}
	if _, ok := itinerary["itinerary"].(map[string]any)["tips"]; !ok {
		t.Errorf("itinerary payload not extracted: %v", itinerary)
	}

	cost := results["cost_estimate"].(map[string]any)
	const msg = "Error calling Gemini API: quota exceeded"
	if cost["raw_response"] != msg || cost["cost_breakdown"].(map[string]any)["error"] != msg {
		t.Errorf("unexpected cost result %v", cost)
	}

	culture := results["cultural_guide"].(map[string]any)
	if culture["agent"] != "Local Culture Coach" || culture["cultural_guide"] == nil {
		t.Errorf("unexpected culture result %v", culture)
	}
}

func TestPlanTripSingle(t *testing.T) {
	srv, _ := newServer(t, &scriptedProvider{cost: `{"budget_levels":{"budget":{"total":825}}}`})

	resp, body := do(t, http.MethodPost, srv.URL+"/plan-trip",
		`{"destination":"Rome","budget":500,"interests":[],"agent":"cost"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if _, ok := body["destination"]; ok {
		t.Error("single-agent response must not carry the trip envelope")
	}
	res := body["results"].(map[string]any)
	if res["agent"] != "Cost Estimator" || res["cost_breakdown"] == nil {
		t.Errorf("unexpected result %v", res)
	}
}

func TestPlanTripValidation(t *testing.T) {
	srv, _ := newServer(t, &scriptedProvider{})

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"invalid agent", `{"destination":"Rome","budget":1,"interests":[],"agent":"weather"}`, "Invalid agent specified"},
		{"missing destination", `{"budget":1,"interests":[]}`, "destination is required"},
		{"negative budget", `{"destination":"Rome","budget":-5,"interests":[]}`, "budget must not be negative"},
		{"malformed body", `{"destination":`, "invalid request body"},
		{"wrong type", `{"destination":"Rome","budget":"cheap"}`, "invalid value for field budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/plan-trip", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if body["detail"] != tt.detail {
				t.Errorf("detail = %v, want %q", body["detail"], tt.detail)
			}
		})
	}
}

func TestMemoryLifecycle(t *testing.T) {
	srv, store := newServer(t, &scriptedProvider{itinerary: `{"days":[]}`})

	resp, _ := do(t, http.MethodPost, srv.URL+"/plan-trip",
		`{"destination":"Kyoto","budget":2000,"interests":["Temples"],"agent":"itinerary"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("plan status = %d", resp.StatusCode)
	}

	// Keys outside the three well-known ones stay in storage but are not served.
	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := doc.Append("wishlist", "Lima"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Save(context.Background(), doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, body := do(t, http.MethodGet, srv.URL+"/memory", "")
	trips := body["trips"].([]any)
	if len(trips) != 1 || trips[0].(map[string]any)["destination"] != "Kyoto" {
		t.Errorf("unexpected trips %v", trips)
	}
	if _, ok := body["wishlist"]; ok {
		t.Error("memory response should only expose trips, preferences and visited_places")
	}

	resp, body = do(t, http.MethodPost, srv.URL+"/memory/clear", "")
	if resp.StatusCode != http.StatusOK || body["message"] != "Memory cleared" || body["success"] != true {
		t.Fatalf("unexpected clear response %d %v", resp.StatusCode, body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/memory", "")
	if len(body["trips"].([]any)) != 0 || len(body["visited_places"].([]any)) != 0 {
		t.Errorf("expected empty memory, got %v", body)
	}
	doc, _ = store.Load(context.Background())
	data, _ := json.Marshal(doc)
	if string(data) != `{"trips":[],"preferences":{},"visited_places":[]}` {
		t.Errorf("clear should store the canonical empty document, got %s", data)
	}
}

// failingPlanner exercises the error paths.
type failingPlanner struct {
	panicMsg string
	err      error
}

func (f *failingPlanner) Plan(context.Context, trip.Request) (*service.Plan, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return nil, f.err
}

func (f *failingPlanner) History(context.Context) (*memory.Document, error) { return nil, f.err }

func (f *failingPlanner) ResetHistory(context.Context) error { return f.err }

func TestRouterFailures(t *testing.T) {
	cause := errors.New("load memory: permission denied")
	r := tfhttp.NewRouter(&tfhttp.Handlers{Planner: &failingPlanner{err: cause}}, tfhttp.RouterConfig{CORSOrigin: "*"})
	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/memory"},
		{http.MethodPost, "/memory/clear"},
		{http.MethodPost, "/plan-trip"},
	} {
		resp, body := do(t, tc.method, srv.URL+tc.path, `{"destination":"Rome","budget":1,"interests":[]}`)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("%s %s: status = %d, want 500", tc.method, tc.path, resp.StatusCode)
		}
		if body["detail"] != cause.Error() {
			t.Errorf("%s %s: detail = %v", tc.method, tc.path, body["detail"])
		}
	}
}

func TestPanicBecomes500(t *testing.T) {
	r := tfhttp.NewRouter(&tfhttp.Handlers{Planner: &failingPlanner{panicMsg: "agent table corrupted"}}, tfhttp.RouterConfig{CORSOrigin: "*"})
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, body := do(t, http.MethodPost, srv.URL+"/plan-trip", `{"destination":"Rome","budget":1,"interests":[]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["detail"] != "agent table corrupted" {
		t.Errorf("detail = %v", body["detail"])
	}
}

func TestHealthAndRoot(t *testing.T) {
	srv, _ := newServer(t, &scriptedProvider{})

	_, body := do(t, http.MethodGet, srv.URL+"/health", "")
	if body["status"] != "healthy" || body["service"] != "Travel Planning Assistant" {
		t.Errorf("unexpected health %v", body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/", "")
	if body["version"] != "1.0.0" || body["message"] != "Travel Planning Assistant API" {
		t.Errorf("unexpected root %v", body)
	}
	agents := body["agents"].([]any)
	if len(agents) != 3 || agents[2] != "Local Culture Coach" {
		t.Errorf("unexpected agents %v", agents)
	}
	if _, ok := body["endpoints"].(map[string]any)["POST /plan-trip"]; !ok {
		t.Errorf("endpoints missing plan-trip: %v", body["endpoints"])
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	srv, _ := newServer(t, &scriptedProvider{})
	resp, body := do(t, http.MethodGet, srv.URL+"/nope", "")
	if resp.StatusCode != http.StatusNotFound || body["detail"] != "Not Found" {
		t.Errorf("unexpected 404 %d %v", resp.StatusCode, body)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv, _ := newServer(t, &scriptedProvider{})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "trace-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_ = resp.Body.Close()
	if got := resp.Header.Get(middleware.HeaderRequestID); got != "trace-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestMetricsMounted(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tripforge_up 1\n"))
	})
	r := tfhttp.NewRouter(&tfhttp.Handlers{Planner: &failingPlanner{}}, tfhttp.RouterConfig{
		CORSOrigin:  "*",
		MetricsPath: "/metrics",
		Metrics:     metricsHandler,
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "tripforge_up") {
		t.Errorf("metrics not served: %d %q", rec.Code, rec.Body.String())
	}
}

func TestPlanTripIdempotency(t *testing.T) {
	p := &scriptedProvider{cost: `{"budget_levels":{}}`}
	store := filestore.New(filepath.Join(t.TempDir(), "memory_store.json"))
	llm := service.NewCompletionService(p, time.Second)
	mem := service.NewMemoryService(store)
	planner := service.NewPlannerService([]service.Agent{
		service.NewItineraryAgent(llm, mem, nil),
		service.NewCostAgent(llm, nil),
		service.NewCultureAgent(llm, nil),
	}, mem)

	replay, err := ristretto.New(1)
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	defer replay.Close()

	srv := httptest.NewServer(tfhttp.NewRouter(&tfhttp.Handlers{Planner: planner}, tfhttp.RouterConfig{
		CORSOrigin:     "*",
		Idempotency:    replay,
		IdempotencyTTL: time.Hour,
	}))
	defer srv.Close()

	send := func(key string) *http.Response {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/plan-trip",
			strings.NewReader(`{"destination":"Rome","budget":500,"interests":[],"agent":"cost"}`))
		req.Header.Set(middleware.HeaderIdempotencyKey, key)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		_ = resp.Body.Close()
		return resp
	}

	first := send("retry-1")
	second := send("retry-1")
	if first.StatusCode != http.StatusOK || second.StatusCode != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.StatusCode, second.StatusCode)
	}
	if second.Header.Get(middleware.HeaderIdempotentReplay) != "true" {
		t.Error("expected the second response to be replayed")
	}
	if p.calls() != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls())
	}

	if third := send("retry-2"); third.Header.Get(middleware.HeaderIdempotentReplay) != "" {
		t.Error("a new key must not be replayed")
	}
	if p.calls() != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls())
	}
}
