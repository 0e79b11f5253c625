package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/Strob0t/TripForge/internal/domain/memory"
)

// fakeProvider implements llmprovider.Provider.
type fakeProvider struct {
	name  string
	reply func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	return p.reply(ctx, prompt)
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func replyWith(text string, err error) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) { return text, err }
}

// byDomain answers each pipeline's prompt with its own canned reply.
func byDomain(itinerary, cost, culture string) func(context.Context, string) (string, error) {
	return func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "itinerary for"):
			return itinerary, nil
		case strings.Contains(prompt, "cost breakdown"):
			return cost, nil
		default:
			return culture, nil
		}
	}
}

// memStore implements memorystore.Store in memory. The document is kept
// serialized so tests observe exactly what a real backend would return.
type memStore struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load(context.Context) (*memory.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.data == nil {
		return memory.Empty(), nil
	}
	var doc memory.Document
	if err := json.Unmarshal(s.data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *memStore) Save(_ context.Context, doc *memory.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

// fakeRecorder implements metrics.Recorder.
type fakeRecorder struct {
	mu          sync.Mutex
	completions int
	failures    int
	hits        int
	misses      int
	outcomes    map[string]string
}

func (r *fakeRecorder) CompletionFinished(_ context.Context, _ string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions++
	if err != nil {
		r.failures++
	}
}

func (r *fakeRecorder) PipelineFinished(_ context.Context, kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]string)
	}
	r.outcomes[kind] = outcome
}

func (r *fakeRecorder) CacheLookup(_ context.Context, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

// fakePublisher implements messagequeue.Publisher.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}
