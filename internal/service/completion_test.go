package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Strob0t/TripForge/internal/adapter/ristretto"
	"github.com/Strob0t/TripForge/internal/resilience"
)

func TestCompletionService_Success(t *testing.T) {
	p := &fakeProvider{name: "Gemini", reply: replyWith(`{"days":[]}`, nil)}
	rec := &fakeRecorder{}
	svc := NewCompletionService(p, time.Second, WithMetrics(rec))

	got, err := svc.Complete(context.Background(), "plan")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"days":[]}` {
		t.Errorf("unexpected text %q", got)
	}
	if rec.completions != 1 || rec.failures != 0 {
		t.Errorf("expected 1 successful completion recorded, got %d/%d", rec.completions, rec.failures)
	}
	if svc.ProviderName() != "Gemini" {
		t.Errorf("unexpected provider name %q", svc.ProviderName())
	}
}

func TestCompletionService_RemoteCallError(t *testing.T) {
	cause := errors.New("quota exceeded")
	p := &fakeProvider{name: "Gemini", reply: replyWith("", cause)}
	svc := NewCompletionService(p, time.Second)

	_, err := svc.Complete(context.Background(), "plan")
	var rce *RemoteCallError
	if !errors.As(err, &rce) {
		t.Fatalf("expected *RemoteCallError, got %T", err)
	}
	if err.Error() != "Error calling Gemini API: quota exceeded" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected the provider error to be unwrappable")
	}
}

func TestCompletionService_Timeout(t *testing.T) {
	p := &fakeProvider{name: "Gemini", reply: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := NewCompletionService(p, 20*time.Millisecond)

	_, err := svc.Complete(context.Background(), "plan")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "Error calling Gemini API: request timed out") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCompletionService_BreakerFailsFast(t *testing.T) {
	p := &fakeProvider{name: "OpenAI", reply: replyWith("", errors.New("503"))}
	svc := NewCompletionService(p, time.Second, WithBreaker(resilience.NewBreaker(1, time.Hour)))

	if _, err := svc.Complete(context.Background(), "a"); err == nil {
		t.Fatal("expected first call to fail")
	}
	_, err := svc.Complete(context.Background(), "b")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Error calling OpenAI API:") {
		t.Errorf("open breaker should still read as a remote failure, got %q", err.Error())
	}
	if p.calls() != 1 {
		t.Errorf("expected provider to be called once, got %d", p.calls())
	}
}

func TestCompletionService_Cache(t *testing.T) {
	c, err := ristretto.New(1)
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	t.Cleanup(c.Close)

	p := &fakeProvider{name: "Gemini", reply: replyWith("answer", nil)}
	rec := &fakeRecorder{}
	svc := NewCompletionService(p, time.Second, WithResponseCache(c, time.Minute), WithMetrics(rec))

	for range 2 {
		got, err := svc.Complete(context.Background(), "same prompt")
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if got != "answer" {
			t.Fatalf("unexpected text %q", got)
		}
	}
	if p.calls() != 1 {
		t.Errorf("expected one provider call, got %d", p.calls())
	}
	if rec.hits != 1 || rec.misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", rec.hits, rec.misses)
	}
}

func TestCompletionService_FailuresNotCached(t *testing.T) {
	c, err := ristretto.New(1)
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	t.Cleanup(c.Close)

	fail := true
	p := &fakeProvider{name: "Gemini", reply: func(context.Context, string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	}}
	svc := NewCompletionService(p, time.Second, WithResponseCache(c, time.Minute))

	if _, err := svc.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected failure")
	}
	fail = false
	got, err := svc.Complete(context.Background(), "x")
	if err != nil || got != "ok" {
		t.Fatalf("expected fresh answer after failure, got %q, %v", got, err)
	}
}

func TestCompletionService_ZeroTTLDisablesCache(t *testing.T) {
	c, err := ristretto.New(1)
	if err != nil {
		t.Fatalf("ristretto: %v", err)
	}
	t.Cleanup(c.Close)

	p := &fakeProvider{name: "Gemini", reply: replyWith("answer", nil)}
	svc := NewCompletionService(p, time.Second, WithResponseCache(c, 0))
	for range 2 {
		if _, err := svc.Complete(context.Background(), "p"); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}
	if p.calls() != 2 {
		t.Errorf("expected 2 provider calls with caching disabled, got %d", p.calls())
	}
}

func TestCompletionCacheKeyIsKVSafe(t *testing.T) {
	key := completionCacheKey("Gemini", "anything: {}*>")
	for _, r := range key {
		ok := r == '.' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z')
		if !ok {
			t.Fatalf("key %q contains %q", key, r)
		}
	}
	if completionCacheKey("Gemini", "a") == completionCacheKey("OpenAI", "a") {
		t.Error("keys must differ per provider")
	}
}
