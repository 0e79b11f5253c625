package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	tfotel "github.com/Strob0t/TripForge/internal/adapter/otel"
	"github.com/Strob0t/TripForge/internal/port/cache"
	"github.com/Strob0t/TripForge/internal/port/llmprovider"
	"github.com/Strob0t/TripForge/internal/port/metrics"
	"github.com/Strob0t/TripForge/internal/resilience"
)

// RemoteCallError reports a failed completion call. Its message is the
// transcript text shown to callers in place of a model answer.
type RemoteCallError struct {
	Service string
	Err     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("Error calling %s API: %v", e.Service, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// Completer is the narrow interface the domain pipelines depend on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionService wraps a provider with a per-call timeout and optional
// circuit breaker, response cache and metrics. It never retries.
type CompletionService struct {
	provider llmprovider.Provider
	timeout  time.Duration
	breaker  *resilience.Breaker
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  metrics.Recorder
}

// CompletionOption configures a CompletionService.
type CompletionOption func(*CompletionService)

// WithBreaker routes every call through b.
func WithBreaker(b *resilience.Breaker) CompletionOption {
	return func(s *CompletionService) { s.breaker = b }
}

// WithResponseCache caches successful answers keyed by provider and prompt.
// A non-positive ttl disables caching.
func WithResponseCache(c cache.Cache, ttl time.Duration) CompletionOption {
	return func(s *CompletionService) {
		if ttl > 0 {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics reports call latency and cache lookups to r.
func WithMetrics(r metrics.Recorder) CompletionOption {
	return func(s *CompletionService) { s.metrics = r }
}

// NewCompletionService creates a CompletionService. A non-positive timeout
// leaves calls bounded only by the caller's context.
func NewCompletionService(p llmprovider.Provider, timeout time.Duration, opts ...CompletionOption) *CompletionService {
	s := &CompletionService{
		provider: p,
		timeout:  timeout,
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderName returns the display name of the wrapped provider.
func (s *CompletionService) ProviderName() string {
	return s.provider.Name()
}

// Complete sends prompt to the provider and returns its text. Every failure,
// including timeouts and an open breaker, is returned as *RemoteCallError.
func (s *CompletionService) Complete(ctx context.Context, prompt string) (string, error) {
	name := s.provider.Name()
	key := completionCacheKey(name, prompt)

	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "completion cache get failed", "error", err)
		}
		s.metrics.CacheLookup(ctx, ok)
		if ok {
			return string(data), nil
		}
	}

	ctx, span := tfotel.StartCompletionSpan(ctx, name, len(prompt))
	defer span.End()

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var text string
	call := func() error {
		var err error
		text, err = s.provider.Complete(callCtx, prompt)
		return err
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(call)
	} else {
		err = call()
	}
	elapsed := time.Since(start)
	s.metrics.CompletionFinished(ctx, name, elapsed, err)
	span.SetAttributes(attribute.Int("llm.response_length", len(text)))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("request timed out after %s", s.timeout)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "completion failed", "provider", name, "elapsed", elapsed, "error", err)
		return "", &RemoteCallError{Service: name, Err: err}
	}

	slog.DebugContext(ctx, "completion finished", "provider", name, "elapsed", elapsed, "chars", len(text))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(text), s.cacheTTL); err != nil {
			slog.WarnContext(ctx, "completion cache set failed", "error", err)
		}
	}
	return text, nil
}

// completionCacheKey uses only characters valid in NATS KV keys.
func completionCacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + prompt))
	return "completion." + hex.EncodeToString(sum[:])
}
