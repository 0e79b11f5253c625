package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Strob0t/TripForge/internal/adapter/filestore"
	tfnats "github.com/Strob0t/TripForge/internal/adapter/nats"
	"github.com/Strob0t/TripForge/internal/adapter/natskv"
	tfotel "github.com/Strob0t/TripForge/internal/adapter/otel"
	"github.com/Strob0t/TripForge/internal/adapter/postgres"
	"github.com/Strob0t/TripForge/internal/adapter/prometheus"
	tfredis "github.com/Strob0t/TripForge/internal/adapter/redis"
	"github.com/Strob0t/TripForge/internal/adapter/ristretto"
	"github.com/Strob0t/TripForge/internal/adapter/tiered"
	"github.com/Strob0t/TripForge/internal/config"
	"github.com/Strob0t/TripForge/internal/port/cache"
	"github.com/Strob0t/TripForge/internal/port/llmprovider"
	"github.com/Strob0t/TripForge/internal/port/memorystore"
	"github.com/Strob0t/TripForge/internal/port/metrics"
	"github.com/Strob0t/TripForge/internal/resilience"
	"github.com/Strob0t/TripForge/internal/service"
)

const idempotencyStoreMB = 16

// app holds the wired services shared by every command.
type app struct {
	cfg        *config.Config
	provider   llmprovider.Provider
	memory     *service.MemoryService
	planner    *service.PlannerService
	queue      *tfnats.Queue
	prometheus *prometheus.Recorder

	// idempotency stores replayable plan responses; nil when disabled.
	idempotency cache.Cache

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) onClose(fn func()) { a.closers = append(a.closers, fn) }

// buildMemoryApp wires only the memory backend, for commands that never call
// the completion provider.
func buildMemoryApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	store, err := a.openMemoryStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.memory = service.NewMemoryService(store)
	return a, nil
}

// buildApp wires the full planner: observability, provider, cache, memory
// backend and event publishing.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := buildMemoryApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.wirePlanner(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wirePlanner(ctx context.Context) error {
	cfg := a.cfg

	shutdownOTEL, err := tfotel.Init(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	a.onClose(func() {
		if err := shutdownOTEL(context.Background()); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	})

	recorders := metrics.Multi{}
	if cfg.OTEL.Enabled {
		m, err := tfotel.NewMetrics(nil)
		if err != nil {
			return fmt.Errorf("otel metrics: %w", err)
		}
		recorders = append(recorders, m)
	}
	if cfg.Metrics.Prometheus {
		a.prometheus = prometheus.New()
		recorders = append(recorders, a.prometheus)
	}

	a.provider, err = llmprovider.New(cfg.LLM.Provider, providerConfig(cfg))
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	slog.Info("llm provider ready", "provider", cfg.LLM.Provider, "name", a.provider.Name())

	if cfg.NATS.URL != "" {
		a.queue, err = tfnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		a.onClose(func() { _ = a.queue.Close() })
	}

	opts := []service.CompletionOption{service.WithMetrics(recorders)}
	if cfg.Breaker.MaxFailures > 0 {
		opts = append(opts, service.WithBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)))
	}
	if cfg.LLM.CacheTTL > 0 {
		c, err := a.responseCache(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, service.WithResponseCache(c, cfg.LLM.CacheTTL))
	}
	llm := service.NewCompletionService(a.provider, cfg.LLM.Timeout, opts...)

	agents := []service.Agent{
		service.NewItineraryAgent(llm, a.memory, recorders),
		service.NewCostAgent(llm, recorders),
		service.NewCultureAgent(llm, recorders),
	}
	var plannerOpts []service.PlannerOption
	if a.queue != nil {
		plannerOpts = append(plannerOpts, service.WithEvents(a.queue, cfg.NATS.Subject))
	}
	a.planner = service.NewPlannerService(agents, a.memory, plannerOpts...)

	if cfg.Server.IdempotencyTTL > 0 {
		a.idempotency, err = a.idempotencyStore(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// idempotencyStore shares replayable responses across instances through a
// JetStream KV bucket, or keeps them in process without NATS.
func (a *app) idempotencyStore(ctx context.Context) (cache.Cache, error) {
	if a.queue != nil {
		kv, err := a.queue.KeyValue(ctx, a.cfg.Cache.IdempotencyBucket, a.cfg.Server.IdempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("idempotency store: %w", err)
		}
		return natskv.New(kv), nil
	}
	c, err := ristretto.New(idempotencyStoreMB)
	if err != nil {
		return nil, fmt.Errorf("idempotency store: %w", err)
	}
	a.onClose(c.Close)
	return c, nil
}

// responseCache builds the in-process cache, backed by a shared JetStream KV
// bucket when NATS is configured.
func (a *app) responseCache(ctx context.Context) (cache.Cache, error) {
	l1, err := ristretto.New(a.cfg.Cache.L1MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("l1 cache: %w", err)
	}
	a.onClose(l1.Close)
	if a.queue == nil {
		return l1, nil
	}

	kv, err := a.queue.KeyValue(ctx, a.cfg.Cache.L2Bucket, a.cfg.Cache.L2TTL)
	if err != nil {
		return nil, fmt.Errorf("l2 cache: %w", err)
	}
	return tiered.New(l1, natskv.New(kv), a.cfg.LLM.CacheTTL), nil
}

func (a *app) openMemoryStore(ctx context.Context) (memorystore.Store, error) {
	cfg := a.cfg
	switch cfg.Memory.Backend {
	case "file":
		slog.Info("memory backend", "backend", "file", "path", cfg.Memory.Path)
		return filestore.New(cfg.Memory.Path), nil

	case "redis":
		s := tfredis.New(cfg.Redis, cfg.Memory.RedisKey)
		a.onClose(func() { _ = s.Close() })
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		slog.Info("memory backend", "backend", "redis", "addr", cfg.Redis.Addr, "key", cfg.Memory.RedisKey)
		return s, nil

	case "postgres":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.onClose(pool.Close)
		slog.Info("memory backend", "backend", "postgres")
		return postgres.NewMemoryStore(pool), nil
	}
	return nil, errors.New("unknown memory backend " + cfg.Memory.Backend)
}

// providerConfig maps the typed configuration onto the registry's string
// settings for the selected provider.
func providerConfig(cfg *config.Config) map[string]string {
	m := map[string]string{llmprovider.ConfigModel: cfg.LLM.Model}
	switch cfg.LLM.Provider {
	case "gemini":
		m[llmprovider.ConfigAPIKey] = cfg.Gemini.APIKey
	case "openai":
		m[llmprovider.ConfigAPIKey] = cfg.OpenAI.APIKey
		m[llmprovider.ConfigBaseURL] = cfg.OpenAI.BaseURL
	case "litellm":
		m[llmprovider.ConfigBaseURL] = cfg.LiteLLM.URL
		m[llmprovider.ConfigMasterKey] = cfg.LiteLLM.MasterKey
	}
	return m
}
