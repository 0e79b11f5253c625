// Package config provides hierarchical configuration loading for TripForge.
// Precedence: defaults < YAML file < .env file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the TripForge service.
type Config struct {
	Server   Server   `yaml:"server"`
	LLM      LLM      `yaml:"llm"`
	Gemini   Gemini   `yaml:"gemini"`
	OpenAI   OpenAI   `yaml:"openai"`
	LiteLLM  LiteLLM  `yaml:"litellm"`
	Memory   Memory   `yaml:"memory"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	NATS     NATS     `yaml:"nats"`
	Cache    Cache    `yaml:"cache"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
	OTEL     OTEL     `yaml:"otel"`
	Metrics  Metrics  `yaml:"metrics"`
	MCP      MCP      `yaml:"mcp"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port           string        `yaml:"port"`
	CORSOrigin     string        `yaml:"cors_origin"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // Upper bound for a whole request, including all completion calls

	// How long Idempotency-Key responses are replayed; 0 disables replay.
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

// LLM selects and bounds the completion provider.
type LLM struct {
	Provider string        `yaml:"provider"`  // "gemini" | "openai" | "litellm"
	Model    string        `yaml:"model"`     // Empty = provider default
	Timeout  time.Duration `yaml:"timeout"`   // Per completion call
	CacheTTL time.Duration `yaml:"cache_ttl"` // 0 disables the response cache
}

// Gemini holds Google Gemini API configuration.
type Gemini struct {
	APIKey string `yaml:"api_key"`
}

// OpenAI holds OpenAI (or compatible) API configuration.
type OpenAI struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// LiteLLM holds LiteLLM proxy configuration.
type LiteLLM struct {
	URL       string `yaml:"url"`
	MasterKey string `yaml:"master_key"`
}

// Memory selects the memory document backend.
type Memory struct {
	Backend  string `yaml:"backend"`   // "file" | "redis" | "postgres"
	Path     string `yaml:"path"`      // file backend
	RedisKey string `yaml:"redis_key"` // redis backend
}

// Postgres holds PostgreSQL connection configuration.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// Redis holds Redis connection configuration.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATS holds NATS JetStream configuration. An empty URL disables event
// publishing and the L2 cache.
type NATS struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
}

// Cache holds the completion response cache configuration.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"`
	L2Bucket    string        `yaml:"l2_bucket"`
	L2TTL       time.Duration `yaml:"l2_ttl"`

	// IdempotencyBucket holds replayable responses when NATS is configured.
	IdempotencyBucket string `yaml:"idempotency_bucket"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration. MaxFailures 0 disables it.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// OTEL holds OpenTelemetry export configuration.
type OTEL struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Metrics controls the Prometheus scrape endpoint.
type Metrics struct {
	Prometheus bool   `yaml:"prometheus"`
	Path       string `yaml:"path"`
}

// MCP controls the MCP tool endpoint.
type MCP struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:           "8000",
			CORSOrigin:     "*",
			RequestTimeout: 3 * time.Minute,
			IdempotencyTTL: 24 * time.Hour,
		},
		LLM: LLM{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		LiteLLM: LiteLLM{
			URL: "http://localhost:4000",
		},
		Memory: Memory{
			Backend:  "file",
			Path:     "data/memory/memory_store.json",
			RedisKey: "tripforge:memory",
		},
		Postgres: Postgres{
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
		NATS: NATS{
			Stream:  "TRIPS",
			Subject: "trips.planned",
		},
		Cache: Cache{
			L1MaxSizeMB:       32,
			L2Bucket:          "TRIPFORGE_COMPLETIONS",
			L2TTL:             24 * time.Hour,
			IdempotencyBucket: "TRIPFORGE_IDEMPOTENCY",
		},
		Logging: Logging{
			Level:   "info",
			Service: "tripforge",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		OTEL: OTEL{
			Endpoint:    "localhost:4317",
			ServiceName: "tripforge",
			Insecure:    true,
			SampleRate:  1.0,
		},
		Metrics: Metrics{
			Path: "/metrics",
		},
	}
}
