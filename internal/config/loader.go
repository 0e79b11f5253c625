package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "tripforge.yaml"

// DefaultEnvFile is the dotenv file read before the environment overlay.
const DefaultEnvFile = ".env"

// Load returns a Config using the hierarchy: defaults < YAML < .env < ENV.
// Both files are optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < .env < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("config dotenv: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadDotEnv exports the variables of a dotenv file into the process
// environment. Variables that are already set win over the file.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TRIPFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "TRIPFORGE_CORS_ORIGIN")
	setDuration(&cfg.Server.RequestTimeout, "TRIPFORGE_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.IdempotencyTTL, "TRIPFORGE_IDEMPOTENCY_TTL")

	setString(&cfg.LLM.Provider, "TRIPFORGE_LLM_PROVIDER")
	setString(&cfg.LLM.Model, "TRIPFORGE_LLM_MODEL")
	setDuration(&cfg.LLM.Timeout, "TRIPFORGE_LLM_TIMEOUT")
	setDuration(&cfg.LLM.CacheTTL, "TRIPFORGE_LLM_CACHE_TTL")

	// Provider credentials
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.LiteLLM.URL, "LITELLM_URL")
	setString(&cfg.LiteLLM.MasterKey, "LITELLM_MASTER_KEY")

	// Memory
	setString(&cfg.Memory.Backend, "TRIPFORGE_MEMORY_BACKEND")
	setString(&cfg.Memory.Path, "TRIPFORGE_MEMORY_PATH")
	setString(&cfg.Memory.RedisKey, "TRIPFORGE_MEMORY_REDIS_KEY")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TRIPFORGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TRIPFORGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TRIPFORGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TRIPFORGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TRIPFORGE_PG_HEALTH_CHECK")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRIPFORGE_REDIS_DB")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Stream, "TRIPFORGE_NATS_STREAM")
	setString(&cfg.NATS.Subject, "TRIPFORGE_NATS_SUBJECT")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "TRIPFORGE_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "TRIPFORGE_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "TRIPFORGE_CACHE_L2_TTL")
	setString(&cfg.Cache.IdempotencyBucket, "TRIPFORGE_CACHE_IDEMPOTENCY_BUCKET")

	setString(&cfg.Logging.Level, "TRIPFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TRIPFORGE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TRIPFORGE_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "TRIPFORGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TRIPFORGE_BREAKER_TIMEOUT")

	// Observability
	setBool(&cfg.OTEL.Enabled, "TRIPFORGE_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "TRIPFORGE_OTEL_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "TRIPFORGE_OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "TRIPFORGE_OTEL_INSECURE")
	setFloat64(&cfg.OTEL.SampleRate, "TRIPFORGE_OTEL_SAMPLE_RATE")

	setBool(&cfg.Metrics.Prometheus, "TRIPFORGE_METRICS_PROMETHEUS")
	setString(&cfg.Metrics.Path, "TRIPFORGE_METRICS_PATH")

	setBool(&cfg.MCP.Enabled, "TRIPFORGE_MCP_ENABLED")
}

var (
	validProviders = []string{"gemini", "openai", "litellm"}
	validBackends  = []string{"file", "redis", "postgres"}
)

// validate checks that required fields are set and consistent.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.IdempotencyTTL < 0 {
		return errors.New("server.idempotency_ttl must be >= 0")
	}
	if !slices.Contains(validProviders, cfg.LLM.Provider) {
		return fmt.Errorf("llm.provider must be one of %v, got %q", validProviders, cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be > 0")
	}
	if cfg.LLM.CacheTTL < 0 {
		return errors.New("llm.cache_ttl must be >= 0")
	}
	if !slices.Contains(validBackends, cfg.Memory.Backend) {
		return fmt.Errorf("memory.backend must be one of %v, got %q", validBackends, cfg.Memory.Backend)
	}
	switch cfg.Memory.Backend {
	case "file":
		if cfg.Memory.Path == "" {
			return errors.New("memory.path is required for the file backend")
		}
	case "redis":
		if cfg.Redis.Addr == "" || cfg.Memory.RedisKey == "" {
			return errors.New("redis.addr and memory.redis_key are required for the redis backend")
		}
	case "postgres":
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres backend")
		}
		if cfg.Postgres.MaxConns < 1 {
			return errors.New("postgres.max_conns must be >= 1")
		}
	}
	if cfg.Breaker.MaxFailures < 0 {
		return errors.New("breaker.max_failures must be >= 0")
	}
	if cfg.OTEL.SampleRate < 0 || cfg.OTEL.SampleRate > 1 {
		return errors.New("otel.sample_rate must be between 0 and 1")
	}
	if cfg.Metrics.Prometheus && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
