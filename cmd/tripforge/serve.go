package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	tfhttp "github.com/Strob0t/TripForge/internal/adapter/http"
	tfmcp "github.com/Strob0t/TripForge/internal/adapter/mcp"
	"github.com/Strob0t/TripForge/internal/port/llmprovider"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog := setupLogger(cfg, false)
	defer closeLog.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"llm_provider", cfg.LLM.Provider,
		"memory_backend", cfg.Memory.Backend,
	)

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if hc, ok := a.provider.(llmprovider.HealthChecker); ok {
		if err := hc.Health(ctx); err != nil {
			slog.Warn("llm provider not reachable yet", "error", err)
		}
	}

	rc := tfhttp.RouterConfig{
		CORSOrigin:     cfg.Server.CORSOrigin,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.OTEL.Enabled {
		rc.TraceService = cfg.OTEL.ServiceName
	}
	if a.prometheus != nil {
		rc.MetricsPath = cfg.Metrics.Path
		rc.Metrics = a.prometheus.Handler()
	}
	if a.idempotency != nil {
		rc.Idempotency = a.idempotency
		rc.IdempotencyTTL = cfg.Server.IdempotencyTTL
	}
	if cfg.MCP.Enabled {
		mcpSrv := tfmcp.NewServer(tfmcp.ServerConfig{
			Name:    "tripforge",
			Version: tfhttp.Version,
		}, tfmcp.ServerDeps{Planner: a.planner})
		rc.MCP = mcpSrv.Handler()
	}
	r := tfhttp.NewRouter(&tfhttp.Handlers{Planner: a.planner}, rc)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "mcp", cfg.MCP.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
