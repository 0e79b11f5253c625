// Command tripforge serves the travel planning API and offers CLI access to
// the same planner and memory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Strob0t/TripForge/internal/config"
	"github.com/Strob0t/TripForge/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "tripforge",
	Short:         "TripForge plans trips with three cooperating AI agents",
	Long:          `TripForge builds an itinerary, a cost estimate and a cultural guide for a destination, remembering past trips between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "path to the YAML configuration file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the configured logger as the slog default. Commands
// that own stdout log to stderr instead.
func setupLogger(cfg *config.Config, toStderr bool) logger.Closer {
	out := os.Stdout
	if toStderr {
		out = os.Stderr
	}
	l, closer := logger.NewWithWriter(cfg.Logging, out)
	slog.SetDefault(l)
	return closer
}
