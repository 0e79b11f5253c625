package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	tfhttp "github.com/Strob0t/TripForge/internal/adapter/http"
	tfmcp "github.com/Strob0t/TripForge/internal/adapter/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the planner tools over MCP on stdin/stdout",
	Long: `Runs the MCP server on standard input and output so a local assistant can
call plan_trip, get_memory and clear_memory. Logs go to stderr so they do not
corrupt the JSON-RPC stream. Use "serve" with mcp.enabled for HTTP.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogger(cfg, true)
		defer closeLog.Close()

		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := tfmcp.NewServer(tfmcp.ServerConfig{
			Name:    "tripforge",
			Version: tfhttp.Version,
		}, tfmcp.ServerDeps{Planner: a.planner})

		slog.Info("starting mcp server", "transport", "stdio")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
