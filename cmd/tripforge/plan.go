package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Strob0t/TripForge/internal/domain/trip"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a trip and print the results as JSON",
	Example: `  tripforge plan --destination Paris --budget 1000 --interests Food,Art
  tripforge plan --destination Kyoto --budget 2500 --duration 5 --agent culture`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	f := planCmd.Flags()
	f.String("destination", "", "city or region to travel to (required)")
	f.Float64("budget", 0, "total budget in USD")
	f.StringSlice("interests", nil, "comma-separated traveler interests")
	f.Int("duration", trip.DefaultDuration, "trip length in days")
	f.String("agent", string(trip.SelectAll), "which planner to run: all, itinerary, cost or culture")
	_ = planCmd.MarkFlagRequired("destination")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog := setupLogger(cfg, true)
	defer closeLog.Close()

	f := cmd.Flags()
	var req trip.Request
	req.Destination, _ = f.GetString("destination")
	req.Budget, _ = f.GetFloat64("budget")
	req.Interests, _ = f.GetStringSlice("interests")
	req.Duration, _ = f.GetInt("duration")
	agentName, _ := f.GetString("agent")
	req.Agent = trip.Selection(agentName)

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.planner.Plan(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(plan.Envelope())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
