package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	tfnats "github.com/Strob0t/TripForge/internal/adapter/nats"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print trip events from NATS as they arrive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := setupLogger(cfg, true)
		defer closeLog.Close()

		if cfg.NATS.URL == "" {
			return errors.New("nats.url is not set (NATS_URL)")
		}
		ctx := cmd.Context()
		q, err := tfnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return err
		}
		defer func() { _ = q.Close() }()

		subject, _ := cmd.Flags().GetString("subject")
		cancel, err := q.Subscribe(ctx, subject, func(_ context.Context, subj string, data []byte) error {
			fmt.Printf("%s %s\n", subj, data)
			return nil
		})
		if err != nil {
			return err
		}
		defer cancel()

		<-ctx.Done()
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("subject", "trips.>", "subject filter")
	rootCmd.AddCommand(eventsCmd)
}
