package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"adminportal/internal/app/server"
)

func newPurgeCmd() *cobra.Command {
	var retention time.Duration
	cmd := &cobra.Command{
		Use:   "purge-journal",
		Short: "Delete submission journal entries older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if retention <= 0 {
				retention = cfg.JournalRetention
			}
			app, err := server.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			deleted, err := app.Journal.Purge(cmd.Context(), retention)
			if err != nil {
				return err
			}
			slog.Info("journal purged", "deleted", deleted, "retention", retention.String())
			return nil
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 0, "retention window, overrides JOURNAL_RETENTION")
	return cmd
}
