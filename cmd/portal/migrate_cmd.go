package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"adminportal/internal/platform/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres journal migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	}
}
