package main

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/conference-central/internal/config"
	"github.com/iliyamo/conference-central/internal/database"
	"github.com/iliyamo/conference-central/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(serviceName, cfg.LogLevel)

			db, err := database.Open(cmd.Context(), dbOptions(cfg))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}
