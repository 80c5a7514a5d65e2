package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bi-service/internal/config"
	"bi-service/internal/db"
	"bi-service/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the inspection tables and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.DemoMode {
			return fmt.Errorf("migrate needs a database, unset APP_DEMO_MODE")
		}

		appLogger := logger.New(cfg.Environment)
		database, err := db.New(cfg, appLogger)
		if err != nil {
			return err
		}
		return db.Migrate(database, appLogger)
	},
}
