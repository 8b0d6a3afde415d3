package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopapi/internal/config"
	"shopapi/internal/db"
	"shopapi/internal/logging"
)

// migrateCmd creates or updates the schema and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logging.New(cfg.LogLevel)

		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return err
		}
		if resetDB || cfg.ResetDB {
			db.Reset(gormDB, log)
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
		return nil
	},
}
