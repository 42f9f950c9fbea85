package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and print the schema version",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Read()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		conn, cleanup, err := db.NewDatabase(&cfg.Database, cliLogger(cfg))
		if err != nil {
			return err
		}
		defer cleanup()

		version, dirty, err := conn.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if dirty {
			warnColor.Printf("Schema version %d is dirty\n", version)
			return nil
		}
		successColor.Printf("✓ Schema is at version %d\n", version)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(migrateCmd)
}
