package main

import (
	"fmt"
	"os"

	"parcel-ledger/internal/core/config"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Flags
	configDir string

	cfg *config.AppConfig

	rootCmd = &cobra.Command{
		Use:   "parcelctl",
		Short: "Operator commands for the parcel ledger",
		Long: `Operator commands for the parcel ledger database.

Commands:
- migrate: create or update the schema and the status vocabulary
- seed: load the sample dataset (admin, company, offices, employees, clients, parcels)`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return logger.Init(cfg.Environment, cfg.LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding the .env file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// openDatabase connects and brings the schema up to date.
func openDatabase(cmd *cobra.Command) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := migrate(cmd.Context(), db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}
