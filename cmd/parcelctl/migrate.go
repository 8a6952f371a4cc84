package main

import (
	"context"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/logger"
	parceladapter "parcel-ledger/internal/features/parcels/adapters"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close(db)

		logger.Get().Info("Database migrations completed successfully")
		return nil
	},
}

func migrate(ctx context.Context, db *gorm.DB) error {
	logger.Get().Info("Running database migrations")
	if err := database.Migrate(db); err != nil {
		return err
	}
	return parceladapter.SyncStatusCatalog(ctx, db)
}
