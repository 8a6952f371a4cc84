package main

import (
	"errors"

	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/core/logger"
	"parcel-ledger/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample dataset",
	Long: `Load the sample dataset. Staff log in with password employee123, clients with
client123 and the admin account with admin123.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close(db)

		s := seed.NewSeeder(db)
		if clearData {
			if err := s.Clear(cmd.Context()); err != nil {
				return err
			}
		}

		sum, err := s.Run(cmd.Context())
		if errors.Is(err, seed.ErrAlreadySeeded) {
			logger.Get().Warn("Sample data already present, rerun with --clear to reload")
			return nil
		}
		if err != nil {
			return err
		}

		logger.Get().Info("Seed complete",
			zap.Int("users", sum.Users),
			zap.Int("offices", sum.Offices),
			zap.Int("parcels", sum.Parcels),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "empty every table before seeding")
}
