// Package dbtest opens a migrated postgres database for adapter tests.
//
// Tests are skipped unless PARCEL_LEDGER_TEST_DSN points at a disposable database,
// e.g. "host=localhost user=postgres password=postgres dbname=parcel_ledger_test sslmode=disable".
// With PARCEL_LEDGER_REQUIRE_DB set a missing DSN fails the test instead; `make test-db`
// and CI set both. Packages share the database, so run them with -p 1.
package dbtest

import (
	"context"
	"os"
	"testing"

	"parcel-ledger/internal/core/database"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// EnvDSN names the environment variable holding the test database DSN.
const EnvDSN = "PARCEL_LEDGER_TEST_DSN"

// EnvRequire turns a missing DSN into a failure.
const EnvRequire = "PARCEL_LEDGER_REQUIRE_DB"

// Open connects, migrates and empties every table. The test is skipped when no DSN is set.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		if os.Getenv(EnvRequire) != "" {
			t.Fatalf("%s is set but %s is empty", EnvRequire, EnvDSN)
		}
		t.Skipf("%s not set, skipping database test", EnvDSN)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := database.Truncate(context.Background(), db); err != nil {
		t.Fatalf("failed to empty test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
