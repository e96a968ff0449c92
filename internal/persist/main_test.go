package persist_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/joydiver/dive-atlas/backend/migrations"
	"github.com/joydiver/dive-atlas/backend/testutil"
)

// TestMain applies all pending migrations to the test database before any
// test in this package runs, so individual tests never think about schema
// state. Without TEST_DATABASE_URL only the unit tests run; the integration
// tests skip themselves.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		os.Exit(m.Run())
	}

	// goose needs database/sql, not a pgx pool, and TestMain has no
	// *testing.T to pass to the pool helper anyway.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("TestMain: create goose provider: %v", err)
	}

	if _, err := provider.Up(context.Background()); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}

	os.Exit(m.Run())
}
