package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/platform/postgres"
)

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 30 * time.Second

var migrateOnce sync.Once

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns DATABASE_URL, falling back to TASKHUB_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("TASKHUB_TEST_DB_URL")
}

// Open connects to the test database and migrates it to the latest version.
// The test is skipped when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	db, err := sql.Open("pgx", GetTestDatabaseURL())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "test database is unreachable")

	var migrateErr error
	migrateOnce.Do(func() {
		log, _ := logger.NewTestLogger()
		migrateErr = postgres.Migrate(ctx, db, "up", log)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
