package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/deckforge/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds each setup and cleanup statement.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns the first non-empty of DATABASE_URL and
// DECKFORGE_TEST_DB_URL.
func GetTestDatabaseURL() string {
	for _, name := range []string{"DATABASE_URL", "DECKFORGE_TEST_DB_URL"} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// Open connects to the test database, applies the migrations and resets the
// deck tables. The connection is closed when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, GetTestDatabaseURL(), nil)
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, postgres.Migrate(ctx, db, "up", nil), "Failed to run migrations")

	Reset(t, db)
	t.Cleanup(func() {
		Reset(t, db)
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	return db
}

// Reset deletes every stored section and, through the cascade, every item.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	_, err := db.ExecContext(ctx, "DELETE FROM sections")
	require.NoError(t, err, "Failed to reset deck tables")
}
