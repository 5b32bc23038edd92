package db

import (
	"database/sql"
	"testing"
)

// NewTestDB opens an in-memory database with the full inventory schema so
// store and handler tests run against real SQL instead of fakes. Each call
// gets its own database; closing is tied to test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := EnsureSchema(database); err != nil {
		database.Close()
		t.Fatalf("applying test schema: %v", err)
	}

	t.Cleanup(func() { database.Close() })
	return database
}
