package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns a private in-memory database with the lost & found
// schema, closed when the test ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := OpenWithSchema(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
