// Package dbtest provides shared test helpers for creating test databases.
// All test packages that need a database should use NewTestDB instead of
// writing their own setup functions.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/ManojkumarBalini/screenrec/internal/db"
)

// NewTestDB creates a temp-file SQLite database in t.TempDir() with all
// migrations applied. Cleanup (Close) is registered via t.Cleanup
// automatically.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("dbtest: failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}
