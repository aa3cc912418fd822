package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/slotwise/internal/db"
)

// NewTestDB opens a migrated in-memory run store that lives for the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err, "opening in-memory run store")
	t.Cleanup(func() { _ = database.Close() })
	return database
}
