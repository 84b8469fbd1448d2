package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"logbook/backend/internal/db"
)

// NewTestDB opens a migrated sqlite database in a per-test temp
// directory. The connection is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}
