package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory sqlite database with the full schema
// applied.
func newTestDB(t *testing.T) *Manager {
	t.Helper()
	m, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("nosuchdriver", "dsn")
	require.Error(t, err)
}
