package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/migrations"
	"github.com/MKhiriev/go-support-portal/models"
)

// newSQLiteDB returns a migrated SQLite database living in a temp dir.
func newSQLiteDB(t *testing.T) *DB {
	t.Helper()

	conn, err := sql.Open(migrations.DialectSQLite, sqliteDSN(filepath.Join(t.TempDir(), "portal.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db := NewDB(conn, migrations.DialectSQLite, logger.Nop())
	require.NoError(t, db.Migrate())

	return db
}

func newTestUser(email string) models.User {
	return models.NewUser(
		email,
		[]byte("hash-bytes-hash-bytes-hash-bytes"),
		[]byte("salt-bytes-salt-bytes-salt-bytes"),
		models.RoleStandard,
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	)
}

// countUsers reads through the pool, outside of any unit of work.
func countUsers(t *testing.T, db *DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}
