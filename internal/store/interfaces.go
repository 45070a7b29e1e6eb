package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/MKhiriev/go-support-portal/models"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepository reads and writes [models.User] rows.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, update models.UserUpdate) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsersWithRoles(ctx context.Context, roles ...models.Role) (int, error)
}

// FailedLoginRepository keeps per-address failure counters.
//
// Increment must be atomic: concurrent calls for the same address never
// lose an update.
type FailedLoginRepository interface {
	Increment(ctx context.Context, ip string, at time.Time) (models.FailedLogin, error)
	Find(ctx context.Context, ip string) (models.FailedLogin, error)
	Delete(ctx context.Context, ip string) error
	// List returns every record, most recent failure first.
	List(ctx context.Context) ([]models.FailedLogin, error)
}
