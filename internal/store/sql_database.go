package store

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/migrations"
)

// DB is a connection pool together with the dialect specific helpers the
// repositories need.
type DB struct {
	*sql.DB
	dialect            string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewConnect opens the database described by cfg.DSN. PostgreSQL URLs are
// served by pgx, anything else is treated as a SQLite file.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch DialectFromDSN(cfg.DSN) {
	case migrations.DialectPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	case migrations.DialectSQLite:
		return NewConnectSQLite(ctx, cfg, log)
	}

	return nil, ErrUnsupportedDialect
}

// NewDB wraps an already opened pool. It is used by tests that work with
// sqlmock or a prepared SQLite file.
func NewDB(conn *sql.DB, dialect string, log *logger.Logger) *DB {
	db := &DB{
		DB:      conn,
		dialect: dialect,
		logger:  log,
	}

	if dialect == migrations.DialectPostgres {
		db.errorClassificator = NewPostgresErrorClassifier()
	} else {
		db.errorClassificator = NewSQLiteErrorClassifier()
	}

	return db
}

// DialectFromDSN returns the driver name for dsn.
func DialectFromDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return migrations.DialectPostgres
	}
	if strings.TrimSpace(dsn) == "" {
		return ""
	}

	return migrations.DialectSQLite
}

// Dialect returns the driver name of the pool.
func (db *DB) Dialect() string {
	return db.dialect
}

// Migrate applies the embedded schema for the pool's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

func (db *DB) builder() sq.StatementBuilderType {
	if db.dialect == migrations.DialectPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
