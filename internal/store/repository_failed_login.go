package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/models"
)

// incrementOnConflict turns the insert of a first failure into an atomic
// increment of an existing row.
const incrementOnConflict = `ON CONFLICT (ip_address) DO UPDATE
	SET attempts = failed_logins.attempts + 1, last_attempt = excluded.last_attempt
	RETURNING id, attempts`

type failedLoginRepository struct {
	db *DB
	tx DBTX
}

func newFailedLoginRepository(db *DB, tx DBTX) FailedLoginRepository {
	return &failedLoginRepository{
		db: db,
		tx: tx,
	}
}

// Increment records one more failure for ip in a single upsert statement.
func (r *failedLoginRepository) Increment(ctx context.Context, ip string, at time.Time) (models.FailedLogin, error) {
	query, args, err := r.db.builder().
		Insert(models.FailedLogin{}.TableName()).
		Columns("ip_address", "attempts", "last_attempt").
		Values(ip, 1, at).
		Suffix(incrementOnConflict).
		ToSql()
	if err != nil {
		return models.FailedLogin{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record := models.FailedLogin{IPAddress: ip, LastAttempt: at}
	if err := r.tx.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.Attempts); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*failedLoginRepository.Increment").Msg("error recording failed login")
		return models.FailedLogin{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return record, nil
}

// Find returns the record for ip or [ErrFailedLoginNotFound].
func (r *failedLoginRepository) Find(ctx context.Context, ip string) (models.FailedLogin, error) {
	query, args, err := r.db.builder().
		Select("id", "ip_address", "attempts", "last_attempt").
		From(models.FailedLogin{}.TableName()).
		Where(sq.Eq{"ip_address": ip}).
		ToSql()
	if err != nil {
		return models.FailedLogin{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record, err := scanFailedLogin(r.tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.FailedLogin{}, ErrFailedLoginNotFound
	}
	if err != nil {
		return models.FailedLogin{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

// Delete removes the record for ip. Deleting a missing record is not an
// error.
func (r *failedLoginRepository) Delete(ctx context.Context, ip string) error {
	query, args, err := r.db.builder().
		Delete(models.FailedLogin{}.TableName()).
		Where(sq.Eq{"ip_address": ip}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// List returns every record ordered by the last attempt, newest first.
func (r *failedLoginRepository) List(ctx context.Context) ([]models.FailedLogin, error) {
	query, args, err := r.db.builder().
		Select("id", "ip_address", "attempts", "last_attempt").
		From(models.FailedLogin{}.TableName()).
		OrderBy("last_attempt DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*failedLoginRepository.List").Msg("error listing failed logins")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.FailedLogin, 0)
	for rows.Next() {
		record, err := scanFailedLogin(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

func scanFailedLogin(row rowScanner) (models.FailedLogin, error) {
	var record models.FailedLogin
	if err := row.Scan(&record.ID, &record.IPAddress, &record.Attempts, &record.LastAttempt); err != nil {
		return models.FailedLogin{}, err
	}
	return record, nil
}
