package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/migrations"
	"github.com/MKhiriev/go-support-portal/models"
)

// userSavepoint guards the statements that can hit the unique email index.
const userSavepoint = "user_write"

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"salt",
	"role",
	"secret",
	"last_login",
	"email_verification_code",
	"signup_email_sent",
	"email_verified",
	"two_factor_enabled",
	"date_created",
}

// userRepository is the SQL implementation of [UserRepository]. It runs
// every statement on the transaction of the unit of work it was vended by.
type userRepository struct {
	db *DB
	tx DBTX
}

func newUserRepository(db *DB, tx DBTX) UserRepository {
	return &userRepository{
		db: db,
		tx: tx,
	}
}

// CreateUser inserts user and returns the identifier assigned by the
// database.
//
// Error handling:
//   - unique violation on email → [ErrEmailAlreadyExists]. The transaction
//     stays usable.
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Insert(user.TableName()).
		Columns(
			"email",
			"password_hash",
			"salt",
			"role",
			"secret",
			"email_verification_code",
			"signup_email_sent",
			"email_verified",
			"two_factor_enabled",
			"date_created",
		).
		Values(
			user.Email,
			user.PasswordHash,
			user.Salt,
			string(user.Role),
			user.Secret,
			user.EmailVerificationCode,
			user.SignupEmailSent,
			user.EmailVerified,
			user.TwoFactorEnabled,
			user.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	err = r.guarded(ctx, func() error {
		if err := r.tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			if r.db.errorClassificator.IsUniqueViolation(err) {
				return ErrEmailAlreadyExists
			}
			log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// guarded runs fn inside a savepoint on Postgres, where any failed
// statement aborts the enclosing transaction. Rolling back to the savepoint
// lets the unit of work commit its other writes.
func (r *userRepository) guarded(ctx context.Context, fn func() error) error {
	if r.db.dialect != migrations.DialectPostgres {
		return fn()
	}

	if _, err := r.tx.ExecContext(ctx, "SAVEPOINT "+userSavepoint); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err := fn(); err != nil {
		if _, rbErr := r.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+userSavepoint); rbErr != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, errors.Join(err, rbErr))
		}
		return err
	}

	if _, err := r.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+userSavepoint); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// FindUserByID returns the user with the given id or [ErrNoUserWasFound].
func (r *userRepository) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindUserByEmail returns the user with the given normalized email or
// [ErrNoUserWasFound].
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

func (r *userRepository) findOne(ctx context.Context, where sq.Eq) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder().
		Select(userColumns...).
		From(models.User{}.TableName()).
		Where(where).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	user, err := scanUser(r.tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.findOne").Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// UpdateUser writes every non-nil field of update.
func (r *userRepository) UpdateUser(ctx context.Context, update models.UserUpdate) error {
	log := logger.FromContext(ctx)

	if update.IsEmpty() {
		return ErrNothingToUpdate
	}

	query, args, err := r.buildUpdateQuery(update).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var result sql.Result
	run := func() (err error) {
		result, err = r.tx.ExecContext(ctx, query, args...)
		return err
	}
	// only the email column is unique
	if update.Email != nil {
		err = r.guarded(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		if r.db.errorClassificator.IsUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.UpdateUser").Int64("user_id", update.ID).Msg("error updating user")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// buildUpdateQuery builds the UPDATE statement for the fields set in update.
func (r *userRepository) buildUpdateQuery(update models.UserUpdate) sq.UpdateBuilder {
	q := r.db.builder().
		Update(models.User{}.TableName()).
		Where(sq.Eq{"id": update.ID})

	if update.Email != nil {
		q = q.Set("email", *update.Email)
	}
	if update.PasswordHash != nil {
		q = q.Set("password_hash", update.PasswordHash)
	}
	if update.Salt != nil {
		q = q.Set("salt", update.Salt)
	}
	if update.Role != nil {
		q = q.Set("role", string(*update.Role))
	}
	if update.Secret != nil {
		q = q.Set("secret", *update.Secret)
	}
	if update.LastLogin != nil {
		q = q.Set("last_login", *update.LastLogin)
	}
	if update.ClearEmailVerificationCode {
		q = q.Set("email_verification_code", nil)
	} else if update.EmailVerificationCode != nil {
		q = q.Set("email_verification_code", *update.EmailVerificationCode)
	}
	if update.SignupEmailSent != nil {
		q = q.Set("signup_email_sent", *update.SignupEmailSent)
	}
	if update.EmailVerified != nil {
		q = q.Set("email_verified", *update.EmailVerified)
	}
	if update.TwoFactorEnabled != nil {
		q = q.Set("two_factor_enabled", *update.TwoFactorEnabled)
	}

	return q
}

// DeleteUser removes the user with the given id.
func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	query, args, err := r.db.builder().
		Delete(models.User{}.TableName()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.DeleteUser").Msg("error deleting user")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// ListUsers returns every user ordered by id.
func (r *userRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query, args, err := r.db.builder().
		Select(userColumns...).
		From(models.User{}.TableName()).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

// CountUsersWithRoles returns the number of users holding any of roles.
func (r *userRepository) CountUsersWithRoles(ctx context.Context, roles ...models.Role) (int, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	query, args, err := r.db.builder().
		Select("COUNT(*)").
		From(models.User{}.TableName()).
		Where(sq.Eq{"role": names}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err := r.tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user                  models.User
		role                  string
		secret, code          sql.NullString
		lastLogin, signupSent sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&role,
		&secret,
		&lastLogin,
		&code,
		&signupSent,
		&user.EmailVerified,
		&user.TwoFactorEnabled,
		&user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	user.Role = models.Role(role)
	if secret.Valid {
		user.Secret = &secret.String
	}
	if code.Valid {
		user.EmailVerificationCode = &code.String
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	if signupSent.Valid {
		user.SignupEmailSent = &signupSent.Time
	}

	return user, nil
}
