package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when a user cannot be created or
	// renamed because another account already uses the email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match one user
	// record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrFailedLoginNotFound is returned when no failed-login record exists
	// for the requested address.
	ErrFailedLoginNotFound = errors.New("failed login record was not found")

	// ErrNothingToUpdate is returned for a [models.UserUpdate] without any
	// field set.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Unit of work errors.
var (
	// ErrSessionDiscarded is returned by [Manager.Session] once the bound
	// unit of work failed to commit or was discarded. The request has to
	// start over.
	ErrSessionDiscarded = errors.New("unit of work was discarded")

	// ErrSessionFinished is returned when a finalized unit of work is used.
	ErrSessionFinished = errors.New("unit of work is already finished")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommittingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back.
	ErrCommittingTransaction = errors.New("failed to commit transaction")

	// ErrRollingBackTransaction is returned when a rollback fails for any
	// reason other than the transaction being already finished.
	ErrRollingBackTransaction = errors.New("failed to roll back transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrUnsupportedDialect is returned for a DSN no driver is wired for.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
)
