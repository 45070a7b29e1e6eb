package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-support-portal/internal/logger"
)

// Scope tells the [Manager] how a unit of work is finalized.
type Scope int

const (
	// ScopeAdHoc units are committed and closed by the first CommitOrFlush.
	ScopeAdHoc Scope = iota
	// ScopeRequest units live for one inbound request and commit at teardown.
	ScopeRequest
	// ScopeTest units roll back at teardown.
	ScopeTest
	// ScopeInit units cover the startup sequence and commit when it closes.
	ScopeInit
)

func (s Scope) String() string {
	switch s {
	case ScopeAdHoc:
		return "ad-hoc"
	case ScopeRequest:
		return "request"
	case ScopeTest:
		return "test"
	case ScopeInit:
		return "init"
	}
	return "unknown"
}

// Policy is the commit behavior derived from a [Scope].
type Policy struct {
	// CommitOnFlush finalizes the unit on every CommitOrFlush.
	CommitOnFlush bool
	// CommitOnClose commits at Close; otherwise Close rolls back.
	CommitOnClose bool
}

// PolicyFor returns the commit policy of scope.
func PolicyFor(scope Scope) Policy {
	switch scope {
	case ScopeRequest, ScopeInit:
		return Policy{CommitOnClose: true}
	case ScopeTest:
		return Policy{}
	default:
		return Policy{CommitOnFlush: true, CommitOnClose: true}
	}
}

// UnitOfWork is one database transaction and the repositories bound to it.
// Reads made through a unit see every write made earlier through the same
// unit.
type UnitOfWork struct {
	db    *DB
	tx    *sql.Tx
	scope Scope
	done  bool
}

// Scope returns the scope the unit was opened with.
func (u *UnitOfWork) Scope() Scope {
	return u.scope
}

// Users returns the user repository bound to the unit's transaction.
func (u *UnitOfWork) Users() UserRepository {
	return newUserRepository(u.db, u.tx)
}

// FailedLogins returns the failed-login repository bound to the unit's
// transaction.
func (u *UnitOfWork) FailedLogins() FailedLoginRepository {
	return newFailedLoginRepository(u.db, u.tx)
}

// Flush makes pending writes visible to later reads of the unit. Statements
// run inside the open transaction, so this only checks that the unit is
// still usable.
func (u *UnitOfWork) Flush() error {
	if u.done {
		return ErrSessionFinished
	}
	return nil
}

func (u *UnitOfWork) commit() error {
	if u.done {
		return ErrSessionFinished
	}
	u.done = true

	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}
	return nil
}

func (u *UnitOfWork) rollback() error {
	if u.done {
		return nil
	}
	u.done = true

	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %w", ErrRollingBackTransaction, err)
	}
	return nil
}

type bindingKey struct{}

// binding ties a lazily opened unit of work to a context.
type binding struct {
	mu        sync.Mutex
	scope     Scope
	uow       *UnitOfWork
	discarded bool
}

// Manager issues units of work and finalizes them according to their scope.
type Manager struct {
	db        *DB
	txOptions *sql.TxOptions
	logger    *logger.Logger
}

// NewManager constructs a [Manager] over db.
func NewManager(db *DB, log *logger.Logger) *Manager {
	return &Manager{
		db:     db,
		logger: log,
	}
}

// DB returns the underlying pool.
func (m *Manager) DB() *DB {
	return m.db
}

// Bind returns a context carrying a new binding for scope. The unit of work
// itself is opened by the first [Manager.Session] call.
func (m *Manager) Bind(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, bindingKey{}, &binding{scope: scope})
}

// BoundScope reports the scope bound to ctx.
func (m *Manager) BoundScope(ctx context.Context) (Scope, bool) {
	b := bindingFrom(ctx)
	if b == nil {
		return ScopeAdHoc, false
	}
	return b.scope, true
}

func bindingFrom(ctx context.Context) *binding {
	b, _ := ctx.Value(bindingKey{}).(*binding)
	return b
}

// Session returns the unit of work bound to ctx, opening it on first use.
// Without a binding a fresh ad-hoc unit is returned; the caller finalizes
// it with [Manager.CommitOrFlush].
func (m *Manager) Session(ctx context.Context) (*UnitOfWork, error) {
	b := bindingFrom(ctx)
	if b == nil {
		return m.begin(ctx, ScopeAdHoc)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.discarded {
		return nil, ErrSessionDiscarded
	}
	if b.uow != nil && !b.uow.done {
		return b.uow, nil
	}

	uow, err := m.begin(ctx, b.scope)
	if err != nil {
		return nil, err
	}
	b.uow = uow

	return uow, nil
}

func (m *Manager) begin(ctx context.Context, scope Scope) (*UnitOfWork, error) {
	log := logger.FromContext(ctx)

	// the unit outlives derived contexts of its first caller; request
	// cancellation is handled by Discard
	tx, err := m.db.BeginTx(context.WithoutCancel(ctx), m.txOptions)
	if err != nil {
		log.Err(err).Str("func", "*Manager.begin").Str("scope", scope.String()).Msg("error beginning transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	return &UnitOfWork{db: m.db, tx: tx, scope: scope}, nil
}

// CommitOrFlush commits and closes ad-hoc units. Units of any other scope
// are only flushed; they are finalized by [Manager.Close].
func (m *Manager) CommitOrFlush(ctx context.Context, uow *UnitOfWork) error {
	if !PolicyFor(uow.scope).CommitOnFlush {
		return uow.Flush()
	}

	if err := uow.commit(); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*Manager.CommitOrFlush").Msg("ad-hoc commit failed")
		return err
	}
	return nil
}

// Close finalizes the unit bound to ctx: request and init units commit, test
// units roll back. Close is idempotent and does nothing when no unit was
// opened. A failed commit marks the binding discarded.
func (m *Manager) Close(ctx context.Context) error {
	b := bindingFrom(ctx)
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	uow := b.uow
	b.uow = nil
	if uow == nil || uow.done {
		return nil
	}

	if !PolicyFor(b.scope).CommitOnClose {
		return uow.rollback()
	}

	if err := uow.commit(); err != nil {
		b.discarded = true
		logger.FromContext(ctx).Err(err).Str("func", "*Manager.Close").Str("scope", b.scope.String()).Msg("unit of work discarded")
		return err
	}

	return nil
}

// Discard rolls back the unit bound to ctx regardless of its scope. Later
// Session calls on the same binding fail with [ErrSessionDiscarded].
func (m *Manager) Discard(ctx context.Context) error {
	b := bindingFrom(ctx)
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.discarded = true
	uow := b.uow
	b.uow = nil
	if uow == nil {
		return nil
	}

	return uow.rollback()
}

// WithSession runs fn inside the unit of work of ctx and flushes (or, for
// ad-hoc units, commits) it afterwards. An ad-hoc unit is rolled back when
// fn fails.
func (m *Manager) WithSession(ctx context.Context, fn func(uow *UnitOfWork) error) (err error) {
	uow, err := m.Session(ctx)
	if err != nil {
		return err
	}

	adHoc := PolicyFor(uow.scope).CommitOnFlush
	defer func() {
		if p := recover(); p != nil {
			if adHoc {
				_ = uow.rollback()
			}
			panic(p)
		}
	}()

	if err = fn(uow); err != nil {
		if adHoc {
			_ = uow.rollback()
		}
		return err
	}

	return m.CommitOrFlush(ctx, uow)
}
