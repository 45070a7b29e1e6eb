package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/migrations"
)

// ── PolicyFor ─────────────────────────────────────────────────────────────────

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		scope Scope
		want  Policy
	}{
		{scope: ScopeAdHoc, want: Policy{CommitOnFlush: true, CommitOnClose: true}},
		{scope: ScopeRequest, want: Policy{CommitOnClose: true}},
		{scope: ScopeInit, want: Policy{CommitOnClose: true}},
		{scope: ScopeTest, want: Policy{}},
	}

	for _, tt := range tests {
		t.Run(tt.scope.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, PolicyFor(tt.scope))
		})
	}
}

// ── Session / Close with SQLite ───────────────────────────────────────────────

func TestManager_RequestScopeCommitsOnClose(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := m.Bind(context.Background(), ScopeRequest)

	uow, err := m.Session(ctx)
	require.NoError(t, err)

	id, err := uow.Users().CreateUser(ctx, newTestUser("a@example.com"))
	require.NoError(t, err)
	require.NoError(t, m.CommitOrFlush(ctx, uow))

	// flushed but not committed yet: the same unit reads its own write
	again, err := m.Session(ctx)
	require.NoError(t, err)
	assert.Same(t, uow, again)

	found, err := again.Users().FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", found.Email)

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 1, countUsers(t, db))

	// idempotent
	require.NoError(t, m.Close(ctx))
}

func TestManager_TestScopeRollsBack(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := m.Bind(context.Background(), ScopeTest)

	err := m.WithSession(ctx, func(uow *UnitOfWork) error {
		_, err := uow.Users().CreateUser(ctx, newTestUser("t@example.com"))
		return err
	})
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 0, countUsers(t, db))
}

func TestManager_InitScopeCommitsOnClose(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := m.Bind(context.Background(), ScopeInit)

	scope, bound := m.BoundScope(ctx)
	require.True(t, bound)
	assert.Equal(t, ScopeInit, scope)

	err := m.WithSession(ctx, func(uow *UnitOfWork) error {
		_, err := uow.Users().CreateUser(ctx, newTestUser("init@example.com"))
		return err
	})
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 1, countUsers(t, db))
}

func TestManager_AdHocCommitsImmediately(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := context.Background()

	_, bound := m.BoundScope(ctx)
	assert.False(t, bound)

	uow, err := m.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, ScopeAdHoc, uow.Scope())

	_, err = uow.Users().CreateUser(ctx, newTestUser("adhoc@example.com"))
	require.NoError(t, err)
	require.NoError(t, m.CommitOrFlush(ctx, uow))

	assert.Equal(t, 1, countUsers(t, db))
	assert.ErrorIs(t, uow.Flush(), ErrSessionFinished)

	// Close without a binding does nothing
	assert.NoError(t, m.Close(ctx))
}

func TestManager_WithSessionAdHocRollsBackOnError(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := context.Background()

	boom := errors.New("boom")
	err := m.WithSession(ctx, func(uow *UnitOfWork) error {
		if _, err := uow.Users().CreateUser(ctx, newTestUser("x@example.com")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countUsers(t, db))
}

func TestManager_DiscardRollsBackAndBlocksSession(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := m.Bind(context.Background(), ScopeRequest)

	uow, err := m.Session(ctx)
	require.NoError(t, err)
	_, err = uow.Users().CreateUser(ctx, newTestUser("d@example.com"))
	require.NoError(t, err)

	require.NoError(t, m.Discard(ctx))
	require.NoError(t, m.Discard(ctx))
	require.NoError(t, m.Close(ctx))

	assert.Equal(t, 0, countUsers(t, db))

	_, err = m.Session(ctx)
	assert.ErrorIs(t, err, ErrSessionDiscarded)
}

func TestManager_CloseWithoutSessionIsNoop(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := m.Bind(context.Background(), ScopeRequest)

	assert.NoError(t, m.Close(ctx))
	assert.NoError(t, m.Close(ctx))
}

func TestManager_SessionSurvivesCanceledDerivedContext(t *testing.T) {
	db := newSQLiteDB(t)
	m := NewManager(db, logger.Nop())
	ctx := m.Bind(context.Background(), ScopeRequest)

	derived, cancel := context.WithCancel(ctx)
	uow, err := m.Session(derived)
	require.NoError(t, err)
	_, err = uow.Users().CreateUser(ctx, newTestUser("c@example.com"))
	require.NoError(t, err)
	cancel()

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 1, countUsers(t, db))
}

// ── failure paths with sqlmock ────────────────────────────────────────────────

func TestManager_FailedCommitDiscardsBinding(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	m := NewManager(NewDB(conn, migrations.DialectPostgres, logger.Nop()), logger.Nop())
	ctx := m.Bind(context.Background(), ScopeRequest)

	_, err = m.Session(ctx)
	require.NoError(t, err)

	err = m.Close(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommittingTransaction)

	_, err = m.Session(ctx)
	assert.ErrorIs(t, err, ErrSessionDiscarded)

	// already finalized
	assert.NoError(t, m.Close(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_AdHocCommitFailurePropagates(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	m := NewManager(NewDB(conn, migrations.DialectPostgres, logger.Nop()), logger.Nop())
	ctx := context.Background()

	err = m.WithSession(ctx, func(uow *UnitOfWork) error { return nil })
	assert.ErrorIs(t, err, ErrCommittingTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_BeginFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	m := NewManager(NewDB(conn, migrations.DialectPostgres, logger.Nop()), logger.Nop())
	ctx := m.Bind(context.Background(), ScopeRequest)

	_, err = m.Session(ctx)
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestManager_TestScopeRollsBackWithMock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewManager(NewDB(conn, migrations.DialectPostgres, logger.Nop()), logger.Nop())
	ctx := m.Bind(context.Background(), ScopeTest)

	_, err = m.Session(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
