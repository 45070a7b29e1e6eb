package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/metrics"
	"github.com/MKhiriev/go-support-portal/internal/mock"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/models"
)

const testPepper = "test-pepper"

// testClock is a settable clock shared by the guard and the TOTP engine.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestManager returns a manager over a migrated SQLite file.
func newTestManager(t *testing.T) *store.Manager {
	t.Helper()

	db, err := store.NewConnect(context.Background(), config.DB{DSN: filepath.Join(t.TempDir(), "portal.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return store.NewManager(db, logger.Nop())
}

type authFixture struct {
	svc     *authService
	manager *store.Manager
	clock   *testClock
	qr      *mock.MockQRRenderer
	metrics *metrics.Metrics
}

func newAuthFixture(t *testing.T, blacklist ...string) *authFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	qr := mock.NewMockQRRenderer(ctrl)
	manager := newTestManager(t)
	clock := newTestClock()
	m := metrics.Nop()

	guard := NewLoginGuard()
	guard.now = clock.now
	engine := NewTOTPEngine(qr)
	engine.now = clock.now

	svc := NewAuthService(AuthOptions{
		Manager:    manager,
		Guard:      guard,
		TOTP:       engine,
		Policy:     NewPasswordPolicy(blacklist...),
		Pepper:     testPepper,
		TOTPIssuer: "Support Portal",
		Metrics:    m,
	}).(*authService)
	svc.now = clock.now

	return &authFixture{svc: svc, manager: manager, clock: clock, qr: qr, metrics: m}
}

// register signs a verified-free standard user up and returns the id.
func (f *authFixture) register(t *testing.T, email, password string) int64 {
	t.Helper()

	id, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return id
}

func (f *authFixture) identity(t *testing.T, id int64) models.Identity {
	t.Helper()

	identity, err := f.svc.LoadIdentity(context.Background(), models.Session{UserID: id})
	require.NoError(t, err)
	return identity
}
