package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/mock"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/internal/store"
)

const testClientIP = "203.0.113.7"

// newTestManager returns a manager over a migrated SQLite file.
func newTestManager(t *testing.T) *store.Manager {
	t.Helper()

	db, err := store.NewConnect(context.Background(), config.DB{DSN: filepath.Join(t.TempDir(), "portal.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return store.NewManager(db, logger.Nop())
}

func testAppConfig() config.App {
	return config.App{
		Pepper:          "test-pepper",
		SessionSignKey:  "test-session-key",
		SessionIssuer:   "support-portal",
		SessionDuration: time.Hour,
		BaseURL:         "http://portal.test",
		TOTPIssuer:      "Support Portal",
		Environment:     config.EnvProduction,
	}
}

type serviceMocks struct {
	auth         *mock.MockAuthService
	session      *mock.MockSessionService
	verification *mock.MockVerificationService
	health       *mock.MockHealthService
}

// newMockedHandler returns a handler over mocked services and a real,
// empty unit-of-work manager.
func newMockedHandler(t *testing.T) (*Handler, *serviceMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mocks := &serviceMocks{
		auth:         mock.NewMockAuthService(ctrl),
		session:      mock.NewMockSessionService(ctrl),
		verification: mock.NewMockVerificationService(ctrl),
		health:       mock.NewMockHealthService(ctrl),
	}

	services := &service.Services{
		AuthService:         mocks.auth,
		SessionService:      mocks.session,
		VerificationService: mocks.verification,
		HealthService:       mocks.health,
	}

	return NewHandler(services, newTestManager(t), testAppConfig(), logger.Nop()), mocks
}

// serve sends one request through router. body is JSON encoded unless it
// is nil.
func serve(t *testing.T, router http.Handler, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("X-Real-IP", testClientIP)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// responseCookie returns the session cookie set by rr, or nil.
func responseCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func decodeResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
