package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWithLogging(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
		wantParts []string
	}{
		{
			name:      "success is logged at info",
			status:    http.StatusOK,
			body:      "OK",
			wantLevel: `"level":"info"`,
			wantParts: []string{`"method":"POST"`, `"uri":"/login"`, `"status":200`, `"size":2`, `"ip":"192.0.2.1"`},
		},
		{
			name:      "client error is logged at info",
			status:    http.StatusUnauthorized,
			wantLevel: `"level":"info"`,
			wantParts: []string{`"status":401`, `"size":0`},
		},
		{
			name:      "server error is logged at error",
			status:    http.StatusInternalServerError,
			wantLevel: `"level":"error"`,
			wantParts: []string{`"status":500`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &Handler{}

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req = req.WithContext(zerolog.New(&buf).WithContext(req.Context()))
			rr := httptest.NewRecorder()

			h.withLogging(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, buf.String(), tt.wantLevel)
			for _, part := range tt.wantParts {
				assert.Contains(t, buf.String(), part)
			}
			assert.Contains(t, buf.String(), `"duration":`)
		})
	}
}

func TestWithLogging_ImplicitStatus(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{}

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(zerolog.New(&buf).WithContext(req.Context()))
	h.withLogging(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"status":200`)
}
