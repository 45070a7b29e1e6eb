package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/app"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidCredentials: http.StatusUnauthorized,
	service.ErrInvalidSession:     http.StatusUnauthorized,
	service.ErrAccountLocked:      http.StatusTooManyRequests,

	service.ErrInvalidOrExpiredToken: http.StatusBadRequest,
	service.ErrWeakPassword:          http.StatusBadRequest,
	service.ErrInvalidEmail:          http.StatusBadRequest,
	service.ErrEmptyPassword:         http.StatusBadRequest,
	service.ErrPasswordMismatch:      http.StatusBadRequest,
	service.ErrInvalidRole:           http.StatusBadRequest,
	service.ErrUnknownField:          http.StatusBadRequest,
	service.ErrMissingAddress:        http.StatusBadRequest,

	service.ErrCurrentPasswordRequired: http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusForbidden,

	service.ErrDuplicateEmail:          http.StatusConflict,
	service.ErrTwoFactorAlreadyEnabled: http.StatusConflict,
	service.ErrTwoFactorNotStarted:     http.StatusConflict,
	service.ErrAlreadyVerified:         http.StatusConflict,

	service.ErrUserNotFound: http.StatusNotFound,

	service.ErrMailDispatch:       http.StatusBadGateway,
	service.ErrSessionCreation:    http.StatusInternalServerError,
	service.ErrPersistenceFailure: http.StatusInternalServerError,

	store.ErrSessionDiscarded: http.StatusServiceUnavailable,

	ErrMalformedBody:           http.StatusBadRequest,
	ErrUnsafeInput:             http.StatusBadRequest,
	ErrInvalidVerificationLink: http.StatusBadRequest,
	ErrAuthenticationRequired:  http.StatusUnauthorized,
	ErrStepNotAllowed:          http.StatusForbidden,
	ErrAdminRequired:           http.StatusForbidden,
}

func statusFromError(err error) int {
	if store.IsRetryable(err) {
		return http.StatusServiceUnavailable
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status mapped from err. Server-side failures
// are reported with the generic status text so that driver messages never
// reach the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = app.Message(status)
	}

	var weak *service.WeakPasswordError
	if errors.As(err, &weak) {
		message = weak.Reason
	}

	utils.WriteError(w, message, status)
}
