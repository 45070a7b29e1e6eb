package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-support-portal/internal/validators"
)

// Errors callers of the identity services are expected to handle. Match them
// with [errors.Is].
var (
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned while the client address is locked out.
	ErrAccountLocked = errors.New("too many failed login attempts, try again later")
	// ErrInvalidOrExpiredToken covers wrong TOTP codes and wrong or used
	// verification tokens.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrDuplicateEmail        = errors.New("email address has already been registered")
	ErrWeakPassword          = errors.New("weak password")
	// ErrPersistenceFailure wraps every storage error that is not part of
	// the domain (commit failures, connection problems).
	ErrPersistenceFailure = errors.New("persistence failure")

	// Request shape errors come from the validators package.
	ErrInvalidEmail            = validators.ErrInvalidEmail
	ErrEmptyPassword           = validators.ErrEmptyPassword
	ErrPasswordMismatch        = validators.ErrPasswordMismatch
	ErrInvalidRole             = validators.ErrInvalidRole
	ErrMissingAddress          = validators.ErrMissingAddress
	ErrCurrentPasswordRequired = validators.ErrCurrentPasswordRequired

	ErrUserNotFound = errors.New("user not found")
	ErrUnknownField = errors.New("unknown lookup field")
	// ErrWrongPassword rejects account changes whose current password does
	// not match.
	ErrWrongPassword = errors.New("current password is incorrect")

	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication is already enabled")
	ErrTwoFactorNotStarted     = errors.New("two-factor enrollment has not been started")

	ErrMailDispatch    = errors.New("verification email could not be sent")
	ErrAlreadyVerified = errors.New("email address is already verified")
	ErrSessionCreation = errors.New("session could not be created")
	ErrInvalidSession  = errors.New("session is invalid or expired")
)

// WeakPasswordError names the first password rule that was not met.
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWeakPassword, e.Reason)
}

// Unwrap makes [errors.Is] match [ErrWeakPassword].
func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}

func persistenceFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}
