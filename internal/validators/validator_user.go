package validators

import (
	"context"
	"regexp"
	"strings"

	"github.com/MKhiriev/go-support-portal/models"
)

// Field name constants used to restrict Validate to a subset of rules.
const (
	// FieldEmail targets the address format. Empty addresses fail except on
	// account updates, where empty means unchanged.
	FieldEmail = "email"

	// FieldPassword targets the presence of the password.
	FieldPassword = "password"

	// FieldConfirmPassword targets the equality of password and confirmation.
	FieldConfirmPassword = "confirm_password"

	// FieldPasswordStrength runs the configured PasswordChecker.
	FieldPasswordStrength = "password_strength"

	FieldRole = "role"

	// FieldIP targets the client address a login is counted against.
	FieldIP = "ip"

	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// NormalizeEmail trims and lower-cases email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail reports whether email looks like a deliverable address.
func IsEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type UserValidator struct {
	passwords PasswordChecker
}

// NewUserValidator returns the validator of the identity requests. A nil
// passwords skips the strength rule.
func NewUserValidator(passwords PasswordChecker) Validator {
	return &UserValidator{passwords: passwords}
}

func (v *UserValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RegisterRequest:
		return v.validateRegisterRequest(ctx, value, fields...)
	case *models.RegisterRequest:
		return v.validateRegisterRequest(ctx, *value, fields...)

	case models.LoginRequest:
		return v.validateLoginRequest(ctx, value, fields...)
	case *models.LoginRequest:
		return v.validateLoginRequest(ctx, *value, fields...)

	case models.CreateUserRequest:
		return v.validateCreateUserRequest(ctx, value, fields...)
	case *models.CreateUserRequest:
		return v.validateCreateUserRequest(ctx, *value, fields...)

	case models.AccountUpdateRequest:
		return v.validateAccountUpdateRequest(ctx, value, fields...)
	case *models.AccountUpdateRequest:
		return v.validateAccountUpdateRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateRegisterRequest keeps the order sign-up errors are reported in:
// email, empty password, confirmation, strength.
func (v *UserValidator) validateRegisterRequest(ctx context.Context, req models.RegisterRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword, FieldConfirmPassword, FieldPasswordStrength}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if !IsEmail(NormalizeEmail(req.Email)) {
				return ErrInvalidEmail
			}
		case FieldPassword:
			if req.Password == "" {
				return ErrEmptyPassword
			}
		case FieldConfirmPassword:
			if req.Password != req.ConfirmPassword {
				return ErrPasswordMismatch
			}
		case FieldPasswordStrength:
			if err := v.checkStrength(req.Password); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateLoginRequest does not look at the email: unknown and malformed
// addresses must fail the same way as wrong passwords.
func (v *UserValidator) validateLoginRequest(ctx context.Context, req models.LoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldIP, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldIP:
			if strings.TrimSpace(req.IP) == "" {
				return ErrMissingAddress
			}
		case FieldPassword:
			if req.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *UserValidator) validateCreateUserRequest(ctx context.Context, req models.CreateUserRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword, FieldRole}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if !IsEmail(NormalizeEmail(req.Email)) {
				return ErrInvalidEmail
			}
		case FieldPassword:
			if req.Password == "" {
				return ErrEmptyPassword
			}
		case FieldPasswordStrength:
			if err := v.checkStrength(req.Password); err != nil {
				return err
			}
		case FieldRole:
			if !req.Role.Valid() {
				return ErrInvalidRole
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *UserValidator) validateAccountUpdateRequest(ctx context.Context, req models.AccountUpdateRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCurrentPassword, FieldEmail, FieldNewPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldCurrentPassword:
			if req.CurrentPassword == "" {
				return ErrCurrentPasswordRequired
			}
		case FieldEmail:
			if req.Email != "" && !IsEmail(NormalizeEmail(req.Email)) {
				return ErrInvalidEmail
			}
		case FieldNewPassword:
			if req.NewPassword == "" {
				continue
			}
			if req.NewPassword != req.ConfirmPassword {
				return ErrPasswordMismatch
			}
			if err := v.checkStrength(req.NewPassword); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *UserValidator) checkStrength(password string) error {
	if v.passwords == nil {
		return nil
	}
	return v.passwords.Check(password)
}
