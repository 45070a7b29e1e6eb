package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidEmail            = errors.New("email address is invalid or contained invalid characters")
	ErrEmptyPassword           = errors.New("password cannot be empty")
	ErrPasswordMismatch        = errors.New("passwords must match")
	ErrInvalidRole             = errors.New("invalid role")
	ErrMissingAddress          = errors.New("client address is required")
	ErrCurrentPasswordRequired = errors.New("current password is required")
)
