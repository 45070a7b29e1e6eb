package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates missing pepper, session key or
	// session duration, or a relative base URL.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidAdminConfigs indicates that only one of the administrator
	// email and password is set.
	ErrInvalidAdminConfigs = errors.New("invalid admin configuration")
	// ErrInvalidMailConfigs indicates an API key without a sending domain.
	ErrInvalidMailConfigs = errors.New("invalid mail configuration")
	// ErrInvalidStorageConfigs indicates an empty database DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates a missing listen address or
	// request timeout.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
)
