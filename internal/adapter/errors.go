package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("mail provider rejected the request")
	ErrUnauthorized        = errors.New("mail provider rejected the API key")
	ErrForbidden           = errors.New("mail provider forbids sending from this domain")
	ErrNotFound            = errors.New("mail domain not found")
	ErrTooManyRequests     = errors.New("mail provider rate limit exceeded")
	ErrProviderUnavailable = errors.New("mail provider unavailable")

	ErrInvalidURI = errors.New("invalid provisioning URI")
)
