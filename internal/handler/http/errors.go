// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors produced by the transport layer itself. Service errors are
// passed through and mapped by statusFromError.
var (
	// ErrMalformedBody is returned when the request body is not valid JSON
	// for the expected request type.
	ErrMalformedBody = errors.New("malformed request body")

	// ErrUnsafeInput is returned when sanitizing a field changed its value,
	// i.e. the field contained markup.
	ErrUnsafeInput = errors.New("input contains forbidden characters")

	// ErrAuthenticationRequired is returned for routes that need a session
	// when the request carries none.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrStepNotAllowed is returned when the identity is at a different
	// stage of the login flow than the route serves.
	ErrStepNotAllowed = errors.New("this step is not available for the current session")

	// ErrAdminRequired is returned for administrative routes called by a
	// non-administrator.
	ErrAdminRequired = errors.New("administrator rights required")

	// ErrInvalidVerificationLink is returned when the id parameter of a
	// verification link is not a number.
	ErrInvalidVerificationLink = errors.New("invalid verification link")
)
