// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the shape of incoming identity requests before
// the services touch storage.
//
// Core concepts:
//   - Validator: generic interface to validate a request value. Callers may
//     restrict validation to specific named fields.
//   - PasswordChecker: the strength policy a Validator delegates to for new
//     passwords.
//
// Only rules that need no storage live here. Duplicate emails and password
// verification stay with the services.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}

// PasswordChecker rejects passwords that do not meet the strength rules.
type PasswordChecker interface {
	Check(password string) error
}
