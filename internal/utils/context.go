// Package utils provides general-purpose helper utilities
// used across different parts of the portal.
// Includes tools for working with context, type-safe keys, HTTP response
// writing, HTTP client initialization, and session token generation and
// validation.
package utils

import (
	"context"

	"github.com/MKhiriev/go-support-portal/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// IdentityCtxKey is the key used to store the *models.Identity of the
// current session in the context.
var IdentityCtxKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, identity)
}

// GetIdentityFromContext retrieves the identity of the current session.
//
// Returns ok == false when the request is anonymous.
func GetIdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(IdentityCtxKey).(*models.Identity)
	return identity, ok && identity != nil
}
