// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// support portal handlers and middleware.
//
// All Msg* constants are human-readable message strings written into HTTP
// response bodies when the real cause must stay on the server: storage
// driver errors, mail provider failures and the like.
package app

import "net/http"

const (
	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgServiceUnavailable is returned when the request unit of work could
	// not be committed because of a transient database condition. Repeating
	// the request is safe.
	MsgServiceUnavailable = "service temporarily unavailable, please retry"

	// MsgMailDeliveryFailed is returned when the verification email could
	// not be handed to the mail provider.
	MsgMailDeliveryFailed = "verification email could not be sent"

	// MsgNotFound is returned for unknown paths and for known paths
	// requested with an unsupported method.
	MsgNotFound = "not found"
)

// Message returns the client-facing message for a server-side status.
// Unknown statuses fall back to the standard status text.
func Message(status int) string {
	switch status {
	case http.StatusInternalServerError:
		return MsgInternalServerError
	case http.StatusServiceUnavailable:
		return MsgServiceUnavailable
	case http.StatusBadGateway:
		return MsgMailDeliveryFailed
	case http.StatusNotFound:
		return MsgNotFound
	}
	return http.StatusText(status)
}
