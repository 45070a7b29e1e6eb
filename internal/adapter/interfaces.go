// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter holds the outbound collaborators of the identity core:
// mail delivery and QR-code rendering.
//
// [MailgunSender] posts messages to the Mailgun HTTP API. Non-2xx answers are
// mapped by mapHTTPError to the sentinel errors in errors.go so callers can
// use [errors.Is] (e.g. [ErrUnauthorized] for a rejected API key).
// [LogMailSender] only logs messages and is used when no API key is
// configured. [QRRenderer] draws provisioning URIs as PNG images.
package adapter
