// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	// errNoServersAreCreated is returned by NewServer when the handler set
	// carries neither transport.
	errNoServersAreCreated = errors.New("no servers are created: handlers carry no transport")
)
