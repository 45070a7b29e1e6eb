// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-support-portal/internal/app"
	"github.com/MKhiriev/go-support-portal/internal/utils"
)

// CheckHTTPMethod returns the handler registered as the router's
// MethodNotAllowed handler.
//
// Chi answers 405 when a path is known but the method is not. The portal
// answers 404 instead so that unsupported methods do not reveal which paths
// exist. Requests whose method does match a route (chi can report a
// mismatch for patterns it resolved through a different subrouter) are
// served normally.
//
// Usage:
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}

		notFound(w, r)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	utils.WriteError(w, app.Message(http.StatusNotFound), http.StatusNotFound)
}
