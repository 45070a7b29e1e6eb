// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"net/http"
)

// responseWriter is a thin decorator around [http.ResponseWriter] that
// records the status code and the number of body bytes for the access log.
//
// WriteHeader is forwarded to the underlying writer exactly once; later
// calls are ignored, as documented by [http.ResponseWriter].
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
	size        int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write implicitly sends 200 OK when no status was written yet.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// bufferedResponse holds a complete response in memory until the unit of
// work of the request has been finalized, so that a failed commit can
// still replace the answer.
//
// Its header map starts as a copy of the outer writer's headers; flushTo
// writes the final set back.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse(w http.ResponseWriter) *bufferedResponse {
	return &bufferedResponse{header: w.Header().Clone()}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

// WriteHeader keeps the first status code.
func (b *bufferedResponse) WriteHeader(statusCode int) {
	if b.status != 0 {
		return
	}
	b.status = statusCode
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// statusCode reports the buffered status; a handler that wrote nothing
// answered 200 OK.
func (b *bufferedResponse) statusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

// flushTo copies the buffered headers, status and body to w.
func (b *bufferedResponse) flushTo(w http.ResponseWriter) error {
	dst := w.Header()
	for key := range dst {
		if _, ok := b.header[key]; !ok {
			dst.Del(key)
		}
	}
	for key, values := range b.header {
		dst[key] = values
	}

	w.WriteHeader(b.statusCode())
	_, err := w.Write(b.body.Bytes())
	return err
}
