package http

import (
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/app"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/internal/utils"
)

// withUnitOfWork binds a request-scoped unit of work to the request context
// and finalizes it once the handler returns.
//
// The unit is committed unless the handler panicked, answered with a 5xx
// status or the request context was cancelled; in those cases it is rolled
// back. The response is buffered until then: when the commit fails the
// buffered answer (and any session cookie it sets) is dropped and the
// client gets 503 for retryable database errors and 500 otherwise.
func (h *Handler) withUnitOfWork(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := h.manager.Bind(r.Context(), store.ScopeRequest)
		log := logger.FromContext(ctx)
		buf := newBufferedResponse(w)

		defer func() {
			if p := recover(); p != nil {
				if err := h.manager.Discard(ctx); err != nil {
					log.Err(err).Msg("error discarding unit of work after panic")
				}
				panic(p)
			}
		}()

		next.ServeHTTP(buf, r.WithContext(ctx))

		if buf.statusCode() >= http.StatusInternalServerError || ctx.Err() != nil {
			if err := h.manager.Discard(ctx); err != nil {
				log.Err(err).Msg("error discarding unit of work")
			}
			if err := buf.flushTo(w); err != nil {
				log.Err(err).Msg("error writing response")
			}
			return
		}

		if err := h.manager.Close(ctx); err != nil {
			log.Err(err).Msg("request unit of work was not committed")

			status := http.StatusInternalServerError
			if store.IsRetryable(err) {
				status = http.StatusServiceUnavailable
			}
			utils.WriteError(w, app.Message(status), status)
			return
		}

		if err := buf.flushTo(w); err != nil {
			log.Err(err).Msg("error writing response")
		}
	})
}
