package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

const sessionCookieName = "session"

// withSession loads the identity of the session cookie, if any, and stores
// it in the request context.
//
// A cookie that cannot be parsed, or that names a deleted user, is cleared
// and the request continues anonymously. Storage failures abort the request.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		ctx := r.Context()

		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := h.services.SessionService.ParseSession(ctx, cookie.Value)
		if err != nil {
			log.Debug().Err(err).Msg("dropping session cookie")
			h.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		identity, err := h.services.AuthService.LoadIdentity(ctx, session)
		if errors.Is(err, service.ErrInvalidSession) {
			log.Debug().Int64("user_id", session.UserID).Msg("session user no longer exists")
			h.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			log.Err(err).Int64("user_id", session.UserID).Msg("error loading identity")
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithIdentity(ctx, &identity)))
	})
}

// requireIdentity rejects anonymous requests with 401.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetIdentityFromContext(r.Context()); !ok {
			writeError(w, ErrAuthenticationRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireStep only lets identities through whose next login step is step.
// The response names the step the identity actually has to complete.
func (h *Handler) requireStep(step models.Step) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := utils.GetIdentityFromContext(r.Context())
			if !ok {
				writeError(w, ErrAuthenticationRequired)
				return
			}

			if current := identity.NextStep(); current != step {
				logger.FromRequest(r).Debug().
					Str("required", string(step)).
					Str("current", string(current)).
					Msg("login step mismatch")
				_, _ = utils.WriteJSON(w, stepErrorResponse{
					ErrorResponse: utils.ErrorResponse{
						Error:   ErrStepNotAllowed.Error(),
						TraceID: w.Header().Get(traceIDHeader),
					},
					Next: current,
				}, statusFromError(ErrStepNotAllowed))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type stepErrorResponse struct {
	utils.ErrorResponse
	Next models.Step `json:"next"`
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := utils.GetIdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin() {
			writeError(w, ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
