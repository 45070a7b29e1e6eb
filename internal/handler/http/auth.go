package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, err)
		return
	}

	email, err := h.sanitizeEmail(req.Email)
	if err != nil {
		log.Err(err).Msg("rejected registration email")
		writeError(w, err)
		return
	}
	req.Email = email

	id, err := h.services.AuthService.Register(ctx, req)
	if err != nil {
		log.Err(err).Msg("registration failed")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.RegisterResponse{ID: id}, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, err)
		return
	}

	email, err := h.sanitizeEmail(req.Email)
	if err != nil {
		log.Err(err).Msg("rejected login email")
		writeError(w, err)
		return
	}
	req.Email = email
	req.IP = clientIP(r)

	identity, err := h.services.AuthService.Login(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err = h.issueSession(w, r, identity); err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("creation of session failed")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.StepResponse{Next: identity.NextStep()}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, _ := utils.GetIdentityFromContext(r.Context())

	_, _ = utils.WriteJSON(w, models.MeResponse{
		ID:             identity.GetID(),
		Email:          identity.Email,
		Role:           identity.Role,
		IsAdmin:        identity.IsAdmin(),
		EmailVerified:  identity.EmailVerified,
		TwoFactorState: identity.TwoFactorState(),
		Next:           identity.NextStep(),
	}, http.StatusOK)
}

// updateAccount changes the email and/or password of the signed-in user.
// The session cookie stays valid: it only carries the user id.
func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	identity, _ := utils.GetIdentityFromContext(ctx)

	var req models.AccountUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, err)
		return
	}

	if req.Email != "" {
		email, err := h.sanitizeEmail(req.Email)
		if err != nil {
			log.Err(err).Msg("rejected account email")
			writeError(w, err)
			return
		}
		req.Email = email
	}

	if err := h.services.AuthService.UpdateAccount(ctx, identity, req); err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("account update failed")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// issueSession signs a session for identity and sets it as the cookie of
// the response.
func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, identity models.Identity) error {
	token, err := h.services.SessionService.CreateSession(r.Context(), identity)
	if err != nil {
		return err
	}

	h.setSessionCookie(w, token)
	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return nil
}

// sanitizeEmail rejects addresses that the HTML policy would alter.
func (h *Handler) sanitizeEmail(email string) (string, error) {
	if h.sanitizer.Sanitize(email) != email {
		return "", ErrUnsafeInput
	}
	return email, nil
}

// clientIP returns the address of the peer. RemoteAddr already holds the
// forwarded address when middleware.RealIP ran.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
