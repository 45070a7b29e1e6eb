package http

import (
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

// verifyEmail serves both halves of the verification workflow.
//
// With "id" and "token" query parameters it confirms the link from the
// email; a session is optional. Without them it makes sure the current
// identity has been sent a verification email, sending it again when
// "resend" is true.
func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	identity, hasIdentity := utils.GetIdentityFromContext(ctx)

	req, err := parseVerificationRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Token != "" {
		if err = h.services.VerificationService.Confirm(ctx, req.UserID, req.Token, identity); err != nil {
			log.Err(err).Int64("user_id", req.UserID).Msg("email verification failed")
			writeError(w, err)
			return
		}

		_, _ = utils.WriteJSON(w, models.VerificationResponse{Verified: true}, http.StatusOK)
		return
	}

	if !hasIdentity {
		writeError(w, ErrAuthenticationRequired)
		return
	}

	sent, err := h.services.VerificationService.Ensure(ctx, identity, req.Resend)
	if err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("error sending verification email")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.VerificationResponse{
		Verified: identity.EmailVerified,
		Sent:     sent,
	}, http.StatusOK)
}

func parseVerificationRequest(r *http.Request) (models.EmailVerificationRequest, error) {
	query := r.URL.Query()
	req := models.EmailVerificationRequest{Token: query.Get("token")}

	if req.Token != "" {
		id, err := strconv.ParseInt(query.Get("id"), 10, 64)
		if err != nil {
			return req, ErrInvalidVerificationLink
		}
		req.UserID = id
	}

	if resend := query.Get("resend"); resend != "" {
		req.Resend, _ = strconv.ParseBool(resend)
	}

	return req, nil
}
