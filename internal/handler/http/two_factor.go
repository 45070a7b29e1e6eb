package http

import (
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/adapter"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

// startTwoFactorEnrollment returns the TOTP seed of the identity together
// with its provisioning URI and QR code. Calling it again before the first
// code is confirmed returns the same seed.
func (h *Handler) startTwoFactorEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	identity, _ := utils.GetIdentityFromContext(ctx)

	enrollment, err := h.services.AuthService.StartTwoFactorEnrollment(ctx, identity)
	if err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("error starting 2FA enrollment")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.EnrollmentResponse{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
		QRCode:          adapter.DataURI(enrollment.QRCode),
	}, http.StatusOK)
}

// confirmTwoFactorEnrollment enables 2FA with the first valid code.
func (h *Handler) confirmTwoFactorEnrollment(w http.ResponseWriter, r *http.Request) {
	h.checkTwoFactorCode(w, r)
}

func (h *Handler) passTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.checkTwoFactorCode(w, r)
}

// checkTwoFactorCode verifies the submitted code and replaces the session
// cookie with one that records the passed challenge.
func (h *Handler) checkTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	identity, _ := utils.GetIdentityFromContext(ctx)

	var req models.TwoFactorRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, err)
		return
	}

	if err := h.services.AuthService.PassTwoFactor(ctx, identity, req.Code, clientIP(r)); err != nil {
		writeError(w, err)
		return
	}

	if err := h.issueSession(w, r, *identity); err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("creation of session failed")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.StepResponse{Next: identity.NextStep()}, http.StatusOK)
}
