package http

import (
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.AuthService.ListUsers(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("error listing users")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, users, http.StatusOK)
}

// createUser lets an administrator add an account with any role. The
// password is not held to the sign-up strength rules.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, err)
		return
	}

	email, err := h.sanitizeEmail(req.Email)
	if err != nil {
		log.Err(err).Msg("rejected user email")
		writeError(w, err)
		return
	}

	id, err := h.services.AuthService.CreateUser(ctx, email, req.Password, req.Role)
	if err != nil {
		log.Err(err).Msg("error creating user")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.RegisterResponse{ID: id}, http.StatusCreated)
}

func (h *Handler) listFailedLogins(w http.ResponseWriter, r *http.Request) {
	records, err := h.services.AuthService.ListFailedLogins(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Msg("error listing failed logins")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, records, http.StatusOK)
}
