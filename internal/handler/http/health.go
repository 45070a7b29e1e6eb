package http

import (
	"net/http"

	"github.com/MKhiriev/go-support-portal/internal/utils"
)

// health reports build metadata and dependency liveness. It answers 503
// while any dependency is down.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	report := h.services.HealthService.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}

	_, _ = utils.WriteJSON(w, report, status)
}
