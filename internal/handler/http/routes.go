package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-support-portal/models"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes outside the unit of work
	router.Get("/health", h.health)
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(h.withUnitOfWork)
		r.Use(h.withSession)

		r.Post("/login", h.login)
		r.Post("/register", h.register)
		r.Post("/logout", h.logout)
		r.Get("/verify_email", h.verifyEmail)

		// routes with a session
		r.Group(func(r chi.Router) {
			r.Use(h.requireIdentity)

			r.Get("/me", h.me)

			r.With(h.requireStep(models.StepSetupTwoFactor)).Post("/login/setup-2fa", h.startTwoFactorEnrollment)
			r.With(h.requireStep(models.StepSetupTwoFactor)).Post("/login/setup-2fa-confirm", h.confirmTwoFactorEnrollment)
			r.With(h.requireStep(models.StepTwoFactor)).Post("/login/2fa", h.passTwoFactor)

			r.With(h.requireStep(models.StepNone)).Post("/account", h.updateAccount)

			r.Group(func(r chi.Router) {
				r.Use(h.requireStep(models.StepNone), h.requireAdmin)

				r.Get("/admin/users", h.listUsers)
				r.Post("/admin/users", h.createUser)
				r.Get("/admin/failed_logins", h.listFailedLogins)
			})
		})
	})

	router.NotFound(notFound)
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
