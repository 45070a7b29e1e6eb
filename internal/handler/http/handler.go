package http

import (
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/internal/store"
)

type Handler struct {
	services *service.Services
	manager  *store.Manager

	// sanitizer strips every HTML element from user supplied text.
	sanitizer *bluemonday.Policy

	secureCookies   bool
	sessionDuration time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, manager *store.Manager, cfg config.App, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:        services,
		manager:         manager,
		sanitizer:       bluemonday.StrictPolicy(),
		secureCookies:   !cfg.IsDevelopment(),
		sessionDuration: cfg.SessionDuration,
		logger:          logger,
	}
}
