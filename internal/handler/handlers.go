package handler

import (
	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/handler/grpc"
	"github.com/MKhiriev/go-support-portal/internal/handler/http"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/internal/store"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// NewHandlers creates the transport handlers for every configured address.
func NewHandlers(services *service.Services, manager *store.Manager, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, manager, cfg.App, logger)
	}
	if cfg.Server.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
