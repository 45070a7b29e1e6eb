package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/service"
	"github.com/MKhiriev/go-support-portal/models"
)

// ServiceName is the name under which the portal reports its status. The
// empty name reports the same status for the whole server.
const ServiceName = "support_portal.Portal"

// Handler is the root gRPC transport handler.
//
// The portal exposes only the standard gRPC health protocol on it. The
// serving status mirrors [service.HealthService]: it is SERVING while every
// dependency answers and NOT_SERVING otherwise.
type Handler struct {
	// services provides access to all application business operations.
	services *service.Services

	health *health.Server

	// logger is used for request-scoped and diagnostic log output.
	logger *logger.Logger
}

// NewHandler constructs a [Handler]. Until the first [Handler.Refresh] the
// portal reports NOT_SERVING.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := &Handler{
		services: services,
		health:   health.NewServer(),
		logger:   logger,
	}
	h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return h
}

// Register attaches the health service to srv.
func (h *Handler) Register(srv *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(srv, h.health)
}

// Refresh checks the dependencies once and publishes the result.
func (h *Handler) Refresh(ctx context.Context) models.HealthReport {
	report := h.services.HealthService.Check(ctx)

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !report.Healthy() {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		h.logger.Warn().Any("checks", report.Checks).Msg("portal is degraded")
	}
	h.setStatus(status)

	return report
}

// Watch refreshes the status every interval until ctx is done.
func (h *Handler) Watch(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING for good; later refreshes are ignored.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}

func (h *Handler) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}
