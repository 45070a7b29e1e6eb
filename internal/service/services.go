package service

import (
	"context"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/metrics"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/internal/validators"
	"github.com/MKhiriev/go-support-portal/models"
)

type Services struct {
	AuthService         AuthService
	SessionService      SessionService
	VerificationService VerificationService
	HealthService       HealthService
}

// Dependencies are the collaborators shared by all services.
type Dependencies struct {
	Manager *store.Manager
	// FailedLogins overrides the SQL failure counters, e.g. with Redis.
	FailedLogins store.FailedLoginRepository
	Mail         MailSender
	QR           QRRenderer
	Policy       *PasswordPolicy
	Audit        *logger.Logger
	Metrics      *metrics.Metrics
	BuildInfo    models.AppBuildInfo
	// HealthChecks are run by GET /health and the gRPC health server.
	HealthChecks map[string]HealthCheck
}

func NewServices(deps Dependencies, cfg config.App) *Services {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop()
	}
	if deps.Policy == nil {
		deps.Policy = NewPasswordPolicy()
	}

	return &Services{
		AuthService: NewAuthService(AuthOptions{
			Manager:      deps.Manager,
			FailedLogins: deps.FailedLogins,
			Guard:        NewLoginGuard(),
			TOTP:         NewTOTPEngine(deps.QR),
			Policy:       deps.Policy,
			Validator:    validators.NewUserValidator(deps.Policy),
			Pepper:       cfg.Pepper,
			TOTPIssuer:   cfg.TOTPIssuer,
			Audit:        deps.Audit,
			Metrics:      deps.Metrics,
		}),
		SessionService:      NewSessionService(cfg),
		VerificationService: NewVerificationWorkflow(deps.Manager, deps.Mail, cfg.BaseURL, deps.Metrics),
		HealthService:       NewHealthService(deps.BuildInfo, deps.HealthChecks),
	}
}

// inSession runs fn in the unit of work of ctx. Errors returned by fn pass
// through unchanged; errors raised by the manager itself (begin, commit)
// become persistence failures.
func inSession(ctx context.Context, manager *store.Manager, fn func(uow *store.UnitOfWork) error) error {
	var fnErr error
	err := manager.WithSession(ctx, func(uow *store.UnitOfWork) error {
		fnErr = fn(uow)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return persistenceFailure(err)
	}
	return err
}
