package service

import (
	"context"

	"github.com/MKhiriev/go-support-portal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// MailSender delivers one email. Any nil return counts as sent; failures are
// not retried by the caller.
type MailSender interface {
	Send(ctx context.Context, msg models.MailMessage) error
}

// QRRenderer turns a provisioning URI into a PNG image.
type QRRenderer interface {
	Render(uri string) ([]byte, error)
}

// AuthService is the identity core used by the transport layer.
type AuthService interface {
	CreateUser(ctx context.Context, email, password string, role models.Role) (int64, error)
	GetUserBy(ctx context.Context, field models.UserField, value string) (models.User, error)
	UpdateUser(ctx context.Context, update models.UserUpdate) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
	AdminExists(ctx context.Context) (bool, error)
	ListFailedLogins(ctx context.Context) ([]models.FailedLogin, error)

	Register(ctx context.Context, req models.RegisterRequest) (int64, error)
	Login(ctx context.Context, req models.LoginRequest) (models.Identity, error)
	LoadIdentity(ctx context.Context, session models.Session) (models.Identity, error)
	UpdateAccount(ctx context.Context, identity *models.Identity, req models.AccountUpdateRequest) error

	StartTwoFactorEnrollment(ctx context.Context, identity *models.Identity) (models.Enrollment, error)
	PassTwoFactor(ctx context.Context, identity *models.Identity, code, ip string) error
}

// SessionService issues and parses the signed session cookie value.
type SessionService interface {
	CreateSession(ctx context.Context, identity models.Identity) (string, error)
	ParseSession(ctx context.Context, token string) (models.Session, error)
}

// VerificationService runs the email verification workflow.
type VerificationService interface {
	Ensure(ctx context.Context, identity *models.Identity, resend bool) (bool, error)
	Confirm(ctx context.Context, userID int64, token string, current *models.Identity) error
}

// HealthService reports build metadata and dependency liveness.
type HealthService interface {
	Check(ctx context.Context) models.HealthReport
}
