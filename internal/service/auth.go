package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/metrics"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/internal/validators"
	"github.com/MKhiriev/go-support-portal/models"
)

// Login failure reasons written to the audit log.
const (
	reasonLocked        = "ip_locked"
	reasonUnknownEmail  = "unknown_email"
	reasonWrongPassword = "wrong_password"
	reasonInvalidCode   = "invalid_totp_code"
)

// authService is the concrete implementation of AuthService.
type authService struct {
	// manager issues the unit of work every read and write goes through.
	manager *store.Manager

	// failedLogins, when set, keeps failure counters outside the database
	// (Redis). Otherwise the unit of work's SQL repository is used.
	failedLogins store.FailedLoginRepository

	guard     *LoginGuard
	totp      *TOTPEngine
	policy    *PasswordPolicy
	validator validators.Validator

	// pepper is mixed into every password hash. Never persisted.
	pepper string

	// totpIssuer names the portal in authenticator apps.
	totpIssuer string

	// audit receives one record per login attempt.
	audit   *logger.Logger
	metrics *metrics.Metrics

	now func() time.Time
}

// AuthOptions carries the collaborators of NewAuthService.
type AuthOptions struct {
	Manager      *store.Manager
	FailedLogins store.FailedLoginRepository
	Guard        *LoginGuard
	TOTP         *TOTPEngine
	Policy       *PasswordPolicy
	Validator    validators.Validator
	Pepper       string
	TOTPIssuer   string
	Audit        *logger.Logger
	Metrics      *metrics.Metrics
}

// NewAuthService constructs an AuthService. Missing optional collaborators
// (guard, policy, validator, audit logger, metrics) are replaced by
// defaults.
func NewAuthService(opts AuthOptions) AuthService {
	a := &authService{
		manager:      opts.Manager,
		failedLogins: opts.FailedLogins,
		guard:        opts.Guard,
		totp:         opts.TOTP,
		policy:       opts.Policy,
		validator:    opts.Validator,
		pepper:       opts.Pepper,
		totpIssuer:   opts.TOTPIssuer,
		audit:        opts.Audit,
		metrics:      opts.Metrics,
		now:          time.Now,
	}
	if a.guard == nil {
		a.guard = NewLoginGuard()
	}
	if a.policy == nil {
		a.policy = NewPasswordPolicy()
	}
	if a.validator == nil {
		a.validator = validators.NewUserValidator(a.policy)
	}
	if a.audit == nil {
		a.audit = logger.Nop()
	}
	if a.metrics == nil {
		a.metrics = metrics.Nop()
	}
	return a
}

// CreateUser stores a new user with a fresh salt. The password is not
// checked against the policy; Register does that for self sign-ups.
func (a *authService) CreateUser(ctx context.Context, email, password string, role models.Role) (int64, error) {
	log := logger.FromContext(ctx)

	err := a.validator.Validate(ctx, models.CreateUserRequest{Email: email, Password: password, Role: role})
	if err != nil {
		return 0, err
	}
	email = NormalizeEmail(email)

	salt, err := NewSalt()
	if err != nil {
		return 0, err
	}
	user := models.NewUser(email, HashPassword(password, salt, a.pepper), salt, role, a.now().UTC())

	var id int64
	err = inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		_, err := uow.Users().FindUserByEmail(ctx, email)
		switch {
		case err == nil:
			return ErrDuplicateEmail
		case !errors.Is(err, store.ErrNoUserWasFound):
			return persistenceFailure(err)
		}

		id, err = uow.Users().CreateUser(ctx, user)
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return ErrDuplicateEmail
		}
		if err != nil {
			return persistenceFailure(err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("email", email).Msg("user creation ended with error")
		return 0, err
	}

	log.Info().Int64("user_id", id).Str("role", string(role)).Msg("user created")
	return id, nil
}

// GetUserBy looks a user up by id or by (normalized) email.
func (a *authService) GetUserBy(ctx context.Context, field models.UserField, value string) (models.User, error) {
	var user models.User
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		var err error
		switch field {
		case models.ByID:
			id, parseErr := strconv.ParseInt(value, 10, 64)
			if parseErr != nil {
				return ErrUserNotFound
			}
			user, err = uow.Users().FindUserByID(ctx, id)
		case models.ByEmail:
			user, err = uow.Users().FindUserByEmail(ctx, NormalizeEmail(value))
		default:
			return ErrUnknownField
		}
		return userLookupError(err)
	})

	return user, err
}

// UpdateUser applies update. A new email is normalized and validated.
func (a *authService) UpdateUser(ctx context.Context, update models.UserUpdate) error {
	if update.Email != nil {
		email := NormalizeEmail(*update.Email)
		if !ValidateEmail(email) {
			return ErrInvalidEmail
		}
		update.Email = &email
	}
	if update.Role != nil && !update.Role.Valid() {
		return ErrInvalidRole
	}

	return inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		err := uow.Users().UpdateUser(ctx, update)
		switch {
		case errors.Is(err, store.ErrEmailAlreadyExists):
			return ErrDuplicateEmail
		case errors.Is(err, store.ErrNothingToUpdate):
			return nil
		}
		return userLookupError(err)
	})
}

func (a *authService) DeleteUser(ctx context.Context, id int64) error {
	return inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		return userLookupError(uow.Users().DeleteUser(ctx, id))
	})
}

func (a *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		var err error
		if users, err = uow.Users().ListUsers(ctx); err != nil {
			return persistenceFailure(err)
		}
		return nil
	})

	return users, err
}

// AdminExists reports whether any administrator or superadministrator is
// stored.
func (a *authService) AdminExists(ctx context.Context) (bool, error) {
	var count int
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		var err error
		count, err = uow.Users().CountUsersWithRoles(ctx, models.RoleAdministrator, models.RoleSuperAdministrator)
		if err != nil {
			return persistenceFailure(err)
		}
		return nil
	})

	return count > 0, err
}

// ListFailedLogins returns every failure counter, most recent first.
func (a *authService) ListFailedLogins(ctx context.Context) ([]models.FailedLogin, error) {
	var records []models.FailedLogin
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		var err error
		if records, err = a.failedLoginsFor(uow).List(ctx); err != nil {
			return persistenceFailure(err)
		}
		return nil
	})

	return records, err
}

// Register signs a new standard user up. Checks run in this order: email
// format, empty password, confirmation, strength, duplicate email.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (int64, error) {
	log := logger.FromContext(ctx)

	err := a.validator.Validate(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("registration rejected")
		a.metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return 0, err
	}

	id, err := a.CreateUser(ctx, req.Email, req.Password, models.RoleStandard)
	if err != nil {
		a.metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return 0, err
	}

	a.metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return id, nil
}

// Login authenticates req against the stored credentials.
//
// Requests without a password or a client address are rejected before
// anything is counted. A locked address is rejected with ErrAccountLocked before the credentials
// are looked at. Unknown emails and wrong passwords both count as a failure
// from req.IP and both return ErrInvalidCredentials; the audit log keeps the
// distinguishing reason. Success stamps last_login and clears the address.
func (a *authService) Login(ctx context.Context, req models.LoginRequest) (models.Identity, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, req); err != nil {
		return models.Identity{}, err
	}
	email := NormalizeEmail(req.Email)

	var (
		identity models.Identity
		outcome  error
	)
	// failures must be persisted, so fn only returns storage errors and the
	// login outcome travels in outcome
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		repo := a.failedLoginsFor(uow)

		locked, err := a.guard.IsLocked(ctx, repo, req.IP)
		if err != nil {
			return err
		}
		if locked {
			a.auditFailure(req.IP, email, reasonLocked)
			a.metrics.LoginsTotal.WithLabelValues(metrics.OutcomeLocked).Inc()
			outcome = ErrAccountLocked
			return nil
		}

		user, err := uow.Users().FindUserByEmail(ctx, email)
		if errors.Is(err, store.ErrNoUserWasFound) {
			outcome = ErrInvalidCredentials
			return a.loginFailed(ctx, repo, req.IP, email, reasonUnknownEmail)
		}
		if err != nil {
			return persistenceFailure(err)
		}

		if !VerifyPassword(user, req.Password, a.pepper) {
			outcome = ErrInvalidCredentials
			return a.loginFailed(ctx, repo, req.IP, email, reasonWrongPassword)
		}

		now := a.now().UTC()
		if err := uow.Users().UpdateUser(ctx, models.UserUpdate{ID: user.ID, LastLogin: &now}); err != nil {
			return persistenceFailure(err)
		}
		user.LastLogin = &now

		if err := a.guard.Clear(ctx, repo, req.IP); err != nil {
			return err
		}

		identity = models.NewIdentity(user)
		return nil
	})
	if err != nil {
		log.Err(err).Str("ip", req.IP).Msg("login ended with error")
		return models.Identity{}, err
	}
	if outcome != nil {
		return models.Identity{}, outcome
	}

	a.audit.Info().
		Str("event", "login").
		Bool("success", true).
		Str("ip", req.IP).
		Str("email", email).
		Int64("user_id", identity.ID).
		Msg("login succeeded")
	a.metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return identity, nil
}

// loginFailed records the failure and audits it.
func (a *authService) loginFailed(ctx context.Context, repo store.FailedLoginRepository, ip, email, reason string) error {
	record, err := a.guard.RecordFailure(ctx, repo, ip)
	if err != nil {
		return err
	}

	a.auditFailure(ip, email, reason)
	a.metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	if record.Attempts == LockoutThreshold {
		a.metrics.LockoutsTotal.Inc()
		a.audit.Warn().Str("event", "lockout").Str("ip", ip).Int("attempts", record.Attempts).Msg("address locked")
	}

	return nil
}

func (a *authService) auditFailure(ip, email, reason string) {
	a.audit.Warn().
		Str("event", "login").
		Bool("success", false).
		Str("ip", ip).
		Str("email", email).
		Str("reason", reason).
		Msg("login failed")
}

// LoadIdentity rebuilds the identity of session from storage. The 2FA flag
// comes from the session and only counts while 2FA is enabled.
func (a *authService) LoadIdentity(ctx context.Context, session models.Session) (models.Identity, error) {
	var identity models.Identity
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		user, err := uow.Users().FindUserByID(ctx, session.UserID)
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrInvalidSession
		}
		if err != nil {
			return persistenceFailure(err)
		}

		identity = models.NewIdentity(user)
		identity.TwoFactorAuth = session.TwoFactorAuth && user.TwoFactorEnabled
		return nil
	})

	return identity, err
}

// UpdateAccount changes the email and/or the password of identity once its
// current password is confirmed. A new email must not belong to another
// user; a new password gets a fresh salt. identity is refreshed on success.
func (a *authService) UpdateAccount(ctx context.Context, identity *models.Identity, req models.AccountUpdateRequest) error {
	log := logger.FromContext(ctx)

	if identity == nil {
		return ErrInvalidSession
	}
	if err := a.validator.Validate(ctx, req); err != nil {
		return err
	}

	var updated models.User
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		user, err := uow.Users().FindUserByID(ctx, identity.ID)
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrInvalidSession
		}
		if err != nil {
			return persistenceFailure(err)
		}
		if !VerifyPassword(user, req.CurrentPassword, a.pepper) {
			return ErrWrongPassword
		}

		update := models.UserUpdate{ID: user.ID}
		if email := NormalizeEmail(req.Email); email != "" && email != user.Email {
			_, err := uow.Users().FindUserByEmail(ctx, email)
			switch {
			case err == nil:
				return ErrDuplicateEmail
			case !errors.Is(err, store.ErrNoUserWasFound):
				return persistenceFailure(err)
			}
			update.Email = &email
			user.Email = email
		}
		if req.NewPassword != "" {
			salt, err := NewSalt()
			if err != nil {
				return err
			}
			update.Salt = salt
			update.PasswordHash = HashPassword(req.NewPassword, salt, a.pepper)
			user.Salt, user.PasswordHash = update.Salt, update.PasswordHash
		}

		updated = user
		if update.IsEmpty() {
			return nil
		}

		err = uow.Users().UpdateUser(ctx, update)
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return ErrDuplicateEmail
		}
		return userLookupError(err)
	})
	if err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("account update ended with error")
		return err
	}

	identity.Email = updated.Email
	identity.Salt = updated.Salt
	identity.PasswordHash = updated.PasswordHash
	log.Info().Int64("user_id", identity.ID).Msg("account updated")

	return nil
}

// StartTwoFactorEnrollment generates and stores a TOTP seed for identity,
// or reuses the one stored by an unfinished enrollment, and returns what an
// authenticator app needs to register it.
func (a *authService) StartTwoFactorEnrollment(ctx context.Context, identity *models.Identity) (models.Enrollment, error) {
	log := logger.FromContext(ctx)

	if identity == nil {
		return models.Enrollment{}, ErrInvalidSession
	}
	if identity.TwoFactorEnabled {
		return models.Enrollment{}, ErrTwoFactorAlreadyEnabled
	}

	if !identity.HasSecret() {
		secret, err := a.totp.CreateSecret()
		if err != nil {
			return models.Enrollment{}, err
		}

		err = inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
			if err := uow.Users().UpdateUser(ctx, models.UserUpdate{ID: identity.ID, Secret: &secret}); err != nil {
				return persistenceFailure(err)
			}
			return nil
		})
		if err != nil {
			log.Err(err).Int64("user_id", identity.ID).Msg("error storing TOTP secret")
			return models.Enrollment{}, err
		}
		identity.Secret = &secret
	}

	uri, err := a.totp.ProvisioningURI(*identity.Secret, identity.Email, a.totpIssuer)
	if err != nil {
		return models.Enrollment{}, err
	}
	image, err := a.totp.RenderQR(uri)
	if err != nil {
		return models.Enrollment{}, err
	}

	return models.Enrollment{
		Secret:          *identity.Secret,
		ProvisioningURI: uri,
		QRCode:          image,
	}, nil
}

// PassTwoFactor checks code against the seed of identity. A valid code
// enables 2FA if it was still enrolling and marks the session as passed.
// Invalid codes count as failures from ip, and a locked ip cannot submit
// codes at all.
func (a *authService) PassTwoFactor(ctx context.Context, identity *models.Identity, code, ip string) error {
	log := logger.FromContext(ctx)

	if identity == nil {
		return ErrInvalidSession
	}
	if !identity.HasSecret() {
		return ErrTwoFactorNotStarted
	}

	var outcome error
	err := inSession(ctx, a.manager, func(uow *store.UnitOfWork) error {
		repo := a.failedLoginsFor(uow)

		locked, err := a.guard.IsLocked(ctx, repo, ip)
		if err != nil {
			return err
		}
		if locked {
			a.auditFailure(ip, identity.Email, reasonLocked)
			a.metrics.TwoFactorTotal.WithLabelValues(metrics.OutcomeLocked).Inc()
			outcome = ErrAccountLocked
			return nil
		}

		if !a.totp.Verify(code, *identity.Secret) {
			if _, err := a.guard.RecordFailure(ctx, repo, ip); err != nil {
				return err
			}
			a.auditFailure(ip, identity.Email, reasonInvalidCode)
			a.metrics.TwoFactorTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			outcome = ErrInvalidOrExpiredToken
			return nil
		}

		if !identity.TwoFactorEnabled {
			enabled := true
			if err := uow.Users().UpdateUser(ctx, models.UserUpdate{ID: identity.ID, TwoFactorEnabled: &enabled}); err != nil {
				return persistenceFailure(err)
			}
		}

		return a.guard.Clear(ctx, repo, ip)
	})
	if err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("two-factor check ended with error")
		return err
	}
	if outcome != nil {
		return outcome
	}

	identity.TwoFactorEnabled = true
	identity.TwoFactorAuth = true
	a.metrics.TwoFactorTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return nil
}

func (a *authService) failedLoginsFor(uow *store.UnitOfWork) store.FailedLoginRepository {
	if a.failedLogins != nil {
		return a.failedLogins
	}
	return uow.FailedLogins()
}

func userLookupError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNoUserWasFound):
		return ErrUserNotFound
	}
	return persistenceFailure(err)
}
