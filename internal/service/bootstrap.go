package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/models"
)

// Bootstrap seeds the administrator account when no administrator exists.
// The seed account is created email-verified. Everything runs in one init
// unit of work that is committed at the end, or discarded on error.
func Bootstrap(ctx context.Context, manager *store.Manager, auth AuthService, admin config.Admin, log *logger.Logger) (err error) {
	ctx = manager.Bind(log.WithContext(ctx), store.ScopeInit)
	defer func() {
		if err != nil {
			_ = manager.Discard(ctx)
			return
		}
		if closeErr := manager.Close(ctx); closeErr != nil {
			err = persistenceFailure(closeErr)
		}
	}()

	exists, err := auth.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		log.Debug().Msg("administrator account present")
		return nil
	}

	if admin.Email == "" || admin.Password == "" {
		log.Warn().Msg("no administrator account and no administrator credentials configured")
		return nil
	}

	id, err := auth.CreateUser(ctx, admin.Email, admin.Password, models.RoleAdministrator)
	if errors.Is(err, ErrDuplicateEmail) {
		// a standard account already uses the address; promote it instead
		user, findErr := auth.GetUserBy(ctx, models.ByEmail, admin.Email)
		if findErr != nil {
			return findErr
		}
		id, err = user.ID, nil
		role := models.RoleAdministrator
		if err = auth.UpdateUser(ctx, models.UserUpdate{ID: id, Role: &role}); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}

	verified := true
	if err = auth.UpdateUser(ctx, models.UserUpdate{ID: id, EmailVerified: &verified}); err != nil {
		return err
	}

	log.Info().Int64("user_id", id).Str("email", NormalizeEmail(admin.Email)).Msg("administrator account created")
	return nil
}
