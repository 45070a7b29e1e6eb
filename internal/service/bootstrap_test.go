package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/mock"
	"github.com/MKhiriev/go-support-portal/models"
)

func TestBootstrap_SeedsVerifiedAdministrator(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := config.Admin{Email: "Root@Example.com", Password: "admin-password"}

	require.NoError(t, Bootstrap(ctx, f.manager, f.svc, admin, logger.Nop()))

	user, err := f.svc.GetUserBy(ctx, models.ByEmail, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, user.Role)
	assert.True(t, user.EmailVerified)

	identity, err := f.login("root@example.com", "admin-password", "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())

	// a second start finds the administrator and changes nothing
	require.NoError(t, Bootstrap(ctx, f.manager, f.svc, config.Admin{Email: "other@example.com", Password: "x"}, logger.Nop()))
	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBootstrap_PromotesExistingAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	id := f.register(t, "root@example.com", alicePassword)

	require.NoError(t, Bootstrap(ctx, f.manager, f.svc, config.Admin{Email: "root@example.com", Password: "ignored"}, logger.Nop()))

	user, err := f.svc.GetUserBy(ctx, models.ByEmail, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, models.RoleAdministrator, user.Role)
	assert.True(t, user.EmailVerified)
}

func TestBootstrap_WithoutCredentials(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, Bootstrap(context.Background(), f.manager, f.svc, config.Admin{}, logger.Nop()))

	exists, err := f.svc.AdminExists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBootstrap_DiscardsOnError(t *testing.T) {
	f := newAuthFixture(t)
	ctrl := gomock.NewController(t)
	auth := mock.NewMockAuthService(ctrl)
	boom := errors.New("boom")

	gomock.InOrder(
		auth.EXPECT().AdminExists(gomock.Any()).Return(false, nil),
		auth.EXPECT().CreateUser(gomock.Any(), "root@example.com", "pw", models.RoleAdministrator).Return(int64(0), boom),
	)

	err := Bootstrap(context.Background(), f.manager, auth, config.Admin{Email: "root@example.com", Password: "pw"}, logger.Nop())
	assert.ErrorIs(t, err, boom)
}
