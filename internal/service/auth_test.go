package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agri_chat/internal/config"
	"agri_chat/internal/domain"
	pkgerrors "agri_chat/pkg/errors"
	"agri_chat/pkg/logger"
)

func newAuthFixture(t *testing.T) (*memStore, AuthService) {
	t.Helper()

	store := newMemStore()
	svc := NewAuthService(
		&fakeUserRepo{s: store},
		config.JWTConfig{Secret: "test-secret", AccessTTL: time.Hour},
		logger.New("error"),
	)
	return store, svc
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "10000001", "secret123", "张三")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, domain.RoleUser, user.Role)
	require.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, "10000001", "secret123", "another")
	require.ErrorIs(t, err, pkgerrors.ErrUserAlreadyExists)

	resp, err := svc.Login(ctx, "10000001", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "10000001", resp.User.Username)
	require.Empty(t, resp.User.PasswordHash)

	_, err = svc.Login(ctx, "10000001", "wrong-password")
	require.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "unknown", "secret123")
	require.ErrorIs(t, err, pkgerrors.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "  ", "secret123", "")
	require.ErrorIs(t, err, pkgerrors.ErrBadRequest)

	_, err = svc.Register(ctx, "10000001", "short", "")
	require.ErrorIs(t, err, pkgerrors.ErrBadRequest)
}

func TestValidateToken_BindsChannelIdentity(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "10000001", "secret123", "")
	require.NoError(t, err)
	resp, err := svc.Login(ctx, "10000001", "secret123")
	require.NoError(t, err)

	user, err := svc.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "10000001", user.Username)

	_, err = svc.ValidateToken(ctx, "garbage")
	require.ErrorIs(t, err, pkgerrors.ErrInvalidToken)
}
