package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/config"
	"github.com/atendehq/helpdesk/internal/domain"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 60)
	cfg := config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              4,
	}
	return NewAuthService(users, tokens, cfg, zap.NewNop()), users
}

func registerUser(t *testing.T, svc *AuthService, email string) *AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Souza",
		Email:    email,
		Password: "senha-forte",
	})
	require.NoError(t, err)
	return result
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, _ := newAuthFixture()

	result := registerUser(t, svc, "Ana@Empresa.com.br")
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	assert.Equal(t, "ana@empresa.com.br", result.User.Email)
	// Self-registration never grants elevated roles.
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEqual(t, "senha-forte", result.User.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: " ", Email: "a@b.com", Password: "senha-forte"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana", Email: "nao-e-email", Password: "senha-forte"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana", Email: "a@b.com", Password: "curta"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	registerUser(t, svc, "ana@empresa.com.br")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Outra Ana", Email: "ANA@empresa.com.br", Password: "senha-forte",
	})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registerUser(t, svc, "ana@empresa.com.br")

	result, err := svc.Login(ctx, "  ANA@empresa.com.br ", "senha-forte")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	registered := registerUser(t, svc, "ana@empresa.com.br")

	_, wrongPassword := svc.Login(ctx, "ana@empresa.com.br", "senha-errada")
	_, unknownEmail := svc.Login(ctx, "ninguem@empresa.com.br", "senha-forte")

	registered.User.IsActive = false
	require.NoError(t, users.Update(ctx, registered.User))
	_, inactive := svc.Login(ctx, "ana@empresa.com.br", "senha-forte")

	for _, err := range []error{wrongPassword, unknownEmail, inactive} {
		converted := errCode(t, err)
		assert.Equal(t, "UNAUTHORIZED", converted)
	}
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, wrongPassword.Error(), inactive.Error())
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registerUser(t, svc, "ana@empresa.com.br")

	token, err := svc.RequestPasswordReset(ctx, "ana@empresa.com.br")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "nova-senha-forte"))

	_, err = svc.Login(ctx, "ana@empresa.com.br", "senha-forte")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	_, err = svc.Login(ctx, "ana@empresa.com.br", "nova-senha-forte")
	assert.NoError(t, err)

	// The token is single-use.
	err = svc.ResetPassword(ctx, token, "outra-senha-forte")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _ := newAuthFixture()

	token, err := svc.RequestPasswordReset(context.Background(), "ninguem@empresa.com.br")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	registered := registerUser(t, svc, "ana@empresa.com.br")

	token, err := svc.RequestPasswordReset(ctx, "ana@empresa.com.br")
	require.NoError(t, err)

	stored, err := users.GetByID(ctx, registered.User.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	stored.ResetTokenExpiry = &past
	require.NoError(t, users.Update(ctx, stored))

	err = svc.ResetPassword(ctx, token, "nova-senha-forte")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestResetPasswordTooShort(t *testing.T) {
	svc, _ := newAuthFixture()

	err := svc.ResetPassword(context.Background(), "qualquer", "curta")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}
