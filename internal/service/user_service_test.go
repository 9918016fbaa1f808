package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/config"
	"github.com/atendehq/helpdesk/internal/domain"
)

type userFixture struct {
	service *UserService
	users   *fakeUserRepo
	admin   *domain.User
	coord   *domain.User
	regular *domain.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	hash, err := auth.HashPassword("senha-forte", 4)
	require.NoError(t, err)

	admin := &domain.User{ID: "u-admin", Name: "Beatriz", Email: "admin@empresa.com.br", Role: domain.RoleAdmin, IsActive: true, PasswordHash: hash}
	coord := &domain.User{ID: "u-coord", Name: "Carlos", Email: "coord@empresa.com.br", Role: domain.RoleCoordinator, IsActive: true, PasswordHash: hash}
	regular := &domain.User{ID: "u-regular", Name: "Ana", Email: "ana@empresa.com.br", Role: domain.RoleUser, IsActive: true, PasswordHash: hash}

	users := newFakeUserRepo(admin, coord, regular)
	svc := NewUserService(users, config.AuthConfig{BcryptCost: 4}, zap.NewNop())
	return &userFixture{service: svc, users: users, admin: admin, coord: coord, regular: regular}
}

func TestCreateUserAdminOnly(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	input := UserCreateInput{Name: "Davi", Email: "davi@empresa.com.br", Password: "senha-forte", Role: domain.RoleCoordinator}

	_, err := f.service.Create(ctx, f.coord, input)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	created, err := f.service.Create(ctx, f.admin, input)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoordinator, created.Role)
	assert.True(t, created.IsActive)
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.admin, UserCreateInput{Name: "x", Email: "x@y.com", Password: "senha-forte", Role: domain.Role("SUPREME")})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = f.service.Create(ctx, f.admin, UserCreateInput{Name: "x", Email: "ana@empresa.com.br", Password: "senha-forte", Role: domain.RoleUser})
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestGetUserScope(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	// Users read themselves; staff read anyone.
	self, err := f.service.Get(ctx, f.regular, f.regular.ID)
	require.NoError(t, err)
	assert.Equal(t, f.regular.ID, self.ID)

	_, err = f.service.Get(ctx, f.regular, f.coord.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	other, err := f.service.Get(ctx, f.coord, f.regular.ID)
	require.NoError(t, err)
	assert.Equal(t, f.regular.ID, other.ID)
}

func TestListUsers(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx, f.regular, false, 0, 0)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	require.NoError(t, f.service.Deactivate(ctx, f.admin, f.regular.ID))

	// Coordinators asking for inactive accounts silently get active only.
	listed, err := f.service.List(ctx, f.coord, true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	all, err := f.service.List(ctx, f.admin, true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateUserProfileFields(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	name := "Ana Paula"
	matricula := "2024-0042"
	updated, err := f.service.Update(ctx, f.regular, f.regular.ID, UserUpdateInput{Name: &name, Matricula: &matricula})
	require.NoError(t, err)
	assert.Equal(t, "Ana Paula", updated.Name)
	require.NotNil(t, updated.Matricula)
	assert.Equal(t, "2024-0042", *updated.Matricula)
}

func TestUpdateUserRoleRequiresAdmin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	role := domain.RoleCoordinator
	_, err := f.service.Update(ctx, f.regular, f.regular.ID, UserUpdateInput{Role: &role})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	promoted, err := f.service.Update(ctx, f.admin, f.regular.ID, UserUpdateInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoordinator, promoted.Role)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	taken := "coord@empresa.com.br"
	_, err := f.service.Update(ctx, f.regular, f.regular.ID, UserUpdateInput{Email: &taken})
	assert.Equal(t, "CONFLICT", errCode(t, err))

	// Re-submitting the current address is not a conflict.
	own := "ana@empresa.com.br"
	_, err = f.service.Update(ctx, f.regular, f.regular.ID, UserUpdateInput{Email: &own})
	assert.NoError(t, err)
}

func TestDeactivateUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	err := f.service.Deactivate(ctx, f.coord, f.regular.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	err = f.service.Deactivate(ctx, f.admin, f.admin.ID)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	require.NoError(t, f.service.Deactivate(ctx, f.admin, f.regular.ID))
	stored, err := f.users.GetByID(ctx, f.regular.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// Deactivating twice is a no-op, not an error.
	assert.NoError(t, f.service.Deactivate(ctx, f.admin, f.regular.ID))
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, f.regular, "senha-errada", "nova-senha-forte")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	err = f.service.ChangePassword(ctx, f.regular, "senha-forte", "curta")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	require.NoError(t, f.service.ChangePassword(ctx, f.regular, "senha-forte", "nova-senha-forte"))

	stored, err := f.users.GetByID(ctx, f.regular.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "nova-senha-forte"))
}
