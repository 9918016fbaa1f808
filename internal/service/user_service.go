package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/access"
	"github.com/atendehq/helpdesk/internal/auth"
	"github.com/atendehq/helpdesk/internal/config"
	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/repository"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// UserService covers account administration. Deactivation is the only
// removal path; user rows are never hard-deleted so the activity log
// always resolves its author.
type UserService struct {
	users  repository.UserRepository
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, cfg config.AuthConfig, logger *zap.Logger) *UserService {
	return &UserService{users: users, cfg: cfg, logger: logger}
}

// UserCreateInput carries admin-side account creation fields.
type UserCreateInput struct {
	Name      string
	Email     string
	Password  string
	Role      domain.Role
	Matricula *string
	Telefone  *string
}

// UserUpdateInput carries optional profile edits. Role and IsActive are
// admin-only and ignored for other actors.
type UserUpdateInput struct {
	Name      *string
	Email     *string
	Matricula *string
	Telefone  *string
	Role      *domain.Role
	IsActive  *bool
}

// Create provisions an account with an explicit role. Admin only.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("only admins may create accounts")
	}
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"email": email})
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(input.Role)})
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Matricula:    input.Matricula,
		Telefone:     input.Telefone,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Get fetches a user profile. Staff may read anyone; users only themselves.
func (s *UserService) Get(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if !access.CanUpdateUser(actor, userID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.load(ctx, userID)
}

// List returns accounts. Staff only; inactive accounts require admin.
func (s *UserService) List(ctx context.Context, actor *domain.User, includeInactive bool, limit, offset int) ([]domain.User, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("access denied")
	}
	if includeInactive && !access.CanManageUsers(actor) {
		includeInactive = false
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, includeInactive, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Update applies profile edits. Non-admin callers can touch only their
// own profile fields; role and active status silently require admin.
func (s *UserService) Update(ctx context.Context, actor *domain.User, userID string, input UserUpdateInput) (*domain.User, error) {
	if !access.CanUpdateUser(actor, userID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		user.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperrors.NewValidationError("invalid email address", map[string]any{"email": email})
		}
		if email != user.Email {
			if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
				return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			user.Email = email
		}
	}
	if input.Matricula != nil {
		user.Matricula = input.Matricula
	}
	if input.Telefone != nil {
		user.Telefone = input.Telefone
	}
	if input.Role != nil {
		if !access.CanManageUsers(actor) {
			return nil, apperrors.NewForbidden("only admins may change roles")
		}
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(*input.Role)})
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if !access.CanManageUsers(actor) {
			return nil, apperrors.NewForbidden("only admins may activate or deactivate accounts")
		}
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Deactivate soft-deletes an account: tokens stop working at the next
// request and the user disappears from default listings. Admin only.
func (s *UserService) Deactivate(ctx context.Context, actor *domain.User, userID string) error {
	if !access.CanManageUsers(actor) {
		return apperrors.NewForbidden("only admins may deactivate accounts")
	}
	if actor.ID == userID {
		return apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("user deactivated", zap.String("user_id", userID), zap.String("actor_id", actor.ID))
	return nil
}

// ChangePassword lets a user rotate their own password.
func (s *UserService) ChangePassword(ctx context.Context, actor *domain.User, current, next string) error {
	if len(next) < minPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	hash, err := auth.HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
