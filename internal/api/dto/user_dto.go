package dto

import (
	"time"

	"github.com/atendehq/helpdesk/internal/domain"
)

// CreateUserRequest payload for admin account provisioning.
type CreateUserRequest struct {
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
	Matricula *string     `json:"matricula"`
	Telefone  *string     `json:"telefone"`
}

// UpdateUserRequest payload; omitted fields are left unchanged.
type UpdateUserRequest struct {
	Name      *string      `json:"name"`
	Email     *string      `json:"email"`
	Matricula *string      `json:"matricula"`
	Telefone  *string      `json:"telefone"`
	Role      *domain.Role `json:"role"`
	IsActive  *bool        `json:"is_active"`
}

// UserResponse public profile representation; never carries credentials.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Matricula *string     `json:"matricula"`
	Telefone  *string     `json:"telefone"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserFromDomain maps a domain user to its response shape.
func UserFromDomain(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Matricula: user.Matricula,
		Telefone:  user.Telefone,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
