package domain

import "time"

// Role enumerates the access levels recognized by the service.
type Role string

const (
	RoleUser        Role = "USER"
	RoleCoordinator Role = "COORDINATOR"
	RoleAdmin       Role = "ADMIN"
)

// IsStaff reports whether the role grants coordinator-level access.
func (r Role) IsStaff() bool {
	return r == RoleCoordinator || r == RoleAdmin
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// User is the single identity model: requesters, coordinators and admins
// differ only by Role. Accounts are never hard-deleted; deactivation flips
// IsActive so historical tickets keep their foreign keys.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	Matricula        *string
	Telefone         *string
	IsActive         bool
	ResetToken       *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
