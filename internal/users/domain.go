package users

import (
	"time"

	"github.com/rhino-platform/rhino-access/internal/catalog"
)

// User represents a platform user account.
type User struct {
	ID        string
	Email     string
	IsActive  bool
	InvitedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserWithRole combines an account with its resolved role. Accounts
// without a role row carry the fallback role.
type UserWithRole struct {
	User
	RoleID     string
	Role       catalog.Role
	AssignedAt time.Time
}

// Detail is the full admin view of one account.
type Detail struct {
	UserWithRole
	RolePermissionIDs []string
}
