package rbac

import (
	"fmt"
	"time"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

// UserRole links a user to their single active role.
type UserRole struct {
	UserID     string
	RoleID     string
	AssignedBy string
	AssignedAt time.Time
}

// Override is a per-user exception layered on the role defaults. Granted
// true adds a capability; granted false removes one the role gives. At
// most one override exists per (user, permission) pair.
type Override struct {
	UserID       string
	PermissionID string
	Granted      bool
	GrantedBy    string
}

// Resolution is the effective authorization surface for one user at the
// time of the query.
type Resolution struct {
	Role          catalog.Role
	PermissionIDs []string
	Super         bool
}

var (
	// ErrSelfRoleChange rejects an actor changing their own role, regardless
	// of the levels involved.
	ErrSelfRoleChange = fmt.Errorf("%w: cannot change your own role", shared.ErrForbidden)
	// ErrSelfAction rejects an actor editing their own permission overrides.
	ErrSelfAction = fmt.Errorf("%w: cannot modify your own access", shared.ErrForbidden)
	// ErrSelfDelete rejects an actor deleting their own account.
	ErrSelfDelete = fmt.Errorf("%w: cannot delete your own account", shared.ErrForbidden)
	// ErrLevelNotBelow rejects acting on a target at or above the actor's level.
	ErrLevelNotBelow = fmt.Errorf("%w: target must be strictly below your hierarchy level", shared.ErrForbidden)
	// ErrBelowDeletionFloor rejects deletion by an actor under the configured floor.
	ErrBelowDeletionFloor = fmt.Errorf("%w: hierarchy level below the deletion floor", shared.ErrForbidden)
	// ErrOverlappingOverrides rejects a permission listed as both grant and revoke.
	ErrOverlappingOverrides = fmt.Errorf("%w: permission listed in both grants and revokes", shared.ErrInvalidInput)
	// ErrUnknownRole rejects references to roles missing from the catalog.
	ErrUnknownRole = fmt.Errorf("%w: unknown role", shared.ErrInvalidReference)
	// ErrUnknownPermission rejects references to permissions missing from the catalog.
	ErrUnknownPermission = fmt.Errorf("%w: unknown permission", shared.ErrInvalidReference)
)
