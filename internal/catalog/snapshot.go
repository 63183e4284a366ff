package catalog

import (
	"fmt"
	"sort"
)

// FallbackRole is the virtual, minimal-privilege role applied to any user
// without an explicit role row. It never exists in storage.
var FallbackRole = Role{
	ID:             "",
	Name:           "viewer",
	DisplayName:    "Viewer",
	HierarchyLevel: 10,
}

// Snapshot is an immutable view of the role and permission catalogs plus
// the role default assignments. It is built once at startup and passed
// explicitly to the resolver and guard so authorization decisions never
// read catalog configuration from ambient state.
type Snapshot struct {
	roles       map[string]Role
	permissions map[string]Permission
	rolePerms   map[string]map[string]struct{}
	superRoleID string
}

// NewSnapshot validates and indexes the catalog contents.
// Exactly one role must be marked as the super role.
func NewSnapshot(roles []Role, permissions []Permission, assignments []Assignment) (*Snapshot, error) {
	snap := &Snapshot{
		roles:       make(map[string]Role, len(roles)),
		permissions: make(map[string]Permission, len(permissions)),
		rolePerms:   make(map[string]map[string]struct{}, len(roles)),
	}
	for _, role := range roles {
		if role.ID == "" {
			return nil, fmt.Errorf("catalog: role %q has no id", role.Name)
		}
		if _, dup := snap.roles[role.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate role id %s", role.ID)
		}
		snap.roles[role.ID] = role
		if role.IsSuper {
			if snap.superRoleID != "" {
				return nil, fmt.Errorf("catalog: multiple super roles (%s, %s)", snap.superRoleID, role.ID)
			}
			snap.superRoleID = role.ID
		}
	}
	if snap.superRoleID == "" {
		return nil, fmt.Errorf("catalog: no super role defined")
	}
	for _, perm := range permissions {
		if perm.ID == "" {
			return nil, fmt.Errorf("catalog: permission %s/%s has no id", perm.App, perm.Action)
		}
		if _, dup := snap.permissions[perm.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate permission id %s", perm.ID)
		}
		snap.permissions[perm.ID] = perm
	}
	for _, a := range assignments {
		if _, ok := snap.roles[a.RoleID]; !ok {
			return nil, fmt.Errorf("catalog: assignment references unknown role %s", a.RoleID)
		}
		if _, ok := snap.permissions[a.PermissionID]; !ok {
			return nil, fmt.Errorf("catalog: assignment references unknown permission %s", a.PermissionID)
		}
		set := snap.rolePerms[a.RoleID]
		if set == nil {
			set = make(map[string]struct{})
			snap.rolePerms[a.RoleID] = set
		}
		set[a.PermissionID] = struct{}{}
	}
	return snap, nil
}

// Role returns the role for an id. The empty id and unknown ids resolve to
// the fallback role so every principal has a defined, minimal capability set.
func (s *Snapshot) Role(id string) Role {
	if role, ok := s.roles[id]; ok {
		return role
	}
	return FallbackRole
}

// HasRole reports whether a role id exists in the catalog.
func (s *Snapshot) HasRole(id string) bool {
	_, ok := s.roles[id]
	return ok
}

// Permission returns a permission definition by id.
func (s *Snapshot) Permission(id string) (Permission, bool) {
	perm, ok := s.permissions[id]
	return perm, ok
}

// HasPermissionID reports whether a permission id exists in the catalog.
func (s *Snapshot) HasPermissionID(id string) bool {
	_, ok := s.permissions[id]
	return ok
}

// IsSuper reports whether the role id is the distinguished super role.
func (s *Snapshot) IsSuper(roleID string) bool {
	return roleID != "" && roleID == s.superRoleID
}

// RolePermissionIDs returns the default permission ids for a role, sorted.
func (s *Snapshot) RolePermissionIDs(roleID string) []string {
	set := s.rolePerms[roleID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Roles returns all roles ordered by hierarchy level descending.
func (s *Snapshot) Roles() []Role {
	roles := make([]Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].HierarchyLevel != roles[j].HierarchyLevel {
			return roles[i].HierarchyLevel > roles[j].HierarchyLevel
		}
		return roles[i].Name < roles[j].Name
	})
	return roles
}

// Permissions returns all permissions ordered by app then action.
func (s *Snapshot) Permissions() []Permission {
	perms := make([]Permission, 0, len(s.permissions))
	for _, perm := range s.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].App != perms[j].App {
			return perms[i].App < perms[j].App
		}
		if perms[i].Action != perms[j].Action {
			return perms[i].Action < perms[j].Action
		}
		return perms[i].Resource < perms[j].Resource
	})
	return perms
}
