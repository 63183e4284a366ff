package catalog

import "time"

// App identifies one of the platform applications a permission belongs to.
type App string

// Known platform applications. The catalog accepts others; these are the
// seeded defaults.
const (
	AppAccess App = "access"
	AppOrigin App = "origin"
	AppCode   App = "code"
	AppStock  App = "stock"
)

// Role represents a high-level permission grouping with a hierarchy rank.
type Role struct {
	ID             string
	Name           string
	DisplayName    string
	Description    string
	HierarchyLevel int
	IsSystem       bool
	IsSuper        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Permission represents an atomic capability scoped to an application.
// Identity is the (App, Action, Resource) tuple; an empty Resource means
// the permission covers the whole app+action.
type Permission struct {
	ID          string
	App         App
	Action      string
	Resource    string
	DisplayName string
	Description string
}

// Assignment ties a permission to a role as a default capability.
type Assignment struct {
	RoleID       string
	PermissionID string
	CreatedAt    time.Time
}

// Covers reports whether this permission satisfies a query for the given
// app, action, and resource. An empty query resource matches any row for
// the app+action; a specific query resource matches rows with that exact
// resource or rows with no resource (broader grant implies narrower).
func (p Permission) Covers(app App, action, resource string) bool {
	if p.App != app || p.Action != action {
		return false
	}
	if resource == "" {
		return true
	}
	return p.Resource == "" || p.Resource == resource
}
