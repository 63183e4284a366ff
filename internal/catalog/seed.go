package catalog

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName derives a human readable label from a snake_case name.
func DisplayName(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

type seedRole struct {
	name     string
	level    int
	isSystem bool
	isSuper  bool
	desc     string
}

type seedPermission struct {
	app      App
	action   string
	resource string
	desc     string
}

var seedRoles = []seedRole{
	{name: "super_admin", level: 100, isSystem: true, isSuper: true, desc: "Bypasses all permission checks"},
	{name: "admin", level: 80, isSystem: true, desc: "Full management of users and permissions"},
	{name: "editor", level: 60, desc: "Creates and edits content across applications"},
	{name: "quality_assurance", level: 50, desc: "Reviews and validates content"},
	{name: "approver", level: 40, desc: "Approves submitted changes"},
	{name: "viewer", level: 10, isSystem: true, desc: "Read-only access"},
}

var seedPermissions = []seedPermission{
	{app: AppAccess, action: "manage_users", desc: "Invite, update, and remove platform users"},
	{app: AppAccess, action: "manage_permissions", desc: "Edit per-user permission overrides"},
	{app: AppAccess, action: "view_audit_logs", desc: "Read the audit trail"},
	{app: AppOrigin, action: "view", desc: "Browse origin records"},
	{app: AppOrigin, action: "edit", desc: "Edit origin records"},
	{app: AppOrigin, action: "approve", desc: "Approve origin changes"},
	{app: AppCode, action: "view", desc: "Browse product codes"},
	{app: AppCode, action: "edit", desc: "Edit product codes and descriptions"},
	{app: AppCode, action: "edit", resource: "descriptions", desc: "Edit product descriptions only"},
	{app: AppCode, action: "approve", desc: "Approve code changes"},
	{app: AppStock, action: "view", desc: "Browse stock levels"},
	{app: AppStock, action: "edit", desc: "Edit stock records"},
	{app: AppStock, action: "adjust", resource: "inventory", desc: "Post inventory adjustments"},
}

// roleDefaults maps role name to the seeded default capability set,
// expressed as app/action/resource keys. super_admin carries none: its
// access comes from the bypass, not from catalog rows.
var roleDefaults = map[string][]string{
	"admin": {
		"access/manage_users", "access/manage_permissions", "access/view_audit_logs",
		"origin/view", "origin/edit", "origin/approve",
		"code/view", "code/edit", "code/edit/descriptions", "code/approve",
		"stock/view", "stock/edit", "stock/adjust/inventory",
	},
	"editor": {
		"origin/view", "origin/edit",
		"code/view", "code/edit", "code/edit/descriptions",
		"stock/view", "stock/edit",
	},
	"quality_assurance": {
		"origin/view", "code/view", "code/edit/descriptions", "stock/view",
	},
	"approver": {
		"origin/view", "origin/approve", "code/view", "code/approve", "stock/view",
	},
	"viewer": {
		"origin/view", "code/view", "stock/view",
	},
}

// SeedData produces the default catalog contents with freshly generated ids.
func SeedData() ([]Role, []Permission, []Assignment) {
	roles := make([]Role, 0, len(seedRoles))
	roleIDs := make(map[string]string, len(seedRoles))
	for _, sr := range seedRoles {
		id := uuid.NewString()
		roleIDs[sr.name] = id
		roles = append(roles, Role{
			ID:             id,
			Name:           sr.name,
			DisplayName:    DisplayName(sr.name),
			Description:    sr.desc,
			HierarchyLevel: sr.level,
			IsSystem:       sr.isSystem,
			IsSuper:        sr.isSuper,
		})
	}

	perms := make([]Permission, 0, len(seedPermissions))
	permIDs := make(map[string]string, len(seedPermissions))
	for _, sp := range seedPermissions {
		id := uuid.NewString()
		permIDs[permKey(sp.app, sp.action, sp.resource)] = id
		perms = append(perms, Permission{
			ID:          id,
			App:         sp.app,
			Action:      sp.action,
			Resource:    sp.resource,
			DisplayName: DisplayName(sp.action),
			Description: sp.desc,
		})
	}

	var assignments []Assignment
	for roleName, keys := range roleDefaults {
		roleID := roleIDs[roleName]
		for _, key := range keys {
			permID, ok := permIDs[key]
			if !ok {
				continue
			}
			assignments = append(assignments, Assignment{RoleID: roleID, PermissionID: permID})
		}
	}
	return roles, perms, assignments
}

func permKey(app App, action, resource string) string {
	key := string(app) + "/" + action
	if resource != "" {
		key += "/" + resource
	}
	return key
}
