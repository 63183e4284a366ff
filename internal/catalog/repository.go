package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads catalog configuration from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadRoles returns all roles.
func (r *Repository) LoadRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, display_name, COALESCE(description, ''), hierarchy_level, is_system, is_super, created_at, updated_at FROM roles ORDER BY hierarchy_level DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.HierarchyLevel, &role.IsSystem, &role.IsSuper, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// LoadPermissions returns all permission definitions.
func (r *Repository) LoadPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, app, action, COALESCE(resource, ''), display_name, COALESCE(description, '') FROM permissions ORDER BY app, action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.App, &perm.Action, &perm.Resource, &perm.DisplayName, &perm.Description); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// LoadAssignments returns all role default permission edges.
func (r *Repository) LoadAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id, permission_id, created_at FROM role_permissions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.RoleID, &a.PermissionID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// LoadSnapshot reads the full catalog and builds the immutable snapshot.
func (r *Repository) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	roles, err := r.LoadRoles(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := r.LoadPermissions(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := r.LoadAssignments(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(roles, perms, assignments)
}
