package rbac

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, store *stubStore) *Service {
	t.Helper()
	snap := testSnapshot(t)
	resolver := NewResolver(snap, store, nil, slog.Default())
	return NewService(snap, store, resolver, NewGuard(80), slog.Default())
}

func TestAssignRoleUnknownRoleRejected(t *testing.T) {
	store := &stubStore{roles: map[string]string{"actor": "role-admin"}}
	svc := newTestService(t, store)

	err := svc.AssignRole(context.Background(), "actor", "target", "role-ghost")
	require.ErrorIs(t, err, ErrUnknownRole)
	require.Empty(t, store.assignedUser)
}

func TestAssignRoleSelfRejected(t *testing.T) {
	store := &stubStore{roles: map[string]string{"actor": "role-admin"}}
	svc := newTestService(t, store)

	err := svc.AssignRole(context.Background(), "actor", "actor", "role-qa")
	require.ErrorIs(t, err, ErrSelfRoleChange)
	require.Empty(t, store.assignedUser)
}

func TestAssignRoleAtOwnLevelRejected(t *testing.T) {
	store := &stubStore{roles: map[string]string{"actor": "role-admin"}}
	svc := newTestService(t, store)

	err := svc.AssignRole(context.Background(), "actor", "target", "role-admin")
	require.ErrorIs(t, err, ErrLevelNotBelow)
}

func TestAssignRoleBelowSucceeds(t *testing.T) {
	store := &stubStore{roles: map[string]string{"actor": "role-admin"}}
	svc := newTestService(t, store)

	err := svc.AssignRole(context.Background(), "actor", "target", "role-editor")
	require.NoError(t, err)
	require.Equal(t, "target", store.assignedUser)
	require.Equal(t, "role-editor", store.assignedRole)
}

func TestReplaceOverridesOverlapRejected(t *testing.T) {
	store := &stubStore{roles: map[string]string{
		"actor":  "role-admin",
		"target": "role-editor",
	}}
	svc := newTestService(t, store)

	err := svc.ReplaceOverrides(context.Background(), "actor", "target",
		[]string{"perm-origin-edit"}, []string{"perm-origin-edit"})
	require.ErrorIs(t, err, ErrOverlappingOverrides)
	require.Empty(t, store.replacedUser)
}

func TestReplaceOverridesUnknownPermissionRejected(t *testing.T) {
	store := &stubStore{roles: map[string]string{
		"actor":  "role-admin",
		"target": "role-editor",
	}}
	svc := newTestService(t, store)

	err := svc.ReplaceOverrides(context.Background(), "actor", "target",
		[]string{"perm-ghost"}, nil)
	require.ErrorIs(t, err, ErrUnknownPermission)
	require.Empty(t, store.replacedUser)
}

func TestReplaceOverridesGuardRunsBeforeWrite(t *testing.T) {
	store := &stubStore{roles: map[string]string{
		"actor":  "role-editor",
		"target": "role-admin",
	}}
	svc := newTestService(t, store)

	err := svc.ReplaceOverrides(context.Background(), "actor", "target",
		[]string{"perm-origin-view"}, nil)
	require.ErrorIs(t, err, ErrLevelNotBelow)
	require.Empty(t, store.replacedUser)
}

func TestReplaceOverridesDedupesAndWrites(t *testing.T) {
	store := &stubStore{roles: map[string]string{
		"actor":  "role-admin",
		"target": "role-editor",
	}}
	svc := newTestService(t, store)

	err := svc.ReplaceOverrides(context.Background(), "actor", "target",
		[]string{"perm-manage-users", "perm-manage-users"},
		[]string{"perm-origin-edit"})
	require.NoError(t, err)
	require.Equal(t, "target", store.replacedUser)
	require.Equal(t, []string{"perm-manage-users"}, store.replaceGrants)
	require.Equal(t, []string{"perm-origin-edit"}, store.replaceRevoke)
}

func TestReplaceOverridesIdempotent(t *testing.T) {
	store := &stubStore{roles: map[string]string{
		"actor":  "role-admin",
		"target": "role-editor",
	}}
	svc := newTestService(t, store)
	ctx := context.Background()

	grants := []string{"perm-manage-users"}
	revokes := []string{"perm-origin-edit"}

	require.NoError(t, svc.ReplaceOverrides(ctx, "actor", "target", grants, revokes))
	first, err := svc.resolver.Resolve(ctx, "target")
	require.NoError(t, err)

	// Applying the identical replacement again must land on the same
	// effective set: full replace, not accumulation.
	require.NoError(t, svc.ReplaceOverrides(ctx, "actor", "target", grants, revokes))
	second, err := svc.resolver.Resolve(ctx, "target")
	require.NoError(t, err)

	require.Equal(t, first.PermissionIDs, second.PermissionIDs)
	require.Contains(t, second.PermissionIDs, "perm-manage-users")
	require.NotContains(t, second.PermissionIDs, "perm-origin-edit")
}

func TestReplaceOverridesEmptyListsClearAll(t *testing.T) {
	store := &stubStore{roles: map[string]string{
		"actor":  "role-admin",
		"target": "role-editor",
	}}
	svc := newTestService(t, store)

	err := svc.ReplaceOverrides(context.Background(), "actor", "target", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "target", store.replacedUser)
	require.Empty(t, store.replaceGrants)
	require.Empty(t, store.replaceRevoke)
}
