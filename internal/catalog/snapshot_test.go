package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func snapshotFixture(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(
		[]Role{
			{ID: "r1", Name: "super_admin", HierarchyLevel: 100, IsSuper: true},
			{ID: "r2", Name: "admin", HierarchyLevel: 80},
		},
		[]Permission{
			{ID: "p1", App: AppOrigin, Action: "view"},
			{ID: "p2", App: AppOrigin, Action: "edit"},
		},
		[]Assignment{
			{RoleID: "r2", PermissionID: "p2"},
			{RoleID: "r2", PermissionID: "p1"},
		},
	)
	require.NoError(t, err)
	return snap
}

func TestNewSnapshotRequiresExactlyOneSuperRole(t *testing.T) {
	_, err := NewSnapshot(
		[]Role{{ID: "r1", Name: "admin", HierarchyLevel: 80}},
		nil, nil,
	)
	require.ErrorContains(t, err, "no super role")

	_, err = NewSnapshot(
		[]Role{
			{ID: "r1", Name: "a", HierarchyLevel: 100, IsSuper: true},
			{ID: "r2", Name: "b", HierarchyLevel: 90, IsSuper: true},
		},
		nil, nil,
	)
	require.ErrorContains(t, err, "multiple super roles")
}

func TestNewSnapshotRejectsDanglingAssignments(t *testing.T) {
	_, err := NewSnapshot(
		[]Role{{ID: "r1", Name: "super_admin", HierarchyLevel: 100, IsSuper: true}},
		[]Permission{{ID: "p1", App: AppOrigin, Action: "view"}},
		[]Assignment{{RoleID: "r-missing", PermissionID: "p1"}},
	)
	require.ErrorContains(t, err, "unknown role")

	_, err = NewSnapshot(
		[]Role{{ID: "r1", Name: "super_admin", HierarchyLevel: 100, IsSuper: true}},
		[]Permission{{ID: "p1", App: AppOrigin, Action: "view"}},
		[]Assignment{{RoleID: "r1", PermissionID: "p-missing"}},
	)
	require.ErrorContains(t, err, "unknown permission")
}

func TestSnapshotUnknownRoleResolvesToFallback(t *testing.T) {
	snap := snapshotFixture(t)

	role := snap.Role("")
	require.Equal(t, "viewer", role.Name)
	require.Equal(t, 10, role.HierarchyLevel)

	role = snap.Role("nope")
	require.Equal(t, "viewer", role.Name)

	require.False(t, snap.HasRole(""))
	require.False(t, snap.IsSuper(""))
	require.True(t, snap.IsSuper("r1"))
}

func TestSnapshotRolePermissionIDsSorted(t *testing.T) {
	snap := snapshotFixture(t)
	require.Equal(t, []string{"p1", "p2"}, snap.RolePermissionIDs("r2"))
	require.Empty(t, snap.RolePermissionIDs("r1"))
	require.Empty(t, snap.RolePermissionIDs("missing"))
}

func TestSnapshotRolesOrderedByLevelDescending(t *testing.T) {
	snap := snapshotFixture(t)
	roles := snap.Roles()
	require.Len(t, roles, 2)
	require.Equal(t, "super_admin", roles[0].Name)
	require.Equal(t, "admin", roles[1].Name)
}

func TestPermissionCovers(t *testing.T) {
	broad := Permission{App: AppCode, Action: "edit"}
	scoped := Permission{App: AppCode, Action: "edit", Resource: "descriptions"}

	cases := []struct {
		name     string
		perm     Permission
		app      App
		action   string
		resource string
		want     bool
	}{
		{name: "broad covers bare query", perm: broad, app: AppCode, action: "edit", want: true},
		{name: "broad covers scoped query", perm: broad, app: AppCode, action: "edit", resource: "descriptions", want: true},
		{name: "scoped covers bare query", perm: scoped, app: AppCode, action: "edit", want: true},
		{name: "scoped covers matching resource", perm: scoped, app: AppCode, action: "edit", resource: "descriptions", want: true},
		{name: "scoped rejects other resource", perm: scoped, app: AppCode, action: "edit", resource: "pricing", want: false},
		{name: "different action rejected", perm: broad, app: AppCode, action: "view", want: false},
		{name: "different app rejected", perm: broad, app: AppStock, action: "edit", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.perm.Covers(tc.app, tc.action, tc.resource))
		})
	}
}
