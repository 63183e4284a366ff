package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedDataBuildsValidSnapshot(t *testing.T) {
	roles, perms, assignments := SeedData()
	snap, err := NewSnapshot(roles, perms, assignments)
	require.NoError(t, err)

	ordered := snap.Roles()
	require.Len(t, ordered, 6)
	require.Equal(t, "super_admin", ordered[0].Name)
	require.True(t, ordered[0].IsSuper)
	require.Equal(t, 100, ordered[0].HierarchyLevel)
	require.Equal(t, "viewer", ordered[len(ordered)-1].Name)
	require.Equal(t, 10, ordered[len(ordered)-1].HierarchyLevel)
}

func TestSeedDataSuperRoleCarriesNoDefaults(t *testing.T) {
	roles, perms, assignments := SeedData()
	snap, err := NewSnapshot(roles, perms, assignments)
	require.NoError(t, err)

	var superID string
	for _, r := range roles {
		if r.IsSuper {
			superID = r.ID
		}
	}
	require.NotEmpty(t, superID)
	require.Empty(t, snap.RolePermissionIDs(superID))
}

func TestSeedDataViewerDefaultsAreReadOnly(t *testing.T) {
	roles, perms, assignments := SeedData()
	snap, err := NewSnapshot(roles, perms, assignments)
	require.NoError(t, err)

	var viewerID string
	for _, r := range roles {
		if r.Name == "viewer" {
			viewerID = r.ID
		}
	}
	for _, id := range snap.RolePermissionIDs(viewerID) {
		perm, ok := snap.Permission(id)
		require.True(t, ok)
		require.Equal(t, "view", perm.Action)
	}
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Quality Assurance", DisplayName("quality_assurance"))
	require.Equal(t, "Manage Users", DisplayName("manage_users"))
	require.Equal(t, "View", DisplayName("view"))
}
