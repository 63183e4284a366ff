package users

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/rbac"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

type stubRepo struct {
	records map[string]Record

	createdEmail  string
	createdRole   string
	deletedUserID string
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubRepo) GetUser(ctx context.Context, userID string) (Record, error) {
	rec, ok := s.records[userID]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return rec, nil
}

func (s *stubRepo) CountUsers(ctx context.Context) (int, error) {
	return len(s.records), nil
}

func (s *stubRepo) CreateUserWithRole(ctx context.Context, userID, email, roleID, invitedBy string) error {
	s.createdEmail = email
	s.createdRole = roleID
	return nil
}

func (s *stubRepo) DeleteUser(ctx context.Context, userID, performedBy string) error {
	s.deletedUserID = userID
	delete(s.records, userID)
	return nil
}

type stubLevels struct {
	levels      map[string]int
	invalidated []string
}

func (s *stubLevels) Level(ctx context.Context, userID string) (int, error) {
	if lvl, ok := s.levels[userID]; ok {
		return lvl, nil
	}
	return 10, nil
}

func (s *stubLevels) Invalidate(ctx context.Context, userID string) {
	s.invalidated = append(s.invalidated, userID)
}

type stubNotifier struct {
	invited []string
	err     error
}

func (s *stubNotifier) InviteCreated(ctx context.Context, email, userID string) error {
	s.invited = append(s.invited, email)
	return s.err
}

func fixtureSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.NewSnapshot(
		[]catalog.Role{
			{ID: "role-super", Name: "super_admin", HierarchyLevel: 100, IsSuper: true},
			{ID: "role-admin", Name: "admin", HierarchyLevel: 80},
			{ID: "role-editor", Name: "editor", HierarchyLevel: 60},
			{ID: "role-approver", Name: "approver", HierarchyLevel: 40},
		},
		[]catalog.Permission{{ID: "p1", App: catalog.AppOrigin, Action: "view"}},
		[]catalog.Assignment{{RoleID: "role-editor", PermissionID: "p1"}},
	)
	require.NoError(t, err)
	return snap
}

func newFixture(t *testing.T, repo *stubRepo, levels *stubLevels, notifier *stubNotifier) *Service {
	t.Helper()
	return NewService(repo, fixtureSnapshot(t), levels, rbac.NewGuard(80), notifier, slog.Default())
}

func TestInviteAssignsRoleBelowActor(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{}}
	levels := &stubLevels{levels: map[string]int{"actor": 80}}
	notifier := &stubNotifier{}
	svc := newFixture(t, repo, levels, notifier)

	userID, err := svc.Invite(context.Background(), "actor", "  New@Example.COM ", "role-editor")
	require.NoError(t, err)
	require.NotEmpty(t, userID)
	require.Equal(t, "new@example.com", repo.createdEmail)
	require.Equal(t, "role-editor", repo.createdRole)
	require.Equal(t, []string{"new@example.com"}, notifier.invited)
}

func TestInviteRejectsRoleAtOrAboveActor(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{}}
	levels := &stubLevels{levels: map[string]int{"actor": 80}}
	svc := newFixture(t, repo, levels, &stubNotifier{})

	_, err := svc.Invite(context.Background(), "actor", "x@example.com", "role-admin")
	require.ErrorIs(t, err, rbac.ErrLevelNotBelow)
	require.Empty(t, repo.createdEmail)

	_, err = svc.Invite(context.Background(), "actor", "x@example.com", "role-super")
	require.ErrorIs(t, err, rbac.ErrLevelNotBelow)
}

func TestInviteUnknownRoleRejected(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{}}
	svc := newFixture(t, repo, &stubLevels{levels: map[string]int{"actor": 100}}, &stubNotifier{})

	_, err := svc.Invite(context.Background(), "actor", "x@example.com", "role-ghost")
	require.ErrorIs(t, err, rbac.ErrUnknownRole)
}

func TestInviteSucceedsWhenNotifierFails(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{}}
	levels := &stubLevels{levels: map[string]int{"actor": 80}}
	notifier := &stubNotifier{err: context.DeadlineExceeded}
	svc := newFixture(t, repo, levels, notifier)

	userID, err := svc.Invite(context.Background(), "actor", "x@example.com", "role-editor")
	require.NoError(t, err)
	require.NotEmpty(t, userID)
}

func TestDeleteRequiresFloorAndDominance(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{
		"target": {User: User{ID: "target"}, RoleID: "role-approver"},
	}}
	levels := &stubLevels{levels: map[string]int{"editor-actor": 60, "admin-actor": 80}}
	svc := newFixture(t, repo, levels, &stubNotifier{})

	// An editor dominates an approver but sits under the deletion floor.
	err := svc.Delete(context.Background(), "editor-actor", "target")
	require.ErrorIs(t, err, rbac.ErrBelowDeletionFloor)
	require.Empty(t, repo.deletedUserID)

	err = svc.Delete(context.Background(), "admin-actor", "target")
	require.NoError(t, err)
	require.Equal(t, "target", repo.deletedUserID)
	require.Contains(t, levels.invalidated, "target")
}

func TestDeleteSelfRejected(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{
		"actor": {User: User{ID: "actor"}, RoleID: "role-admin"},
	}}
	levels := &stubLevels{levels: map[string]int{"actor": 80}}
	svc := newFixture(t, repo, levels, &stubNotifier{})

	err := svc.Delete(context.Background(), "actor", "actor")
	require.ErrorIs(t, err, rbac.ErrSelfDelete)
	require.Empty(t, repo.deletedUserID)
}

func TestDeletePeerRejected(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{
		"target": {User: User{ID: "target"}, RoleID: "role-admin"},
	}}
	levels := &stubLevels{levels: map[string]int{"actor": 80}}
	svc := newFixture(t, repo, levels, &stubNotifier{})

	err := svc.Delete(context.Background(), "actor", "target")
	require.ErrorIs(t, err, rbac.ErrLevelNotBelow)
}

func TestDeleteMissingTarget(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{}}
	svc := newFixture(t, repo, &stubLevels{levels: map[string]int{"actor": 100}}, &stubNotifier{})

	err := svc.Delete(context.Background(), "actor", "ghost")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetExpandsRoleAndDefaults(t *testing.T) {
	repo := &stubRepo{records: map[string]Record{
		"u1": {User: User{ID: "u1", Email: "a@example.com"}, RoleID: "role-editor"},
		"u2": {User: User{ID: "u2", Email: "b@example.com"}},
	}}
	svc := newFixture(t, repo, &stubLevels{}, &stubNotifier{})

	detail, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "editor", detail.Role.Name)
	require.Equal(t, []string{"p1"}, detail.RolePermissionIDs)

	// No role row resolves to the fallback viewer.
	detail, err = svc.Get(context.Background(), "u2")
	require.NoError(t, err)
	require.Equal(t, "viewer", detail.Role.Name)
	require.Empty(t, detail.RolePermissionIDs)
}
