package catalog

import "context"

// UserCounter reports how many user accounts exist. Implemented by the
// users repository; used for the per-app access summary.
type UserCounter interface {
	CountUsers(ctx context.Context) (int, error)
}

// AppSummary aggregates catalog facts per application.
type AppSummary struct {
	App              App `json:"app"`
	TotalPermissions int `json:"total_permissions"`
	UsersWithAccess  int `json:"users_with_access"`
}

// Service exposes read operations over the catalog snapshot.
type Service struct {
	snapshot *Snapshot
	counter  UserCounter
}

// NewService builds Service instance.
func NewService(snapshot *Snapshot, counter UserCounter) *Service {
	return &Service{snapshot: snapshot, counter: counter}
}

// Snapshot returns the underlying immutable catalog.
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot
}

// Roles lists catalog roles, most privileged first.
func (s *Service) Roles() []Role {
	return s.snapshot.Roles()
}

// Permissions lists all permission definitions.
func (s *Service) Permissions() []Permission {
	return s.snapshot.Permissions()
}

// RolePermissionIDs lists the default permission ids granted by a role.
func (s *Service) RolePermissionIDs(roleID string) ([]string, bool) {
	if !s.snapshot.HasRole(roleID) {
		return nil, false
	}
	return s.snapshot.RolePermissionIDs(roleID), true
}

// AppSummaries returns permission counts and user reach per application.
// Every user has at least viewer-level access, so the user count is the
// platform total.
func (s *Service) AppSummaries(ctx context.Context) ([]AppSummary, error) {
	total := 0
	if s.counter != nil {
		n, err := s.counter.CountUsers(ctx)
		if err != nil {
			return nil, err
		}
		total = n
	}
	counts := make(map[App]int)
	for _, perm := range s.snapshot.Permissions() {
		counts[perm.App]++
	}
	summaries := make([]AppSummary, 0, len(counts))
	for _, app := range []App{AppAccess, AppOrigin, AppCode, AppStock} {
		if n, ok := counts[app]; ok {
			summaries = append(summaries, AppSummary{App: app, TotalPermissions: n, UsersWithAccess: total})
			delete(counts, app)
		}
	}
	for app, n := range counts {
		summaries = append(summaries, AppSummary{App: app, TotalPermissions: n, UsersWithAccess: total})
	}
	return summaries, nil
}
