package rbac

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhino-platform/rhino-access/internal/catalog"
)

// Service orchestrates the mutations on rbac state: role assignment and
// override replacement. Every mutation passes the hierarchy guard before
// any write begins; a rejection means nothing was attempted.
type Service struct {
	snapshot *catalog.Snapshot
	store    Store
	resolver *Resolver
	guard    Guard
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(snapshot *catalog.Snapshot, store Store, resolver *Resolver, guard Guard, logger *slog.Logger) *Service {
	return &Service{snapshot: snapshot, store: store, resolver: resolver, guard: guard, logger: logger}
}

// Resolver exposes the resolution engine for read paths.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Guard exposes the hierarchy guard.
func (s *Service) Guard() Guard {
	return s.guard
}

// AssignRole replaces the target user's role after the hierarchy checks.
func (s *Service) AssignRole(ctx context.Context, actorID, targetUserID, roleID string) error {
	if !s.snapshot.HasRole(roleID) {
		return ErrUnknownRole
	}
	actorLevel, err := s.resolver.Level(ctx, actorID)
	if err != nil {
		return err
	}
	targetRole := s.snapshot.Role(roleID)
	if err := s.guard.CheckAssignRole(actorID, targetUserID, actorLevel, targetRole.HierarchyLevel); err != nil {
		return err
	}
	if err := s.store.AssignRole(ctx, targetUserID, roleID, actorID); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, targetUserID)
	return nil
}

// ReplaceOverrides swaps the target user's full override set. A permission
// appearing in both lists is rejected rather than resolved by write order.
func (s *Service) ReplaceOverrides(ctx context.Context, actorID, targetUserID string, grants, revokes []string) error {
	grants = dedupe(grants)
	revokes = dedupe(revokes)
	inGrants := make(map[string]struct{}, len(grants))
	for _, id := range grants {
		inGrants[id] = struct{}{}
	}
	for _, id := range revokes {
		if _, both := inGrants[id]; both {
			return fmt.Errorf("%w: %s", ErrOverlappingOverrides, id)
		}
	}
	for _, id := range append(append([]string{}, grants...), revokes...) {
		if !s.snapshot.HasPermissionID(id) {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, id)
		}
	}

	actorLevel, err := s.resolver.Level(ctx, actorID)
	if err != nil {
		return err
	}
	targetLevel, err := s.resolver.Level(ctx, targetUserID)
	if err != nil {
		return err
	}
	if err := s.guard.CheckModifyOverrides(actorID, targetUserID, actorLevel, targetLevel); err != nil {
		return err
	}

	if err := s.store.ReplaceOverrides(ctx, targetUserID, grants, revokes, actorID); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, targetUserID)
	return nil
}

// Overrides lists the stored override rows for a user.
func (s *Service) Overrides(ctx context.Context, userID string) ([]Override, error) {
	return s.store.Overrides(ctx, userID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
