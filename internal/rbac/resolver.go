package rbac

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rhino-platform/rhino-access/internal/catalog"
)

// ReadStore is the subset of Store the resolver needs.
type ReadStore interface {
	UserRole(ctx context.Context, userID string) (UserRole, bool, error)
	Overrides(ctx context.Context, userID string) ([]Override, error)
}

// Resolver computes effective permission sets. Resolution is a pure
// function of the catalog snapshot plus the user's role and override rows
// at query time; the optional cache only short-circuits repeated reads and
// is invalidated on every mutation for the user.
type Resolver struct {
	snapshot *catalog.Snapshot
	store    ReadStore
	cache    *Cache
	logger   *slog.Logger
}

// NewResolver constructs a Resolver. cache may be nil.
func NewResolver(snapshot *catalog.Snapshot, store ReadStore, cache *Cache, logger *slog.Logger) *Resolver {
	return &Resolver{snapshot: snapshot, store: store, cache: cache, logger: logger}
}

// ComputeEffective combines role defaults with overrides:
// effective = defaults ∪ grants \ revokes. Override presence wins over the
// role default unconditionally; a revoke of a permission the role never
// grants is legal and a no-op.
func ComputeEffective(snapshot *catalog.Snapshot, roleID string, overrides []Override) Resolution {
	role := snapshot.Role(roleID)
	if snapshot.IsSuper(roleID) {
		return Resolution{Role: role, Super: true}
	}
	effective := make(map[string]struct{})
	for _, id := range snapshot.RolePermissionIDs(roleID) {
		effective[id] = struct{}{}
	}
	for _, o := range overrides {
		if !snapshot.HasPermissionID(o.PermissionID) {
			continue
		}
		if o.Granted {
			effective[o.PermissionID] = struct{}{}
		} else {
			delete(effective, o.PermissionID)
		}
	}
	ids := make([]string, 0, len(effective))
	for id := range effective {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Resolution{Role: role, PermissionIDs: ids}
}

// Resolve returns the user's role and effective permission set. Unknown
// users resolve to the fallback role; resolution never fails on identity.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Resolution, error) {
	if r.cache != nil {
		cached, err := r.cache.Fetch(ctx, userID, func(ctx context.Context) (cachedResolution, error) {
			res, err := r.resolveFresh(ctx, userID)
			if err != nil {
				return cachedResolution{}, err
			}
			return cachedResolution{RoleID: res.Role.ID, PermissionIDs: res.PermissionIDs, Super: res.Super}, nil
		})
		if err == nil {
			return Resolution{
				Role:          r.snapshot.Role(cached.RoleID),
				PermissionIDs: cached.PermissionIDs,
				Super:         cached.Super,
			}, nil
		}
		if r.logger != nil {
			r.logger.Warn("resolution cache fetch, falling back to storage", slog.Any("error", err))
		}
	}
	return r.resolveFresh(ctx, userID)
}

func (r *Resolver) resolveFresh(ctx context.Context, userID string) (Resolution, error) {
	roleID := ""
	if row, found, err := r.store.UserRole(ctx, userID); err != nil {
		return Resolution{}, err
	} else if found {
		roleID = row.RoleID
	}
	// The super role bypasses catalog contents entirely; skip the override read.
	if r.snapshot.IsSuper(roleID) {
		return Resolution{Role: r.snapshot.Role(roleID), Super: true}, nil
	}
	overrides, err := r.store.Overrides(ctx, userID)
	if err != nil {
		return Resolution{}, err
	}
	return ComputeEffective(r.snapshot, roleID, overrides), nil
}

// HasPermission answers a point query for app/action/resource. The super
// role returns true for any query, even for capabilities absent from the
// catalog.
func (r *Resolver) HasPermission(ctx context.Context, userID string, app catalog.App, action, resource string) (bool, error) {
	res, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return res.Allows(r.snapshot, app, action, resource), nil
}

// Level returns the user's current hierarchy level.
func (r *Resolver) Level(ctx context.Context, userID string) (int, error) {
	res, err := r.Resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	return res.Role.HierarchyLevel, nil
}

// Invalidate drops the cached resolution for a user. Called after every
// role or override mutation.
func (r *Resolver) Invalidate(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, userID); err != nil && r.logger != nil {
		r.logger.Warn("invalidate resolution cache", slog.String("user_id", userID), slog.Any("error", err))
	}
}

// Allows checks the resolution against a point query.
func (res Resolution) Allows(snapshot *catalog.Snapshot, app catalog.App, action, resource string) bool {
	if res.Super {
		return true
	}
	for _, id := range res.PermissionIDs {
		perm, ok := snapshot.Permission(id)
		if !ok {
			continue
		}
		if perm.Covers(app, action, resource) {
			return true
		}
	}
	return false
}
