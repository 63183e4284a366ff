package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/rbac"
)

// RepositoryPort defines data access methods for user accounts.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]Record, error)
	GetUser(ctx context.Context, userID string) (Record, error)
	CountUsers(ctx context.Context) (int, error)
	CreateUserWithRole(ctx context.Context, userID, email, roleID, invitedBy string) error
	DeleteUser(ctx context.Context, userID, performedBy string) error
}

// Notifier delivers out-of-band notifications for account events.
// Implemented by the jobs package on top of asynq.
type Notifier interface {
	InviteCreated(ctx context.Context, email, userID string) error
}

// LevelReader reports hierarchy levels; satisfied by rbac.Resolver.
type LevelReader interface {
	Level(ctx context.Context, userID string) (int, error)
	Invalidate(ctx context.Context, userID string)
}

// Service handles account management: listing, invitations, deletions.
type Service struct {
	repo     RepositoryPort
	snapshot *catalog.Snapshot
	levels   LevelReader
	guard    rbac.Guard
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, snapshot *catalog.Snapshot, levels LevelReader, guard rbac.Guard, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, snapshot: snapshot, levels: levels, guard: guard, notifier: notifier, logger: logger}
}

// List returns all accounts with their resolved roles.
func (s *Service) List(ctx context.Context) ([]UserWithRole, error) {
	records, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserWithRole, 0, len(records))
	for _, rec := range records {
		out = append(out, s.withRole(rec))
	}
	return out, nil
}

// Get returns the admin detail view for one account.
func (s *Service) Get(ctx context.Context, userID string) (Detail, error) {
	rec, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return Detail{}, err
	}
	withRole := s.withRole(rec)
	return Detail{
		UserWithRole:      withRole,
		RolePermissionIDs: s.snapshot.RolePermissionIDs(withRole.Role.ID),
	}, nil
}

// Count reports the number of accounts. Satisfies catalog.UserCounter.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}

// Invite creates a new account with its role in one atomic step and queues
// the invitation email. The actor may only hand out roles strictly below
// their own level.
func (s *Service) Invite(ctx context.Context, actorID, email, roleID string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !s.snapshot.HasRole(roleID) {
		return "", rbac.ErrUnknownRole
	}
	actorLevel, err := s.levels.Level(ctx, actorID)
	if err != nil {
		return "", err
	}
	role := s.snapshot.Role(roleID)
	if !s.guard.CanAssign(actorLevel, role.HierarchyLevel) {
		return "", rbac.ErrLevelNotBelow
	}

	userID := uuid.NewString()
	if err := s.repo.CreateUserWithRole(ctx, userID, email, roleID, actorID); err != nil {
		return "", err
	}
	if s.notifier != nil {
		if err := s.notifier.InviteCreated(ctx, email, userID); err != nil {
			// The account exists; email delivery retries in the worker.
			s.logger.Warn("queue invite email", slog.String("email", email), slog.Any("error", err))
		}
	}
	return userID, nil
}

// Delete removes an account after the hierarchy and floor checks. The
// guard runs before any write: a rejected deletion leaves no trace.
func (s *Service) Delete(ctx context.Context, actorID, targetUserID string) error {
	target, err := s.repo.GetUser(ctx, targetUserID)
	if err != nil {
		return err
	}
	actorLevel, err := s.levels.Level(ctx, actorID)
	if err != nil {
		return err
	}
	targetLevel := s.snapshot.Role(target.RoleID).HierarchyLevel
	if err := s.guard.CheckDelete(actorID, targetUserID, actorLevel, targetLevel); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, targetUserID, actorID); err != nil {
		return err
	}
	s.levels.Invalidate(ctx, targetUserID)
	return nil
}

func (s *Service) withRole(rec Record) UserWithRole {
	return UserWithRole{
		User:       rec.User,
		RoleID:     rec.RoleID,
		Role:       s.snapshot.Role(rec.RoleID),
		AssignedAt: rec.AssignedAt,
	}
}
