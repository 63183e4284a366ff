package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhino-platform/rhino-access/internal/audit"
	"github.com/rhino-platform/rhino-access/internal/platform/db"
)

// Store defines persistence for user role rows and permission overrides.
type Store interface {
	UserRole(ctx context.Context, userID string) (UserRole, bool, error)
	Overrides(ctx context.Context, userID string) ([]Override, error)
	AssignRole(ctx context.Context, userID, roleID, assignedBy string) error
	ReplaceOverrides(ctx context.Context, userID string, grants, revokes []string, grantedBy string) error
}

// PGStore implements Store on PostgreSQL. Every mutation commits its audit
// entry in the same transaction, so no state change lands unaudited and no
// audit row exists without its change.
type PGStore struct {
	pool     *pgxpool.Pool
	recorder *audit.Recorder
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool, recorder *audit.Recorder) *PGStore {
	return &PGStore{pool: pool, recorder: recorder}
}

// UserRole fetches the active role row for a user. found is false when the
// user has no explicit role (callers apply the fallback role).
func (s *PGStore) UserRole(ctx context.Context, userID string) (UserRole, bool, error) {
	var row UserRole
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, role_id, assigned_by, assigned_at FROM user_roles WHERE user_id = $1`,
		userID,
	).Scan(&row.UserID, &row.RoleID, &row.AssignedBy, &row.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRole{}, false, nil
		}
		return UserRole{}, false, err
	}
	return row, true, nil
}

// Overrides returns all override rows for a user.
func (s *PGStore) Overrides(ctx context.Context, userID string) ([]Override, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, permission_id, granted, granted_by FROM user_permissions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overrides []Override
	for rows.Next() {
		var o Override
		if err := rows.Scan(&o.UserID, &o.PermissionID, &o.Granted, &o.GrantedBy); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// AssignRole upserts the single role row for a user and audits the change
// with the pre-write role it observed.
func (s *PGStore) AssignRole(ctx context.Context, userID, roleID, assignedBy string) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var prevRoleID string
		err := tx.QueryRow(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&prevRoleID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id, assigned_by, assigned_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (user_id) DO UPDATE SET role_id = EXCLUDED.role_id, assigned_by = EXCLUDED.assigned_by, assigned_at = NOW()`,
			userID, roleID, assignedBy,
		)
		if err != nil {
			return err
		}
		entry := audit.Entry{
			Action:       audit.ActionUpdate,
			ResourceType: "user_roles",
			ResourceID:   userID,
			NewData:      map[string]any{"role_id": roleID},
			PerformedBy:  assignedBy,
		}
		if prevRoleID != "" {
			entry.OldData = map[string]any{"role_id": prevRoleID}
		}
		return s.recorder.RecordTx(ctx, tx, entry)
	})
}

// ReplaceOverrides deletes all override rows for the user and inserts the
// new grant and revoke rows in one transaction, so a concurrent resolve
// never observes the half-replaced state.
func (s *PGStore) ReplaceOverrides(ctx context.Context, userID string, grants, revokes []string, grantedBy string) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		prevRows, err := tx.Query(ctx, `SELECT permission_id, granted FROM user_permissions WHERE user_id = $1 FOR UPDATE`, userID)
		if err != nil {
			return err
		}
		var prevGrants, prevRevokes []string
		for prevRows.Next() {
			var permID string
			var granted bool
			if err := prevRows.Scan(&permID, &granted); err != nil {
				prevRows.Close()
				return err
			}
			if granted {
				prevGrants = append(prevGrants, permID)
			} else {
				prevRevokes = append(prevRevokes, permID)
			}
		}
		prevRows.Close()
		if err := prevRows.Err(); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, permID := range grants {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_permissions (user_id, permission_id, granted, granted_by) VALUES ($1, $2, TRUE, $3)`,
				userID, permID, grantedBy,
			); err != nil {
				return err
			}
		}
		for _, permID := range revokes {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_permissions (user_id, permission_id, granted, granted_by) VALUES ($1, $2, FALSE, $3)`,
				userID, permID, grantedBy,
			); err != nil {
				return err
			}
		}

		return s.recorder.RecordTx(ctx, tx, audit.Entry{
			Action:       audit.ActionUpdate,
			ResourceType: "user_permissions",
			ResourceID:   userID,
			OldData:      map[string]any{"grants": prevGrants, "revokes": prevRevokes},
			NewData:      map[string]any{"grants": grants, "revokes": revokes},
			PerformedBy:  grantedBy,
		})
	})
}

var _ Store = (*PGStore)(nil)
