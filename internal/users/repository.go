package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhino-platform/rhino-access/internal/audit"
	"github.com/rhino-platform/rhino-access/internal/platform/db"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint breaches.
const pgUniqueViolation = "23505"

// Record holds the joined users + user_roles projection.
type Record struct {
	User
	RoleID     string
	AssignedAt time.Time
}

// Repository provides PostgreSQL backed persistence for user accounts.
// Mutations write their audit entries inside the same transaction.
type Repository struct {
	pool     *pgxpool.Pool
	recorder *audit.Recorder
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, recorder *audit.Recorder) *Repository {
	return &Repository{pool: pool, recorder: recorder}
}

// ListUsers returns all accounts with their role row when present.
func (r *Repository) ListUsers(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.is_active, COALESCE(u.invited_by, ''), u.created_at, u.updated_at,
		       COALESCE(ur.role_id, ''), COALESCE(ur.assigned_at, u.created_at)
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.IsActive, &rec.InvitedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.RoleID, &rec.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetUser fetches one account by id.
func (r *Repository) GetUser(ctx context.Context, userID string) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.is_active, COALESCE(u.invited_by, ''), u.created_at, u.updated_at,
		       COALESCE(ur.role_id, ''), COALESCE(ur.assigned_at, u.created_at)
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.id = $1`, userID,
	).Scan(&rec.ID, &rec.Email, &rec.IsActive, &rec.InvitedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.RoleID, &rec.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// CountUsers returns the number of accounts on the platform.
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CreateUserWithRole inserts the account and its role row atomically, so a
// concurrent resolve for the new id sees either the fallback role or the
// assigned role, never a half-written state.
func (r *Repository) CreateUserWithRole(ctx context.Context, userID, email, roleID, invitedBy string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, is_active, invited_by, created_at, updated_at) VALUES ($1, $2, TRUE, $3, NOW(), NOW())`,
			userID, email, invitedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("%w: email already registered", shared.ErrInvalidInput)
			}
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id, assigned_by, assigned_at) VALUES ($1, $2, $3, NOW())`,
			userID, roleID, invitedBy,
		); err != nil {
			return err
		}
		return r.recorder.RecordTx(ctx, tx, audit.Entry{
			Action:       audit.ActionInvite,
			ResourceType: "users",
			ResourceID:   userID,
			NewData:      map[string]any{"email": email, "role_id": roleID},
			PerformedBy:  invitedBy,
		})
	})
}

// DeleteUser removes the account. Dependent override and role rows are
// deleted as explicit, individually audited steps rather than by cascade,
// so the audit trail records the full cleanup.
func (r *Repository) DeleteUser(ctx context.Context, userID, performedBy string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var email string
		var roleID string
		err := tx.QueryRow(ctx, `
			SELECT u.email, COALESCE(ur.role_id, '')
			FROM users u LEFT JOIN user_roles ur ON ur.user_id = u.id
			WHERE u.id = $1 FOR UPDATE OF u`, userID,
		).Scan(&email, &roleID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		overridesTag, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		if overridesTag.RowsAffected() > 0 {
			if err := r.recorder.RecordTx(ctx, tx, audit.Entry{
				Action:       audit.ActionDelete,
				ResourceType: "user_permissions",
				ResourceID:   userID,
				OldData:      map[string]any{"rows": overridesTag.RowsAffected()},
				PerformedBy:  performedBy,
			}); err != nil {
				return err
			}
		}

		roleTag, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		if roleTag.RowsAffected() > 0 {
			if err := r.recorder.RecordTx(ctx, tx, audit.Entry{
				Action:       audit.ActionDelete,
				ResourceType: "user_roles",
				ResourceID:   userID,
				OldData:      map[string]any{"role_id": roleID},
				PerformedBy:  performedBy,
			}); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			return err
		}
		return r.recorder.RecordTx(ctx, tx, audit.Entry{
			Action:       audit.ActionDelete,
			ResourceType: "users",
			ResourceID:   userID,
			OldData:      map[string]any{"email": email, "role_id": roleID},
			PerformedBy:  performedBy,
		})
	})
}
