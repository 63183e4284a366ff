package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads audit records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Recent returns entries newest-first, optionally filtered by substring
// match on action, resource type, or resource id.
func (r *Repository) Recent(ctx context.Context, query string, limit int) ([]Entry, error) {
	const sql = `
		SELECT id, action, resource_type, resource_id, old_data, new_data, performed_by, created_at
		FROM audit_logs
		WHERE $1 = '' OR action ILIKE '%' || $1 || '%' OR resource_type ILIKE '%' || $1 || '%' OR resource_id ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var oldJSON, newJSON []byte
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.ResourceType, &entry.ResourceID, &oldJSON, &newJSON, &entry.PerformedBy, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(oldJSON) > 0 {
			_ = json.Unmarshal(oldJSON, &entry.OldData)
		}
		if len(newJSON) > 0 {
			_ = json.Unmarshal(newJSON, &entry.NewData)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteOlderThan removes entries past the retention horizon. Used only by
// the background sweep; there is no API surface for deleting audit rows.
func (r *Repository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < NOW() - ($1 || ' days')::interval`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
