package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is satisfied by both pgxpool.Pool and pgx.Tx, so entries can be
// written standalone or inside the transaction of the mutation they trace.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder writes append-only records into audit_logs.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record persists the entry using the recorder's own pool.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: recorder not initialised")
	}
	return r.RecordTx(ctx, r.pool, entry)
}

// RecordTx persists the entry through the given executor. Pass the open
// transaction of a mutation so the record commits atomically with it.
func (r *Recorder) RecordTx(ctx context.Context, q Execer, entry Entry) error {
	if entry.Action == "" || entry.ResourceType == "" || entry.ResourceID == "" {
		return errors.New("audit: entry requires action/resource_type/resource_id")
	}
	oldJSON, err := json.Marshal(entry.OldData)
	if err != nil {
		return err
	}
	newJSON, err := json.Marshal(entry.NewData)
	if err != nil {
		return err
	}
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = q.Exec(ctx,
		`INSERT INTO audit_logs (id, action, resource_type, resource_id, old_data, new_data, performed_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		id, entry.Action, entry.ResourceType, entry.ResourceID, oldJSON, newJSON, entry.PerformedBy)
	return err
}
