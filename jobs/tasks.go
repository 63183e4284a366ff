package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInviteEmail delivers the invitation email for a freshly
	// created account.
	TaskTypeInviteEmail = "mail:invite"
	// TaskTypeAuditSweep prunes audit log entries past the retention
	// horizon.
	TaskTypeAuditSweep = "audit:sweep"
)

// InviteEmailPayload describes the invitation email to send.
type InviteEmailPayload struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// NewInviteEmailTask constructs an Asynq task for an invitation email.
func NewInviteEmailTask(payload InviteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInviteEmail, data), nil
}

// AuditSweepPayload configures one retention sweep run.
type AuditSweepPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditSweepTask constructs an Asynq task for an audit retention sweep.
func NewAuditSweepTask(retentionDays int) (*asynq.Task, error) {
	data, err := json.Marshal(AuditSweepPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditSweep, data), nil
}
