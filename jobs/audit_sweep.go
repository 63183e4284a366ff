package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rhino-platform/rhino-access/internal/audit"
)

// AuditSweepJob handles TaskTypeAuditSweep tasks.
type AuditSweepJob struct {
	repo   *audit.Repository
	logger *slog.Logger
}

// NewAuditSweepJob constructs an AuditSweepJob.
func NewAuditSweepJob(repo *audit.Repository, logger *slog.Logger) *AuditSweepJob {
	return &AuditSweepJob{repo: repo, logger: logger}
}

// Handle prunes audit entries older than the configured retention window.
func (j *AuditSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		return asynq.SkipRetry
	}
	deleted, err := j.repo.DeleteOlderThan(ctx, payload.RetentionDays)
	if err != nil {
		j.logger.Error("audit sweep", slog.Any("error", err))
		return err
	}
	j.logger.Info("audit sweep complete",
		slog.Int("retention_days", payload.RetentionDays),
		slog.Int64("deleted", deleted))
	return nil
}
