package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// InviteEmailJob handles TaskTypeInviteEmail tasks.
type InviteEmailJob struct {
	mailer  *Mailer
	siteURL string
	logger  *slog.Logger
}

// NewInviteEmailJob constructs an InviteEmailJob.
func NewInviteEmailJob(mailer *Mailer, siteURL string, logger *slog.Logger) *InviteEmailJob {
	return &InviteEmailJob{mailer: mailer, siteURL: siteURL, logger: logger}
}

// Handle sends the invitation email for a new account.
func (j *InviteEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload InviteEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	body := fmt.Sprintf(
		"You have been invited to the Rhino platform.\n\nSet your password and sign in at %s/auth/accept-invite\n",
		j.siteURL,
	)
	if err := j.mailer.Send(payload.Email, "You're invited to Rhino", body); err != nil {
		j.logger.Error("send invite email", slog.String("email", payload.Email), slog.Any("error", err))
		return err
	}
	j.logger.Info("invite email sent", slog.String("user_id", payload.UserID))
	return nil
}
