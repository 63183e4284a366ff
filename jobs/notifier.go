package jobs

import (
	"context"
	"log/slog"
)

// Notifier satisfies the users service notification port by enqueueing
// background email tasks. Delivery failures retry inside the worker and
// never block the inviting request.
type Notifier struct {
	client *Client
	logger *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(client *Client, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, logger: logger}
}

// InviteCreated enqueues the invitation email for a new account.
func (n *Notifier) InviteCreated(ctx context.Context, email, userID string) error {
	if n.client == nil {
		n.logger.Warn("invite notification skipped, queue not configured", slog.String("user_id", userID))
		return nil
	}
	_, err := n.client.EnqueueInviteEmail(ctx, InviteEmailPayload{Email: email, UserID: userID})
	return err
}
