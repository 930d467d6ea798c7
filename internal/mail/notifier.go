package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/logging"
	"github.com/inkwell/backend/pkg/queue"
)

// DirectNotifier renders and sends credentials synchronously.
type DirectNotifier struct {
	sender Sender
}

// NewDirectNotifier creates a notifier sending through sender.
func NewDirectNotifier(sender Sender) *DirectNotifier {
	return &DirectNotifier{sender: sender}
}

func (n *DirectNotifier) SendCredentials(ctx context.Context, c Credentials) error {
	return n.sender.Send(ctx, CredentialsMessage(c))
}

// Enqueuer is the job queue surface the queued notifier needs.
type Enqueuer interface {
	EnqueueCredentials(ctx context.Context, payload queue.CredentialsPayload) error
}

// QueuedNotifier hands credentials to the background worker.
type QueuedNotifier struct {
	queue Enqueuer
}

// NewQueuedNotifier creates a notifier backed by the job queue.
func NewQueuedNotifier(q Enqueuer) *QueuedNotifier {
	return &QueuedNotifier{queue: q}
}

func (n *QueuedNotifier) SendCredentials(ctx context.Context, c Credentials) error {
	err := n.queue.EnqueueCredentials(ctx, queue.CredentialsPayload{
		Recipient: c.To,
		Email:     c.Email,
		Password:  c.Password,
		Role:      string(c.Role),
	})
	if err != nil {
		return fmt.Errorf("enqueue credentials email: %w", err)
	}
	return nil
}

// LogNotifier only records that credentials would have been sent. Used when no
// mail provider is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendCredentials(_ context.Context, c Credentials) error {
	n.logger.Info("credentials email skipped, no mail provider", logging.Email("to", c.To), zap.String("role", string(c.Role)))
	return nil
}
