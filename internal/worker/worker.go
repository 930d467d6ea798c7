// Package worker delivers queued credential emails.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/logging"
	"github.com/inkwell/backend/internal/mail"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/queue"
)

// JobQueue is the part of the queue the mailer consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// CredentialsMailer sends credential emails taken off the queue.
type CredentialsMailer struct {
	queue   JobQueue
	sender  mail.Sender
	logger  *zap.Logger
	backoff time.Duration
	poll    time.Duration
}

// NewCredentialsMailer creates a credentials email processor.
func NewCredentialsMailer(q JobQueue, sender mail.Sender, logger *zap.Logger) *CredentialsMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialsMailer{
		queue:   q,
		sender:  sender,
		logger:  logger,
		backoff: queue.RetryBackoff,
		poll:    queue.PollTimeout,
	}
}

// Process executes one credentials email job.
func (p *CredentialsMailer) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCredentialsEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CredentialsPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Recipient == "" {
		return fmt.Errorf("job %s has no recipient", job.ID)
	}

	msg := mail.CredentialsMessage(mail.Credentials{
		To:       payload.Recipient,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     models.Role(payload.Role),
	})
	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	p.logger.Info("credentials email sent", zap.String("job_id", job.ID), logging.Email("to", payload.Recipient))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (p *CredentialsMailer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("credentials mailer stopping")
			return
		default:
		}
		if !p.step(ctx) {
			p.wait(ctx)
		}
	}
}

// step handles at most one job and reports whether the loop may continue without backing off.
func (p *CredentialsMailer) step(ctx context.Context) bool {
	job, err := p.queue.Dequeue(ctx, p.poll)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.logger.Warn("dequeue error", zap.Error(err))
		return false
	}
	if job == nil {
		return true
	}

	p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.Int("attempt", job.Attempt))
	if err := p.Process(ctx, job); err != nil {
		p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
		if reErr := p.queue.Retry(ctx, job); reErr != nil {
			p.logger.Error("retry enqueue failed", zap.Error(reErr))
		}
		return false
	}
	return true
}

func (p *CredentialsMailer) wait(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
