// Package worker delivers queued notifications outside the request path.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/queue"
)

// EventNotification is the live event pushed to a recipient's sockets.
const EventNotification = "notification"

const dequeueTimeout = 5 * time.Second

// Inbox stores delivered notifications.
type Inbox interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Publisher pushes live events to a user's connections.
type Publisher interface {
	PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload any) error
}

// JobQueue is the part of the job queue the processor consumes.
type JobQueue interface {
	Dequeue(ctx context.Context, key string, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
	RetryBackoff() time.Duration
}

// NotificationProcessor turns notification jobs into inbox rows and live events.
type NotificationProcessor struct {
	inbox     Inbox
	publisher Publisher
	queue     JobQueue
	logger    *zap.Logger
}

// NewNotificationProcessor creates a notification delivery processor.
// publisher may be nil to skip live push.
func NewNotificationProcessor(inbox Inbox, publisher Publisher, q JobQueue, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{inbox: inbox, publisher: publisher, queue: q, logger: logger}
}

// Process executes one notification job. A missing recipient is not retried.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	n := &models.Notification{
		UserID:      payload.RecipientID,
		ActorID:     payload.ActorID,
		Kind:        models.NoticeKind(payload.Kind),
		SubjectType: payload.SubjectType,
		SubjectID:   payload.SubjectID,
		Title:       payload.Title,
		CreatedAt:   payload.At,
	}
	if err := p.inbox.Create(ctx, n); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			p.logger.Warn("notification recipient gone, dropping job",
				zap.String("job_id", job.ID),
				zap.String("recipient_id", payload.RecipientID.String()))
			return nil
		}
		return fmt.Errorf("store notification: %w", err)
	}

	// The row is stored; a failed push must not cause a duplicate on retry.
	if p.publisher != nil {
		if err := p.publisher.PublishUserEvent(ctx, n.UserID, EventNotification, n); err != nil {
			p.logger.Warn("live push failed",
				zap.String("notification_id", n.ID.String()),
				zap.String("user_id", n.UserID.String()),
				zap.Error(err))
		}
	}

	p.logger.Debug("notification delivered",
		zap.String("job_id", job.ID),
		zap.String("kind", payload.Kind),
		zap.String("recipient_id", payload.RecipientID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	p.logger.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, queue.QueueNotifications, dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.String("job_id", job.ID), zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *NotificationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.queue.RetryBackoff())
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
