package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/queue"
)

// Notice is one notification addressed to one recipient.
type Notice struct {
	Recipient   uuid.UUID
	Actor       *uuid.UUID
	Kind        models.NoticeKind
	SubjectType string
	SubjectID   uuid.UUID
	Title       string
	At          time.Time
}

// Dispatcher hands a notice to the delivery channel. It must not wait for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notice) error
}

// Enqueuer is the part of the job queue used by QueueDispatcher.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, payload queue.NotificationPayload) error
}

// QueueDispatcher pushes each notice onto the notification job queue; the
// worker process performs delivery.
type QueueDispatcher struct {
	queue Enqueuer
}

// NewQueueDispatcher creates a dispatcher backed by q.
func NewQueueDispatcher(q Enqueuer) *QueueDispatcher {
	return &QueueDispatcher{queue: q}
}

// Dispatch enqueues n.
func (d *QueueDispatcher) Dispatch(ctx context.Context, n Notice) error {
	return d.queue.EnqueueNotification(ctx, queue.NotificationPayload{
		RecipientID: n.Recipient,
		ActorID:     n.Actor,
		Kind:        string(n.Kind),
		SubjectType: n.SubjectType,
		SubjectID:   n.SubjectID,
		Title:       n.Title,
		At:          n.At,
	})
}
