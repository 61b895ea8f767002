// Package notify fans out notifications when questions are created or commented on.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/models"
)

// Followers is the part of the follow manager the trigger needs.
type Followers[S models.Subject] interface {
	Followers(ctx context.Context, s S) ([]models.UserPublic, error)
	Subscribe(ctx context.Context, s S, userID uuid.UUID) error
	SubjectType() string
}

// StaffDirectory lists the users who are told about new questions.
type StaffDirectory interface {
	ListStaff(ctx context.Context) ([]models.UserPublic, error)
}

// Trigger reacts to "comment posted" and "question created" events.
type Trigger[S models.Subject] struct {
	follows    Followers[S]
	staff      StaffDirectory
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTrigger creates a notification trigger.
func NewTrigger[S models.Subject](follows Followers[S], staff StaffDirectory, dispatcher Dispatcher, logger *zap.Logger) *Trigger[S] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger[S]{
		follows:    follows,
		staff:      staff,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// OnCommentPosted notifies every current follower of s, then subscribes the
// comment author so later comments reach them too. Dispatch failures are
// logged and dropped; failures to read followers or subscribe are returned.
func (t *Trigger[S]) OnCommentPosted(ctx context.Context, s S, authorID uuid.UUID) error {
	followers, err := t.follows.Followers(ctx, s)
	if err != nil {
		return fmt.Errorf("comment posted: %w", err)
	}

	var actor *uuid.UUID
	if authorID != uuid.Nil {
		actor = &authorID
	}
	t.fanOut(ctx, s, followers, models.NoticeQuestionUpdated, actor)

	if err := t.follows.Subscribe(ctx, s, authorID); err != nil {
		return fmt.Errorf("comment posted: %w", err)
	}
	return nil
}

// OnQuestionCreated notifies staff about a new subject. It never fails:
// every error is logged so that creation is not rolled back.
func (t *Trigger[S]) OnQuestionCreated(ctx context.Context, s S, authorID uuid.UUID) {
	staff, err := t.staff.ListStaff(ctx)
	if err != nil {
		t.logger.Error("notify staff: list staff failed",
			zap.String("subject_id", s.SubjectID().String()), zap.Error(err))
		return
	}
	var actor *uuid.UUID
	if authorID != uuid.Nil {
		actor = &authorID
	}
	t.fanOut(ctx, s, staff, models.NoticeQuestionNew, actor)
}

// fanOut dispatches one notice per recipient and returns how many were handed off.
func (t *Trigger[S]) fanOut(ctx context.Context, s S, recipients []models.UserPublic, kind models.NoticeKind, actor *uuid.UUID) int {
	sent := 0
	at := t.now()
	for _, u := range recipients {
		n := Notice{
			Recipient:   u.ID,
			Actor:       actor,
			Kind:        kind,
			SubjectType: t.follows.SubjectType(),
			SubjectID:   s.SubjectID(),
			Title:       s.SubjectTitle(),
			At:          at,
		}
		if err := t.dispatcher.Dispatch(ctx, n); err != nil {
			t.logger.Error("notification dispatch failed",
				zap.String("kind", string(kind)),
				zap.String("recipient_id", u.ID.String()),
				zap.String("subject_id", n.SubjectID.String()),
				zap.Error(err))
			continue
		}
		sent++
	}
	t.logger.Debug("notifications dispatched",
		zap.String("kind", string(kind)),
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", sent))
	return sent
}
