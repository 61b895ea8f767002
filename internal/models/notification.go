package models

import (
	"time"

	"github.com/google/uuid"
)

// NoticeKind identifies why a notification was sent.
type NoticeKind string

const (
	// NoticeQuestionNew is sent to staff when a question is submitted.
	NoticeQuestionNew NoticeKind = "question_new"
	// NoticeQuestionUpdated is sent to followers when a comment is posted.
	NoticeQuestionUpdated NoticeKind = "question_updated"
)

// Notification is a delivered inbox entry.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	Kind        NoticeKind `json:"kind"`
	SubjectType string     `json:"subject_type"`
	SubjectID   uuid.UUID  `json:"subject_id"`
	Title       string     `json:"title"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}
