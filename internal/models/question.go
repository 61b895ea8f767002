package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is a question submitted to the forum. Follows and votes
// reference it by id only.
type Question struct {
	ID        uuid.UUID  `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	Referer   *string    `json:"referer,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SubjectID returns the question id.
func (q *Question) SubjectID() uuid.UUID { return q.ID }

// SubjectTitle returns the question title.
func (q *Question) SubjectTitle() string { return q.Title }

// MaxTitleLength is the column width of questions.title.
const MaxTitleLength = 255
