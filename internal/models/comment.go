package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is an answer posted on a question.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	UserID     uuid.UUID `json:"user_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
