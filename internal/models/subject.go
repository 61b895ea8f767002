package models

import "github.com/google/uuid"

// Subject is anything users can follow or vote on.
type Subject interface {
	SubjectID() uuid.UUID
	SubjectTitle() string
}
