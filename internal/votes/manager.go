// Package votes records up/down votes on subjects and derives their score.
package votes

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-answers/backend/internal/models"
)

// Store persists vote rows. Upsert must insert or overwrite the single row
// for (user, subject) atomically.
type Store interface {
	Upsert(ctx context.Context, subjectType string, subjectID, userID uuid.UUID, dir models.Direction) error
	Score(ctx context.Context, subjectType string, subjectID uuid.UUID) (int, error)
	Direction(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) (models.Direction, bool, error)
	Count(ctx context.Context, subjectType string, subjectID uuid.UUID) (int, error)
}

// Config selects the subject kind a Manager operates on.
type Config struct {
	SubjectType string
}

// Manager records votes on subjects of type S.
type Manager[S models.Subject] struct {
	store       Store
	subjectType string
}

// NewManager creates a vote manager. An empty SubjectType defaults to "question".
func NewManager[S models.Subject](store Store, cfg Config) *Manager[S] {
	if cfg.SubjectType == "" {
		cfg.SubjectType = "question"
	}
	return &Manager[S]{store: store, subjectType: cfg.SubjectType}
}

// VoteUp sets the user's direction on s to +1.
func (m *Manager[S]) VoteUp(ctx context.Context, s S, userID uuid.UUID) error {
	return m.Vote(ctx, s, userID, models.Up)
}

// VoteDown sets the user's direction on s to -1.
func (m *Manager[S]) VoteDown(ctx context.Context, s S, userID uuid.UUID) error {
	return m.Vote(ctx, s, userID, models.Down)
}

// Vote sets the user's direction on s, replacing any earlier vote.
// Anonymous votes are ignored.
func (m *Manager[S]) Vote(ctx context.Context, s S, userID uuid.UUID, dir models.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidDirection, dir)
	}
	if userID == uuid.Nil {
		return nil
	}
	if err := m.store.Upsert(ctx, m.subjectType, s.SubjectID(), userID, dir); err != nil {
		return fmt.Errorf("vote %s: %w", dir, err)
	}
	return nil
}

// Score returns the sum of all vote directions on s.
func (m *Manager[S]) Score(ctx context.Context, s S) (int, error) {
	return m.store.Score(ctx, m.subjectType, s.SubjectID())
}

// UserVote returns the user's current direction on s, if any.
func (m *Manager[S]) UserVote(ctx context.Context, s S, userID uuid.UUID) (models.Direction, bool, error) {
	if userID == uuid.Nil {
		return 0, false, nil
	}
	return m.store.Direction(ctx, m.subjectType, s.SubjectID(), userID)
}

// Count returns the number of users who voted on s.
func (m *Manager[S]) Count(ctx context.Context, s S) (int, error) {
	return m.store.Count(ctx, m.subjectType, s.SubjectID())
}
