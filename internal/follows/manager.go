// Package follows tracks which users want to hear about new comments on a subject.
package follows

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-answers/backend/internal/models"
)

// Store persists follow rows. Insert must be atomic insert-if-absent.
type Store interface {
	Insert(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) error
	Delete(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) error
	Followers(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]models.UserPublic, error)
	Exists(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, subjectType string, subjectID uuid.UUID) (int, error)
}

// Config selects the subject kind a Manager operates on.
type Config struct {
	SubjectType string
}

// Manager subscribes and unsubscribes users to subjects of type S.
type Manager[S models.Subject] struct {
	store       Store
	subjectType string
}

// NewManager creates a follow manager. An empty SubjectType defaults to "question".
func NewManager[S models.Subject](store Store, cfg Config) *Manager[S] {
	if cfg.SubjectType == "" {
		cfg.SubjectType = "question"
	}
	return &Manager[S]{store: store, subjectType: cfg.SubjectType}
}

// SubjectType returns the subject kind recorded on follow rows.
func (m *Manager[S]) SubjectType() string { return m.subjectType }

// Followers returns all users currently subscribed to s.
func (m *Manager[S]) Followers(ctx context.Context, s S) ([]models.UserPublic, error) {
	users, err := m.store.Followers(ctx, m.subjectType, s.SubjectID())
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// Subscribe ensures exactly one follow row exists for (user, s).
// Calling it again is a no-op; so is calling it without a user.
func (m *Manager[S]) Subscribe(ctx context.Context, s S, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	if err := m.store.Insert(ctx, m.subjectType, s.SubjectID(), userID); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// Unsubscribe ensures no follow row exists for (user, s).
// Unsubscribing a non-follower is a no-op.
func (m *Manager[S]) Unsubscribe(ctx context.Context, s S, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	if err := m.store.Delete(ctx, m.subjectType, s.SubjectID(), userID); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// IsFollowing reports whether userID follows s. Anonymous users follow nothing.
func (m *Manager[S]) IsFollowing(ctx context.Context, s S, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	return m.store.Exists(ctx, m.subjectType, s.SubjectID(), userID)
}

// Count returns the number of followers of s.
func (m *Manager[S]) Count(ctx context.Context, s S) (int, error) {
	return m.store.Count(ctx, m.subjectType, s.SubjectID())
}
