// Package notifications is the per-user inbox that delivered notices land in.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/database"
)

// ListLimit caps how many notifications List returns.
const ListLimit = 50

// Repository handles notification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const actorConstraint = "notifications_actor_id_fkey"

// Create inserts n and fills its id and creation time. A non-zero
// n.CreatedAt is kept as the event time. A recipient that no longer exists
// yields models.ErrNotFound; a vanished actor is stored as NULL.
func (r *Repository) Create(ctx context.Context, n *models.Notification) error {
	err := r.insert(ctx, n)
	if err != nil && database.IsForeignKeyViolation(err) && n.ActorID != nil &&
		database.ViolatedConstraint(err) == actorConstraint {
		n.ActorID = nil
		err = r.insert(ctx, n)
	}
	if err != nil && database.IsForeignKeyViolation(err) {
		return fmt.Errorf("recipient %s: %w", n.UserID, models.ErrNotFound)
	}
	return err
}

func (r *Repository) insert(ctx context.Context, n *models.Notification) error {
	const q = `INSERT INTO notifications (user_id, actor_id, kind, subject_type, subject_id, title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()))
		RETURNING id, is_read, created_at`
	var at *time.Time
	if !n.CreatedAt.IsZero() {
		at = &n.CreatedAt
	}
	return r.pool.QueryRow(ctx, q, n.UserID, n.ActorID, string(n.Kind), n.SubjectType, n.SubjectID, n.Title, at).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

// ListByUser returns the newest notifications for a user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	const q = `SELECT id, user_id, actor_id, kind, subject_type, subject_id, title, is_read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, userID, ListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.ActorID, &kind, &n.SubjectType, &n.SubjectID, &n.Title, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = models.NoticeKind(kind)
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead marks one of the user's notifications read.
func (r *Repository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read and returns how many changed.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes one of the user's notifications.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UnreadCount returns the number of unread notifications for a user.
func (r *Repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&n)
	return n, err
}
