package follows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/database"
)

// PostgresStore keeps follow rows in the follows table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a follows store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert adds a follow row unless one already exists. The primary key on
// (user_id, subject_type, subject_id) makes concurrent inserts collapse to one row.
func (s *PostgresStore) Insert(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) error {
	const q = `INSERT INTO follows (user_id, subject_type, subject_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, subject_type, subject_id) DO NOTHING`
	_, err := s.pool.Exec(ctx, q, userID, subjectType, subjectID)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return err
}

// Delete removes the follow row if present.
func (s *PostgresStore) Delete(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) error {
	const q = `DELETE FROM follows WHERE user_id = $1 AND subject_type = $2 AND subject_id = $3`
	_, err := s.pool.Exec(ctx, q, userID, subjectType, subjectID)
	return err
}

// Followers returns followers of a subject, oldest follow first.
func (s *PostgresStore) Followers(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT u.id, u.email, u.full_name, u.role, u.created_at
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.subject_type = $1 AND f.subject_id = $2
		ORDER BY f.created_at, u.id`
	rows, err := s.pool.Query(ctx, q, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		list = append(list, u)
	}
	return list, rows.Err()
}

// Exists reports whether the follow row is present.
func (s *PostgresStore) Exists(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND subject_type = $2 AND subject_id = $3)`
	var ok bool
	err := s.pool.QueryRow(ctx, q, userID, subjectType, subjectID).Scan(&ok)
	return ok, err
}

// Count returns the number of followers of a subject.
func (s *PostgresStore) Count(ctx context.Context, subjectType string, subjectID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM follows WHERE subject_type = $1 AND subject_id = $2`
	var n int
	err := s.pool.QueryRow(ctx, q, subjectType, subjectID).Scan(&n)
	return n, err
}
