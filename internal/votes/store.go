package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/database"
)

// PostgresStore keeps vote rows in the votes table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a votes store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Upsert records a user's vote. One per user per subject; last write wins.
func (s *PostgresStore) Upsert(ctx context.Context, subjectType string, subjectID, userID uuid.UUID, dir models.Direction) error {
	const q = `INSERT INTO votes (user_id, subject_type, subject_id, direction) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, subject_type, subject_id) DO UPDATE SET direction = EXCLUDED.direction, updated_at = NOW()`
	_, err := s.pool.Exec(ctx, q, userID, subjectType, subjectID, int16(dir))
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return err
}

// Score returns SUM(direction) for a subject, 0 when nobody voted.
func (s *PostgresStore) Score(ctx context.Context, subjectType string, subjectID uuid.UUID) (int, error) {
	const q = `SELECT COALESCE(SUM(direction), 0) FROM votes WHERE subject_type = $1 AND subject_id = $2`
	var n int64
	err := s.pool.QueryRow(ctx, q, subjectType, subjectID).Scan(&n)
	return int(n), err
}

// Direction returns the user's vote on a subject.
func (s *PostgresStore) Direction(ctx context.Context, subjectType string, subjectID, userID uuid.UUID) (models.Direction, bool, error) {
	const q = `SELECT direction FROM votes WHERE user_id = $1 AND subject_type = $2 AND subject_id = $3`
	var d int16
	err := s.pool.QueryRow(ctx, q, userID, subjectType, subjectID).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return models.Direction(d), true, nil
}

// Count returns the number of votes on a subject.
func (s *PostgresStore) Count(ctx context.Context, subjectType string, subjectID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM votes WHERE subject_type = $1 AND subject_id = $2`
	var n int
	err := s.pool.QueryRow(ctx, q, subjectType, subjectID).Scan(&n)
	return n, err
}
