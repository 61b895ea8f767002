package comments

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/database"
)

// Repository handles comment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts c and fills its id and creation time.
func (r *Repository) Create(ctx context.Context, c *models.Comment) error {
	const q = `INSERT INTO comments (question_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, c.QuestionID, c.UserID, c.Text).Scan(&c.ID, &c.CreatedAt)
	if database.IsForeignKeyViolation(err) {
		return models.ErrNotFound
	}
	return err
}

// ListByQuestion returns the comments on a question, oldest first.
func (r *Repository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.Comment, error) {
	const q = `SELECT id, question_id, user_id, text, created_at
		FROM comments WHERE question_id = $1
		ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, q, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
