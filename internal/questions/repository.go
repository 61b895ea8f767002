package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/cache"
	"github.com/aura-answers/backend/pkg/database"
)

const (
	slugConstraint = "questions_slug_key"
	selectColumns  = `id, slug, title, text, referer, user_id, created_at`
)

// Repository handles question persistence.
type Repository struct {
	pool   *pgxpool.Pool
	bySlug *cache.LRU[string, models.Question]
}

// NewRepository creates a questions repository. slugCache may be nil.
// Questions are never edited, so cached rows never go stale.
func NewRepository(pool *pgxpool.Pool, slugCache *cache.LRU[string, models.Question]) *Repository {
	return &Repository{pool: pool, bySlug: slugCache}
}

// Create inserts q and fills its id and creation time. A taken slug
// returns models.ErrConflict.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (slug, title, text, referer, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, q.Slug, q.Title, q.Text, q.Referer, q.UserID).
		Scan(&q.ID, &q.CreatedAt)
	if database.IsUniqueViolation(err, slugConstraint) {
		return fmt.Errorf("slug %q: %w", q.Slug, models.ErrConflict)
	}
	return err
}

// GetBySlug returns a question by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Question, error) {
	if r.bySlug != nil {
		if q, ok := r.bySlug.Get(slug); ok {
			return &q, nil
		}
	}
	q, err := r.getOne(ctx, `SELECT `+selectColumns+` FROM questions WHERE slug = $1`, slug)
	if err != nil {
		return nil, err
	}
	if r.bySlug != nil {
		r.bySlug.Set(slug, *q)
	}
	return q, nil
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM questions WHERE id = $1`, id)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*models.Question, error) {
	var q models.Question
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&q.ID, &q.Slug, &q.Title, &q.Text, &q.Referer, &q.UserID, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns questions newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Question, error) {
	const query = `SELECT ` + selectColumns + ` FROM questions
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Search returns questions whose title or text contains query, newest first.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.Question, error) {
	const q = `SELECT ` + selectColumns + ` FROM questions
		WHERE title ILIKE $1 OR text ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]models.Question, error) {
	defer rows.Close()
	list := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Slug, &q.Title, &q.Text, &q.Referer, &q.UserID, &q.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
