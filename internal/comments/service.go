// Package comments accepts answers posted on questions and tells the
// question's followers about them.
package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/models"
)

// Store is the comment persistence used by Service.
type Store interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.Comment, error)
}

// QuestionLookup resolves a question slug.
type QuestionLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Question, error)
}

// CommentNotifier is called after every stored comment.
type CommentNotifier interface {
	OnCommentPosted(ctx context.Context, q *models.Question, authorID uuid.UUID) error
}

// Renderer turns comment text into HTML.
type Renderer interface {
	Render(source string) string
}

// View is a comment with its rendered body.
type View struct {
	models.Comment
	HTML string `json:"html"`
}

// Service implements comment use cases.
type Service struct {
	store     Store
	questions QuestionLookup
	notifier  CommentNotifier
	renderer  Renderer
	logger    *zap.Logger
}

// NewService creates a comment service.
func NewService(store Store, questions QuestionLookup, notifier CommentNotifier, renderer Renderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, questions: questions, notifier: notifier, renderer: renderer, logger: logger}
}

// Post stores a comment by authorID on the question and runs the
// comment-posted trigger. Posting requires a signed-in author.
func (s *Service) Post(ctx context.Context, slug string, authorID uuid.UUID, text string) (*models.Comment, error) {
	if authorID == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", models.ErrInvalidInput)
	}
	q, err := s.questions.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{QuestionID: q.ID, UserID: authorID, Text: text}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	// The comment is stored at this point; trigger errors are only logged.
	if err := s.notifier.OnCommentPosted(ctx, q, authorID); err != nil {
		s.logger.Error("comment posted trigger failed",
			zap.String("comment_id", c.ID.String()),
			zap.String("question_id", q.ID.String()),
			zap.Error(err))
	}
	return c, nil
}

// List returns the comments on a question, oldest first.
func (s *Service) List(ctx context.Context, slug string) ([]View, error) {
	q, err := s.questions.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByQuestion(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]View, len(list))
	for i, c := range list {
		out[i] = View{Comment: c, HTML: s.renderer.Render(c.Text)}
	}
	return out, nil
}
