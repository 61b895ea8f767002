// Package questions serves the question pages of the forum: creation,
// listing and search, and the follow and vote actions on one question.
package questions

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/models"
)

// maxSlugAttempts is the number of short suffixes tried after the bare
// slug is taken. One more attempt with a long suffix follows.
const maxSlugAttempts = 5

// Store is the question persistence used by Service.
type Store interface {
	Create(ctx context.Context, q *models.Question) error
	GetBySlug(ctx context.Context, slug string) (*models.Question, error)
	List(ctx context.Context, limit, offset int) ([]models.Question, error)
	Search(ctx context.Context, query string, limit int) ([]models.Question, error)
}

// FollowManager is satisfied by *follows.Manager[*models.Question].
type FollowManager interface {
	Followers(ctx context.Context, q *models.Question) ([]models.UserPublic, error)
	Subscribe(ctx context.Context, q *models.Question, userID uuid.UUID) error
	Unsubscribe(ctx context.Context, q *models.Question, userID uuid.UUID) error
	IsFollowing(ctx context.Context, q *models.Question, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, q *models.Question) (int, error)
}

// VoteManager is satisfied by *votes.Manager[*models.Question].
type VoteManager interface {
	VoteUp(ctx context.Context, q *models.Question, userID uuid.UUID) error
	VoteDown(ctx context.Context, q *models.Question, userID uuid.UUID) error
	Score(ctx context.Context, q *models.Question) (int, error)
	UserVote(ctx context.Context, q *models.Question, userID uuid.UUID) (models.Direction, bool, error)
}

// CreationNotifier is told about every new question.
type CreationNotifier interface {
	OnQuestionCreated(ctx context.Context, q *models.Question, authorID uuid.UUID)
}

// Renderer turns question text into HTML.
type Renderer interface {
	Render(source string) string
}

// Config holds construction-time settings.
type Config struct {
	SlugPattern           string
	AutoSubscribeOnUpvote bool
	SearchLimit           int
}

// CreateParams are the fields a user submits for a new question.
type CreateParams struct {
	Title   string  `json:"title" binding:"required"`
	Text    string  `json:"text" binding:"required"`
	Referer *string `json:"referer"`
}

// Summary is the compact view returned by follow and vote actions.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	NbFollowers int       `json:"nb_followers"`
	VotesScore  int       `json:"votes_score"`
	IsFollowing bool      `json:"is_following"`
	IsVoted     bool      `json:"is_voted"`
	Vote        string    `json:"vote,omitempty"`
}

// Detail is a question with its summary and rendered body.
type Detail struct {
	Question models.Question `json:"question"`
	Summary  Summary         `json:"summary"`
	HTML     string          `json:"html"`
}

// Service implements question use cases.
type Service struct {
	store    Store
	follows  FollowManager
	votes    VoteManager
	notifier CreationNotifier
	renderer Renderer
	cfg      Config
	slugRe   *regexp.Regexp
	logger   *zap.Logger
}

// NewService creates a question service.
func NewService(store Store, follows FollowManager, votes VoteManager, notifier CreationNotifier,
	renderer Renderer, cfg Config, logger *zap.Logger) (*Service, error) {
	re, err := compileSlugPattern(cfg.SlugPattern)
	if err != nil {
		return nil, err
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		follows:  follows,
		votes:    votes,
		notifier: notifier,
		renderer: renderer,
		cfg:      cfg,
		slugRe:   re,
		logger:   logger,
	}, nil
}

// Create stores a new question, subscribes its author and notifies staff.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, p CreateParams) (*models.Question, error) {
	title := strings.TrimSpace(p.Title)
	text := strings.TrimSpace(p.Text)
	if title == "" || text == "" {
		return nil, fmt.Errorf("%w: title and text are required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return nil, fmt.Errorf("%w: title longer than %d characters", models.ErrInvalidInput, models.MaxTitleLength)
	}

	base := slugFor(title)
	if !s.slugRe.MatchString(base) {
		return nil, fmt.Errorf("%w: slug %q does not match %s", models.ErrInvalidInput, base, s.slugRe)
	}

	q := &models.Question{
		Title:   title,
		Text:    text,
		Referer: p.Referer,
	}
	if authorID != uuid.Nil {
		q.UserID = &authorID
	}

	q.Slug = base
	var err error
	for attempt := 0; ; attempt++ {
		err = s.store.Create(ctx, q)
		if !errors.Is(err, models.ErrConflict) || attempt == maxSlugAttempts {
			break
		}
		s.logger.Debug("slug taken, retrying", zap.String("slug", q.Slug))
		n := shortSuffixLen
		if attempt == maxSlugAttempts-1 {
			n = longSuffixLen
		}
		q.Slug = withSuffix(base, n)
		if !s.slugRe.MatchString(q.Slug) {
			return nil, fmt.Errorf("%w: slug %q does not match %s", models.ErrInvalidInput, q.Slug, s.slugRe)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	// The row is stored; from here on failures are logged, not returned.
	if err := s.follows.Subscribe(ctx, q, authorID); err != nil {
		s.logger.Error("subscribe author failed",
			zap.String("question_id", q.ID.String()),
			zap.String("user_id", authorID.String()),
			zap.Error(err))
	}
	s.notifier.OnQuestionCreated(ctx, q, authorID)

	s.logger.Info("question created",
		zap.String("question_id", q.ID.String()),
		zap.String("slug", q.Slug))
	return q, nil
}

// Get returns a question by slug.
func (s *Service) Get(ctx context.Context, slug string) (*models.Question, error) {
	return s.store.GetBySlug(ctx, slug)
}

const maxSearchLimit = 50

// List returns a page of questions, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Question, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

// Search returns questions matching query. An empty query returns no results.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Question, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Question{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.store.Search(ctx, query, limit)
}

// Subscribe makes userID a follower of the question.
func (s *Service) Subscribe(ctx context.Context, slug string, userID uuid.UUID) (*Summary, error) {
	return s.act(ctx, slug, userID, func(q *models.Question) error {
		return s.follows.Subscribe(ctx, q, userID)
	})
}

// Unsubscribe removes userID from the question's followers.
func (s *Service) Unsubscribe(ctx context.Context, slug string, userID uuid.UUID) (*Summary, error) {
	return s.act(ctx, slug, userID, func(q *models.Question) error {
		return s.follows.Unsubscribe(ctx, q, userID)
	})
}

// VoteUp records an up vote, subscribing the voter when configured to.
func (s *Service) VoteUp(ctx context.Context, slug string, userID uuid.UUID) (*Summary, error) {
	return s.act(ctx, slug, userID, func(q *models.Question) error {
		if s.cfg.AutoSubscribeOnUpvote {
			if err := s.follows.Subscribe(ctx, q, userID); err != nil {
				return err
			}
		}
		return s.votes.VoteUp(ctx, q, userID)
	})
}

// VoteDown records a down vote.
func (s *Service) VoteDown(ctx context.Context, slug string, userID uuid.UUID) (*Summary, error) {
	return s.act(ctx, slug, userID, func(q *models.Question) error {
		return s.votes.VoteDown(ctx, q, userID)
	})
}

// act resolves the question, applies fn for signed-in users and returns the summary.
func (s *Service) act(ctx context.Context, slug string, userID uuid.UUID, fn func(q *models.Question) error) (*Summary, error) {
	q, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		if err := fn(q); err != nil {
			return nil, err
		}
	}
	return s.Summary(ctx, q, userID)
}

// Summary builds the summary of q as seen by userID.
func (s *Service) Summary(ctx context.Context, q *models.Question, userID uuid.UUID) (*Summary, error) {
	nb, err := s.follows.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	score, err := s.votes.Score(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	sum := &Summary{
		ID:          q.ID,
		Slug:        q.Slug,
		Title:       q.Title,
		NbFollowers: nb,
		VotesScore:  score,
	}
	if userID == uuid.Nil {
		return sum, nil
	}
	if sum.IsFollowing, err = s.follows.IsFollowing(ctx, q, userID); err != nil {
		return nil, fmt.Errorf("is following: %w", err)
	}
	dir, voted, err := s.votes.UserVote(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("user vote: %w", err)
	}
	if voted {
		sum.IsVoted = true
		sum.Vote = dir.String()
	}
	return sum, nil
}

// Detail returns the question, its summary and the rendered body.
func (s *Service) Detail(ctx context.Context, slug string, userID uuid.UUID) (*Detail, error) {
	q, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	sum, err := s.Summary(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return &Detail{Question: *q, Summary: *sum, HTML: s.renderer.Render(q.Text)}, nil
}

// Followers lists the followers of a question.
func (s *Service) Followers(ctx context.Context, slug string) ([]models.UserPublic, error) {
	q, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, q)
}
