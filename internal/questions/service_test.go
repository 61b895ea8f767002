package questions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-answers/backend/internal/models"
)

type fakeStore struct {
	bySlug    map[string]*models.Question
	failNext  int // forced slug conflicts
	creates   int
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bySlug: map[string]*models.Question{}}
}

func (s *fakeStore) Create(_ context.Context, q *models.Question) error {
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	if s.failNext > 0 {
		s.failNext--
		return models.ErrConflict
	}
	if _, taken := s.bySlug[q.Slug]; taken {
		return models.ErrConflict
	}
	q.ID = uuid.New()
	cp := *q
	s.bySlug[q.Slug] = &cp
	return nil
}

func (s *fakeStore) GetBySlug(_ context.Context, slug string) (*models.Question, error) {
	q, ok := s.bySlug[slug]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *fakeStore) List(_ context.Context, limit, offset int) ([]models.Question, error) {
	var out []models.Question
	for _, q := range s.bySlug {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	if offset > len(out) {
		return []models.Question{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) Search(_ context.Context, query string, limit int) ([]models.Question, error) {
	out := []models.Question{}
	for _, q := range s.bySlug {
		if strings.Contains(q.Title, query) || strings.Contains(q.Text, query) {
			out = append(out, *q)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type key struct {
	subject, user uuid.UUID
}

type fakeFollows struct {
	rows         map[key]bool
	subscribeErr error
}

func (f *fakeFollows) Followers(_ context.Context, q *models.Question) ([]models.UserPublic, error) {
	var out []models.UserPublic
	for k := range f.rows {
		if k.subject == q.ID {
			out = append(out, models.UserPublic{ID: k.user})
		}
	}
	return out, nil
}

func (f *fakeFollows) Subscribe(_ context.Context, q *models.Question, userID uuid.UUID) error {
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	if userID != uuid.Nil {
		f.rows[key{q.ID, userID}] = true
	}
	return nil
}

func (f *fakeFollows) Unsubscribe(_ context.Context, q *models.Question, userID uuid.UUID) error {
	delete(f.rows, key{q.ID, userID})
	return nil
}

func (f *fakeFollows) IsFollowing(_ context.Context, q *models.Question, userID uuid.UUID) (bool, error) {
	return f.rows[key{q.ID, userID}], nil
}

func (f *fakeFollows) Count(_ context.Context, q *models.Question) (int, error) {
	n := 0
	for k := range f.rows {
		if k.subject == q.ID {
			n++
		}
	}
	return n, nil
}

type fakeVotes struct {
	rows map[key]models.Direction
}

func (v *fakeVotes) VoteUp(_ context.Context, q *models.Question, userID uuid.UUID) error {
	v.rows[key{q.ID, userID}] = models.Up
	return nil
}

func (v *fakeVotes) VoteDown(_ context.Context, q *models.Question, userID uuid.UUID) error {
	v.rows[key{q.ID, userID}] = models.Down
	return nil
}

func (v *fakeVotes) Score(_ context.Context, q *models.Question) (int, error) {
	total := 0
	for k, d := range v.rows {
		if k.subject == q.ID {
			total += int(d)
		}
	}
	return total, nil
}

func (v *fakeVotes) UserVote(_ context.Context, q *models.Question, userID uuid.UUID) (models.Direction, bool, error) {
	d, ok := v.rows[key{q.ID, userID}]
	return d, ok, nil
}

type recordingNotifier struct {
	created []uuid.UUID
}

func (n *recordingNotifier) OnQuestionCreated(_ context.Context, q *models.Question, _ uuid.UUID) {
	n.created = append(n.created, q.ID)
}

type wrapRenderer struct{}

func (wrapRenderer) Render(s string) string { return "<p>" + s + "</p>" }

type fixture struct {
	svc      *Service
	store    *fakeStore
	follows  *fakeFollows
	votes    *fakeVotes
	notifier *recordingNotifier
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		store:    newFakeStore(),
		follows:  &fakeFollows{rows: map[key]bool{}},
		votes:    &fakeVotes{rows: map[key]models.Direction{}},
		notifier: &recordingNotifier{},
	}
	svc, err := NewService(f.store, f.follows, f.votes, f.notifier, wrapRenderer{}, cfg, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seed(t *testing.T, title string) *models.Question {
	t.Helper()
	q, err := f.svc.Create(context.Background(), uuid.New(), CreateParams{Title: title, Text: "body of " + title})
	require.NoError(t, err)
	return q
}

func TestService_Create(t *testing.T) {
	f := newFixture(t, Config{})
	author := uuid.New()

	q, err := f.svc.Create(context.Background(), author, CreateParams{Title: "How to reduce water usage?", Text: "Ideas?"})
	require.NoError(t, err)
	assert.Equal(t, "how-to-reduce-water-usage", q.Slug)
	require.NotNil(t, q.UserID)
	assert.Equal(t, author, *q.UserID)
	assert.True(t, f.follows.rows[key{q.ID, author}], "author follows own question")
	assert.Equal(t, []uuid.UUID{q.ID}, f.notifier.created)
}

func TestService_Create_SlugCollision(t *testing.T) {
	f := newFixture(t, Config{})
	first := f.seed(t, "Same title")
	second := f.seed(t, "Same title")

	assert.Equal(t, "same-title", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "same-title-"))
}

func TestService_Create_SuffixMatchesPattern(t *testing.T) {
	f := newFixture(t, Config{SlugPattern: `^[a-z-]+$`})
	f.seed(t, "Same title")
	for i := 0; i < 20; i++ {
		q := f.seed(t, "Same title")
		assert.Regexp(t, `^same-title-[a-z]{6}$`, q.Slug)
	}
}

func TestService_Create_LongSuffixAfterShortOnesCollide(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.failNext = maxSlugAttempts

	q, err := f.svc.Create(context.Background(), uuid.New(), CreateParams{Title: "Busy", Text: "x"})
	require.NoError(t, err)
	assert.Regexp(t, `^busy-[a-z]{16}$`, q.Slug)
	assert.Equal(t, maxSlugAttempts+1, f.store.creates)
}

func TestService_Create_SlugsExhausted(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.failNext = 100

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateParams{Title: "Busy", Text: "x"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, maxSlugAttempts+1, f.store.creates)
	assert.Empty(t, f.notifier.created)
}

func TestService_Create_SubscribeFailureKeepsQuestion(t *testing.T) {
	f := newFixture(t, Config{})
	f.follows.subscribeErr = errors.New("db down")

	q, err := f.svc.Create(context.Background(), uuid.New(), CreateParams{Title: "Water", Text: "x"})
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Contains(t, f.store.bySlug, "water")
	assert.Equal(t, []uuid.UUID{q.ID}, f.notifier.created, "staff still notified")
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, uuid.New(), CreateParams{Title: "  ", Text: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Create(ctx, uuid.New(), CreateParams{Title: strings.Repeat("a", models.MaxTitleLength+1), Text: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	strict := newFixture(t, Config{SlugPattern: `^[0-9]+$`})
	_, err = strict.svc.Create(ctx, uuid.New(), CreateParams{Title: "letters", Text: "x"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, strict.notifier.created)
}

func TestService_Create_ReservedSlug(t *testing.T) {
	f := newFixture(t, Config{})
	q := f.seed(t, "Search")
	assert.Equal(t, "search-question", q.Slug)
}

func TestService_Create_StoreError(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.createErr = errors.New("db down")
	_, err := f.svc.Create(context.Background(), uuid.New(), CreateParams{Title: "t", Text: "x"})
	assert.Error(t, err)
	assert.Empty(t, f.notifier.created)
}

func TestNewService_BadPattern(t *testing.T) {
	_, err := NewService(newFakeStore(), nil, nil, nil, nil, Config{SlugPattern: "("}, nil)
	assert.Error(t, err)
}

func TestService_FollowUnfollow(t *testing.T) {
	f := newFixture(t, Config{})
	q := f.seed(t, "Water")
	user := uuid.New()
	ctx := context.Background()

	sum, err := f.svc.Subscribe(ctx, q.Slug, user)
	require.NoError(t, err)
	assert.True(t, sum.IsFollowing)
	assert.Equal(t, 2, sum.NbFollowers)

	sum, err = f.svc.Subscribe(ctx, q.Slug, user)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.NbFollowers, "subscribe is idempotent")

	sum, err = f.svc.Unsubscribe(ctx, q.Slug, user)
	require.NoError(t, err)
	assert.False(t, sum.IsFollowing)
	assert.Equal(t, 1, sum.NbFollowers)

	sum, err = f.svc.Unsubscribe(ctx, q.Slug, user)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.NbFollowers)
}

func TestService_Votes(t *testing.T) {
	f := newFixture(t, Config{})
	q := f.seed(t, "Votes")
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	sum, err := f.svc.VoteUp(ctx, q.Slug, a)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.VotesScore)
	assert.True(t, sum.IsVoted)
	assert.Equal(t, "up", sum.Vote)
	assert.False(t, sum.IsFollowing, "auto subscribe disabled")

	_, err = f.svc.VoteUp(ctx, q.Slug, b)
	require.NoError(t, err)

	sum, err = f.svc.VoteDown(ctx, q.Slug, a)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.VotesScore, "switching up to down moves score by -2")
	assert.Equal(t, "down", sum.Vote)
}

func TestService_VoteUp_AutoSubscribe(t *testing.T) {
	f := newFixture(t, Config{AutoSubscribeOnUpvote: true})
	q := f.seed(t, "Auto")
	user := uuid.New()

	sum, err := f.svc.VoteUp(context.Background(), q.Slug, user)
	require.NoError(t, err)
	assert.True(t, sum.IsFollowing)

	down := uuid.New()
	sum, err = f.svc.VoteDown(context.Background(), q.Slug, down)
	require.NoError(t, err)
	assert.False(t, sum.IsFollowing)
}

func TestService_AnonymousIsNoop(t *testing.T) {
	f := newFixture(t, Config{AutoSubscribeOnUpvote: true})
	q := f.seed(t, "Anon")
	ctx := context.Background()

	for _, act := range []func(context.Context, string, uuid.UUID) (*Summary, error){
		f.svc.Subscribe, f.svc.Unsubscribe, f.svc.VoteUp, f.svc.VoteDown,
	} {
		sum, err := act(ctx, q.Slug, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, q.Slug, sum.Slug)
		assert.Equal(t, 1, sum.NbFollowers)
		assert.Equal(t, 0, sum.VotesScore)
		assert.False(t, sum.IsFollowing)
		assert.False(t, sum.IsVoted)
	}
	assert.Empty(t, f.votes.rows)
}

func TestService_UnknownSlug(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.svc.VoteUp(context.Background(), "missing", uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.svc.Detail(context.Background(), "missing", uuid.Nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, f.votes.rows)
}

func TestService_DetailAndSearch(t *testing.T) {
	f := newFixture(t, Config{SearchLimit: 1})
	q := f.seed(t, "Rain barrels")
	f.seed(t, "Rain gardens")
	ctx := context.Background()

	d, err := f.svc.Detail(ctx, q.Slug, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>body of Rain barrels</p>", d.HTML)
	assert.Equal(t, q.ID, d.Summary.ID)

	res, err := f.svc.Search(ctx, "Rain", 0)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = f.svc.Search(ctx, "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}
