package votes

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-answers/backend/internal/models"
)

type voteKey struct {
	user        uuid.UUID
	subjectType string
	subject     uuid.UUID
}

// memStore mimics the upsert on the votes primary key.
type memStore struct {
	mu   sync.Mutex
	rows map[voteKey]models.Direction
}

func newMemStore() *memStore { return &memStore{rows: map[voteKey]models.Direction{}} }

func (m *memStore) Upsert(_ context.Context, subjectType string, subjectID, userID uuid.UUID, dir models.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[voteKey{userID, subjectType, subjectID}] = dir
	return nil
}

func (m *memStore) Score(_ context.Context, subjectType string, subjectID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for k, d := range m.rows {
		if k.subjectType == subjectType && k.subject == subjectID {
			total += int(d)
		}
	}
	return total, nil
}

func (m *memStore) Direction(_ context.Context, subjectType string, subjectID, userID uuid.UUID) (models.Direction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[voteKey{userID, subjectType, subjectID}]
	return d, ok, nil
}

func (m *memStore) Count(_ context.Context, subjectType string, subjectID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.rows {
		if k.subjectType == subjectType && k.subject == subjectID {
			n++
		}
	}
	return n, nil
}

func score(t *testing.T, m *Manager[*models.Question], q *models.Question) int {
	t.Helper()
	s, err := m.Score(context.Background(), q)
	require.NoError(t, err)
	return s
}

func TestManager_SwitchDirection(t *testing.T) {
	m := NewManager[*models.Question](newMemStore(), Config{})
	q := &models.Question{ID: uuid.New()}
	user := uuid.New()
	ctx := context.Background()

	require.NoError(t, m.VoteUp(ctx, q, user))
	assert.Equal(t, 1, score(t, m, q))

	require.NoError(t, m.VoteDown(ctx, q, user))
	assert.Equal(t, -1, score(t, m, q), "up to down moves the score by exactly -2")

	n, err := m.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dir, ok, err := m.UserVote(ctx, q, user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.Down, dir)
}

func TestManager_ScoreIsSum(t *testing.T) {
	m := NewManager[*models.Question](newMemStore(), Config{})
	q := &models.Question{ID: uuid.New()}
	ctx := context.Background()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, m.VoteUp(ctx, q, a))
	require.NoError(t, m.VoteDown(ctx, q, b))
	assert.Equal(t, 0, score(t, m, q))
	require.NoError(t, m.VoteUp(ctx, q, c))
	require.NoError(t, m.VoteUp(ctx, q, c))
	assert.Equal(t, 1, score(t, m, q))
}

func TestManager_AnonymousIgnored(t *testing.T) {
	store := newMemStore()
	m := NewManager[*models.Question](store, Config{})
	q := &models.Question{ID: uuid.New()}

	require.NoError(t, m.VoteUp(context.Background(), q, uuid.Nil))
	assert.Empty(t, store.rows)

	_, ok, err := m.UserVote(context.Background(), q, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_InvalidDirection(t *testing.T) {
	m := NewManager[*models.Question](newMemStore(), Config{})
	err := m.Vote(context.Background(), &models.Question{ID: uuid.New()}, uuid.New(), 2)
	assert.ErrorIs(t, err, models.ErrInvalidDirection)
}

func TestManager_ConcurrentLastWriteWins(t *testing.T) {
	m := NewManager[*models.Question](newMemStore(), Config{})
	q := &models.Question{ID: uuid.New()}
	user := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		dir := models.Up
		if i%2 == 1 {
			dir = models.Down
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Vote(context.Background(), q, user, dir))
		}()
	}
	wg.Wait()

	n, err := m.Count(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	s := score(t, m, q)
	assert.True(t, s == 1 || s == -1)
}

func TestDirection(t *testing.T) {
	assert.True(t, models.Up.Valid())
	assert.True(t, models.Down.Valid())
	assert.False(t, models.Direction(0).Valid())
	assert.Equal(t, "up", models.Up.String())
	assert.Equal(t, "down", models.Down.String())
}
