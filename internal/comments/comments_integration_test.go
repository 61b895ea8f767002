//go:build integration

package comments_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-answers/backend/internal/auth"
	"github.com/aura-answers/backend/internal/comments"
	"github.com/aura-answers/backend/internal/follows"
	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/internal/notifications"
	"github.com/aura-answers/backend/internal/notify"
	"github.com/aura-answers/backend/internal/questions"
	"github.com/aura-answers/backend/internal/testutil"
	"github.com/aura-answers/backend/internal/worker"
	"github.com/aura-answers/backend/pkg/markdown"
	"github.com/aura-answers/backend/pkg/queue"
)

// A comment on a question followed by A and B queues exactly two
// notifications and makes the author C a follower.
func TestCommentPosted_NotifiesFollowers(t *testing.T) {
	pool := testutil.Postgres(t)
	rdb := testutil.Redis(t)
	ctx := context.Background()

	jobs := queue.NewQueue(rdb, queue.Options{RetryBackoff: 10 * time.Millisecond}, nil)
	f := follows.NewManager[*models.Question](follows.NewPostgresStore(pool), follows.Config{})
	trigger := notify.NewTrigger[*models.Question](f, auth.NewRepository(pool), notify.NewQueueDispatcher(jobs), nil)
	qs := questions.NewRepository(pool, nil)
	svc := comments.NewService(comments.NewRepository(pool), qs, trigger, markdown.NewRenderer(), nil)

	owner := testutil.CreateUser(t, pool, models.RoleMember)
	q := testutil.CreateQuestion(t, pool, "water", owner)
	a := testutil.CreateUser(t, pool, models.RoleMember)
	b := testutil.CreateUser(t, pool, models.RoleMember)
	c := testutil.CreateUser(t, pool, models.RoleMember)
	require.NoError(t, f.Subscribe(ctx, q, a))
	require.NoError(t, f.Subscribe(ctx, q, b))

	_, err := svc.Post(ctx, "water", c, "Try a rain barrel.")
	require.NoError(t, err)

	n, err := jobs.Len(ctx, queue.QueueNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	followers, err := f.Followers(ctx, q)
	require.NoError(t, err)
	got := make([]uuid.UUID, 0, len(followers))
	for _, u := range followers {
		got = append(got, u.ID)
	}
	assert.Equal(t, []uuid.UUID{a, b, c}, got)

	// Deliver the queued jobs into the inbox.
	inbox := notifications.NewRepository(pool)
	proc := worker.NewNotificationProcessor(inbox, nil, jobs, nil)
	for i := 0; i < 2; i++ {
		job, err := jobs.Dequeue(ctx, queue.QueueNotifications, time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)
		require.NoError(t, proc.Process(ctx, job))
	}

	for _, u := range []uuid.UUID{a, b} {
		list, err := inbox.ListByUser(ctx, u)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.NoticeQuestionUpdated, list[0].Kind)
		assert.Equal(t, q.ID, list[0].SubjectID)
		require.NotNil(t, list[0].ActorID)
		assert.Equal(t, c, *list[0].ActorID)
	}

	unread, err := inbox.UnreadCount(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
	updated, err := inbox.MarkAllRead(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
}

func TestQuestionCreated_NotifiesStaff(t *testing.T) {
	pool := testutil.Postgres(t)
	rdb := testutil.Redis(t)
	ctx := context.Background()

	jobs := queue.NewQueue(rdb, queue.Options{}, nil)
	users := auth.NewRepository(pool)
	f := follows.NewManager[*models.Question](follows.NewPostgresStore(pool), follows.Config{})
	trigger := notify.NewTrigger[*models.Question](f, users, notify.NewQueueDispatcher(jobs), nil)

	testutil.CreateUser(t, pool, models.RoleAdmin)
	testutil.CreateUser(t, pool, models.RoleStaff)
	member := testutil.CreateUser(t, pool, models.RoleMember)

	staff, err := users.ListStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	q := testutil.CreateQuestion(t, pool, "new", member)
	trigger.OnQuestionCreated(ctx, q, member)

	n, err := jobs.Len(ctx, queue.QueueNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
