//go:build integration

package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/internal/notifications"
	"github.com/aura-answers/backend/internal/testutil"
)

func TestRepository_Create(t *testing.T) {
	pool := testutil.Postgres(t)
	repo := notifications.NewRepository(pool)
	ctx := context.Background()

	recipient := testutil.CreateUser(t, pool, models.RoleMember)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("keeps event time", func(t *testing.T) {
		n := &models.Notification{UserID: recipient, Kind: models.NoticeQuestionNew, SubjectType: "question", SubjectID: uuid.New(), CreatedAt: at}
		require.NoError(t, repo.Create(ctx, n))
		assert.True(t, at.Equal(n.CreatedAt))
	})

	t.Run("missing recipient", func(t *testing.T) {
		n := &models.Notification{UserID: uuid.New(), Kind: models.NoticeQuestionNew, SubjectType: "question", SubjectID: uuid.New()}
		assert.ErrorIs(t, repo.Create(ctx, n), models.ErrNotFound)
	})

	t.Run("missing actor is stored as null", func(t *testing.T) {
		ghost := uuid.New()
		n := &models.Notification{UserID: recipient, ActorID: &ghost, Kind: models.NoticeQuestionUpdated, SubjectType: "question", SubjectID: uuid.New()}
		require.NoError(t, repo.Create(ctx, n))
		assert.Nil(t, n.ActorID)
	})
}
