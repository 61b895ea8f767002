//go:build integration

// Package testutil starts throwaway Postgres and Redis containers for
// integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/database"
)

// Postgres starts a PostgreSQL container, applies the migrations and returns a pool.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("answers"),
		postgres.WithUsername("answers"),
		postgres.WithPassword("answers"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.NewPostgresPool(ctx, dsn, database.PoolOptions{MaxConns: 10}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = database.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

// Redis starts a Redis container and returns a connected client.
func Redis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// CreateUser inserts a user with the given role and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool, role models.Role) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	email := fmt.Sprintf("%s@example.com", uuid.NewString())
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, password_hash, full_name, role) VALUES ($1, 'x', $1, $2) RETURNING id`,
		email, string(role)).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateQuestion inserts a question with the given slug.
func CreateQuestion(t *testing.T, pool *pgxpool.Pool, slug string, author uuid.UUID) *models.Question {
	t.Helper()
	q := &models.Question{Slug: slug, Title: "Title " + slug, Text: "Text " + slug, UserID: &author}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO questions (slug, title, text, user_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		q.Slug, q.Title, q.Text, q.UserID).Scan(&q.ID, &q.CreatedAt)
	require.NoError(t, err)
	return q
}
