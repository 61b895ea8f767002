// Package main runs the answers HTTP server with WebSocket push and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-answers/backend/config"
	"github.com/aura-answers/backend/internal/auth"
	"github.com/aura-answers/backend/internal/comments"
	"github.com/aura-answers/backend/internal/follows"
	"github.com/aura-answers/backend/internal/middleware"
	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/internal/notifications"
	"github.com/aura-answers/backend/internal/notify"
	"github.com/aura-answers/backend/internal/questions"
	"github.com/aura-answers/backend/internal/realtime"
	"github.com/aura-answers/backend/internal/votes"
	"github.com/aura-answers/backend/pkg/cache"
	"github.com/aura-answers/backend/pkg/database"
	"github.com/aura-answers/backend/pkg/markdown"
	"github.com/aura-answers/backend/pkg/queue"
	"github.com/aura-answers/backend/pkg/redis"
	"github.com/aura-answers/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	applied, err := database.Migrate(ctx, pool)
	if err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", zap.Strings("files", applied))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Follow and vote bookkeeping for questions
	followManager := follows.NewManager[*models.Question](follows.NewPostgresStore(pool),
		follows.Config{SubjectType: cfg.Answers.SubjectType})
	voteManager := votes.NewManager[*models.Question](votes.NewPostgresStore(pool),
		votes.Config{SubjectType: cfg.Answers.SubjectType})

	// Notifications leave the request path through the Redis queue
	jobQueue := queue.NewQueue(rdb.Client, queue.Options{
		MaxRetries:   cfg.Worker.MaxRetries,
		RetryBackoff: cfg.Worker.RetryBackoff,
	}, logger)
	trigger := notify.NewTrigger[*models.Question](followManager, authRepo, notify.NewQueueDispatcher(jobQueue), logger)

	renderer := markdown.NewRenderer()

	// Questions
	slugCache, err := cache.New[string, models.Question](cfg.Answers.CacheSize, cfg.Answers.CacheTTL)
	if err != nil {
		logger.Fatal("question cache", zap.Error(err))
	}
	questionRepo := questions.NewRepository(pool, slugCache)
	questionSvc, err := questions.NewService(questionRepo, followManager, voteManager, trigger, renderer, questions.Config{
		SlugPattern:           cfg.Answers.SlugPattern,
		AutoSubscribeOnUpvote: cfg.Answers.AutoSubscribeOnUpvote,
		SearchLimit:           cfg.Answers.SearchLimit,
	}, logger)
	if err != nil {
		logger.Fatal("questions", zap.Error(err))
	}
	questionHandler := questions.NewHandler(questionSvc, logger)

	// Comments
	commentSvc := comments.NewService(comments.NewRepository(pool), questionRepo, trigger, renderer, logger)
	commentHandler := comments.NewHandler(commentSvc, logger)

	// Inbox
	notificationHandler := notifications.NewHandler(notifications.NewRepository(pool), logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			response.ServiceUnavailable(c, "database unavailable")
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			response.ServiceUnavailable(c, "redis unavailable")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	requireAuth := middleware.JWT(jwtService)
	optionalAuth := middleware.OptionalJWT(jwtService)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Users (staff only)
	router.GET("/users", requireAuth, middleware.RequireStaff(), authHandler.List)

	questionHandler.Register(router, requireAuth, optionalAuth, middleware.RequireStaff())
	commentHandler.Register(router, requireAuth)
	notificationHandler.Register(router, requireAuth)

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, jwtService, cfg.Server.WSAllowedOrigin, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
