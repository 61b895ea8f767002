package questions

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/middleware"
	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/response"
)

// Handler handles question HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a questions handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the question routes. auth must require a token, optional
// must accept anonymous callers and staff must follow auth.
func (h *Handler) Register(r gin.IRouter, auth, optional, staff gin.HandlerFunc) {
	g := r.Group("/questions")
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:slug", optional, h.Detail)
	g.POST("", auth, h.Create)
	g.POST("/:slug/follow", optional, h.Follow)
	g.POST("/:slug/unfollow", optional, h.Unfollow)
	g.POST("/:slug/upvote", optional, h.Upvote)
	g.POST("/:slug/downvote", optional, h.Downvote)
	g.GET("/:slug/followers", auth, staff, h.Followers)
}

// List handles GET /questions?limit=&offset=.
func (h *Handler) List(c *gin.Context) {
	page := response.ParsePage(c, 20, 100)
	list, err := h.svc.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.fail(c, err, "failed to list questions")
		return
	}
	response.Paged(c, gin.H{"questions": list}, page, len(list))
}

// Search handles GET /questions/search?q=&limit=.
func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	query := c.Query("q")
	list, err := h.svc.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.fail(c, err, "failed to search questions")
		return
	}
	response.OK(c, gin.H{"query": query, "results": list})
}

// Detail handles GET /questions/:slug.
func (h *Handler) Detail(c *gin.Context) {
	d, err := h.svc.Detail(c.Request.Context(), c.Param("slug"), middleware.UserID(c))
	if err != nil {
		h.fail(c, err, "failed to load question")
		return
	}
	response.OK(c, d)
}

// Create handles POST /questions.
func (h *Handler) Create(c *gin.Context) {
	var req CreateParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Referer == nil {
		if ref := c.Query("referer"); ref != "" {
			req.Referer = &ref
		}
	}
	q, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err, "failed to create question")
		return
	}
	response.Created(c, q)
}

// Follow handles POST /questions/:slug/follow.
func (h *Handler) Follow(c *gin.Context) {
	h.summaryAction(c, h.svc.Subscribe, "failed to follow question")
}

// Unfollow handles POST /questions/:slug/unfollow.
func (h *Handler) Unfollow(c *gin.Context) {
	h.summaryAction(c, h.svc.Unsubscribe, "failed to unfollow question")
}

// Upvote handles POST /questions/:slug/upvote.
func (h *Handler) Upvote(c *gin.Context) {
	h.summaryAction(c, h.svc.VoteUp, "failed to upvote question")
}

// Downvote handles POST /questions/:slug/downvote.
func (h *Handler) Downvote(c *gin.Context) {
	h.summaryAction(c, h.svc.VoteDown, "failed to downvote question")
}

// Followers handles GET /questions/:slug/followers.
func (h *Handler) Followers(c *gin.Context) {
	list, err := h.svc.Followers(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err, "failed to list followers")
		return
	}
	response.OK(c, gin.H{"followers": list})
}

// summaryAction runs a follow or vote action. Anonymous callers get the
// summary back without any change being made.
func (h *Handler) summaryAction(c *gin.Context, action func(ctx context.Context, slug string, userID uuid.UUID) (*Summary, error), msg string) {
	sum, err := action(c.Request.Context(), c.Param("slug"), middleware.UserID(c))
	if err != nil {
		h.fail(c, err, msg)
		return
	}
	response.Created(c, sum)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, "question not found")
	case errors.Is(err, models.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, models.ErrConflict):
		response.Conflict(c, "could not allocate a unique slug, try again")
	default:
		h.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
		response.Internal(c, msg)
	}
}
