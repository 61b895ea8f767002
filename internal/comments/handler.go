package comments

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/middleware"
	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/response"
)

// PostRequest is the body for POST /questions/:slug/comments.
type PostRequest struct {
	Text string `json:"text" binding:"required"`
}

// Handler handles comment HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a comments handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the comment routes. auth must require a token.
func (h *Handler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	r.GET("/questions/:slug/comments", h.List)
	r.POST("/questions/:slug/comments", auth, h.Post)
}

// Post handles POST /questions/:slug/comments.
func (h *Handler) Post(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	comment, err := h.svc.Post(c.Request.Context(), c.Param("slug"), middleware.UserID(c), req.Text)
	if err != nil {
		h.fail(c, err, "failed to post comment")
		return
	}
	response.Created(c, comment)
}

// List handles GET /questions/:slug/comments.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err, "failed to list comments")
		return
	}
	response.OK(c, gin.H{"comments": list})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, "question not found")
	case errors.Is(err, models.ErrUnauthenticated):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error(msg, zap.Error(err))
		response.Internal(c, msg)
	}
}
