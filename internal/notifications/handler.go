package notifications

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/internal/middleware"
	"github.com/aura-answers/backend/internal/models"
	"github.com/aura-answers/backend/pkg/response"
)

// Inbox is the notification storage used by Handler.
type Inbox interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Handler serves the signed-in user's inbox.
type Handler struct {
	inbox  Inbox
	logger *zap.Logger
}

// NewHandler creates a notifications handler.
func NewHandler(inbox Inbox, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{inbox: inbox, logger: logger}
}

// Register mounts the inbox routes behind auth.
func (h *Handler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	g := r.Group("/notifications", auth)
	g.GET("", h.List)
	g.POST("/read-all", h.ReadAll)
	g.POST("/:id/read", h.Read)
	g.DELETE("/:id", h.Delete)
}

// List handles GET /notifications.
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()
	list, err := h.inbox.ListByUser(ctx, userID)
	if err != nil {
		h.internal(c, err, "failed to list notifications")
		return
	}
	unread, err := h.inbox.UnreadCount(ctx, userID)
	if err != nil {
		h.internal(c, err, "failed to count notifications")
		return
	}
	response.OK(c, gin.H{"notifications": list, "unread": unread})
}

// Read handles POST /notifications/:id/read.
func (h *Handler) Read(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "notification not found")
			return
		}
		h.internal(c, err, "failed to mark notification read")
		return
	}
	response.OK(c, gin.H{"id": id, "is_read": true})
}

// ReadAll handles POST /notifications/read-all.
func (h *Handler) ReadAll(c *gin.Context) {
	n, err := h.inbox.MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.internal(c, err, "failed to mark notifications read")
		return
	}
	response.OK(c, gin.H{"updated": n})
}

// Delete handles DELETE /notifications/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	if err := h.inbox.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "notification not found")
			return
		}
		h.internal(c, err, "failed to delete notification")
		return
	}
	response.NoContent(c)
}

func (h *Handler) internal(c *gin.Context, err error, msg string) {
	h.logger.Error(msg, zap.Error(err))
	response.Internal(c, msg)
}
