package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-answers/backend/internal/middleware"
	"github.com/aura-answers/backend/internal/models"
)

type memInbox struct {
	items []models.Notification
}

func (m *memInbox) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memInbox) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memInbox) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memInbox) Delete(_ context.Context, userID, id uuid.UUID) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memInbox) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, it := range m.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func setup(user uuid.UUID, inbox *memInbox) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) { c.Set(middleware.ContextUserID, user) }
	NewHandler(inbox, nil).Register(r, auth)
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandler_Inbox(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	mine1 := models.Notification{ID: uuid.New(), UserID: me, Kind: models.NoticeQuestionUpdated}
	mine2 := models.Notification{ID: uuid.New(), UserID: me, Kind: models.NoticeQuestionNew}
	theirs := models.Notification{ID: uuid.New(), UserID: other}
	inbox := &memInbox{items: []models.Notification{mine1, mine2, theirs}}
	r := setup(me, inbox)

	w := serve(r, http.MethodGet, "/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Notifications []models.Notification `json:"notifications"`
			Unread        int                   `json:"unread"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Notifications, 2)
	assert.Equal(t, 2, body.Data.Unread)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/notifications/"+mine1.ID.String()+"/read").Code)
	n, _ := inbox.UnreadCount(context.Background(), me)
	assert.Equal(t, 1, n)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/notifications/"+theirs.ID.String()+"/read").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/notifications/not-a-uuid/read").Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/notifications/read-all").Code)
	n, _ = inbox.UnreadCount(context.Background(), me)
	assert.Equal(t, 0, n)
	n, _ = inbox.UnreadCount(context.Background(), other)
	assert.Equal(t, 1, n, "other users untouched")

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/notifications/"+mine2.ID.String()).Code)
	assert.Len(t, inbox.items, 2)
}
