// Package realtime pushes notifications to connected users over WebSocket.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// UserSubscriber subscribes to a user's event channel.
type UserSubscriber interface {
	SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains user_id -> set of connections. A user may have several tabs
// open; every connection of the user receives each event.
type Hub struct {
	users  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func()
	mu     sync.RWMutex
	logger *zap.Logger
	sub    UserSubscriber
}

// NewHub creates a new WebSocket hub. sub may be nil for a single instance.
func NewHub(logger *zap.Logger, sub UserSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		sub:    sub,
	}
}

// Register adds a client. The first connection of a user starts the
// Redis subscription for that user; the subscribe round trip runs
// without holding the hub lock.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	first := h.users[c.UserID] == nil
	if first {
		h.users[c.UserID] = make(map[string]*Client)
	}
	h.users[c.UserID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))

	if first && h.sub != nil {
		h.subscribe(c.UserID)
	}
}

func (h *Hub) subscribe(userID uuid.UUID) {
	cancel, err := h.sub.SubscribeUser(userID, func(event string, payload []byte) {
		h.SendToUser(userID, event, json.RawMessage(payload))
	})
	if err != nil {
		h.logger.Warn("subscribe user channel failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	h.mu.Lock()
	_, connected := h.users[userID]
	_, installed := h.subs[userID]
	keep := connected && !installed
	if keep {
		h.subs[userID] = cancel
	}
	h.mu.Unlock()

	// The user left while subscribing, or a newer connection already subscribed.
	if !keep {
		cancel()
	}
}

// Unregister removes a client. The last connection of a user cancels the subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.users[c.UserID]
	if !ok {
		return
	}
	if _, ok := m[c.ID]; !ok {
		return
	}
	delete(m, c.ID)
	close(c.send)
	if len(m) == 0 {
		delete(h.users, c.UserID)
		if cancel, ok := h.subs[c.UserID]; ok {
			cancel()
			delete(h.subs, c.UserID)
		}
	}
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// SendToUser delivers an event to every local connection of the user.
// Slow connections with a full buffer drop the event.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal event", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.users[userID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("client buffer full, event dropped", zap.String("client_id", c.ID))
		}
	}
}

// Connections returns the number of local connections of a user.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
