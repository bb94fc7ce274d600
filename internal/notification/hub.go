package notification

import (
	"context"
	"sync"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub keeps one live websocket per user. A new connection replaces the old
// one.
type Hub struct {
	connections map[int64]*client
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*client),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists {
		_ = old.conn.Close()
	}
	h.connections[userID] = &client{conn: conn}
}

// Unregister drops conn if it is still the user's current connection.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.connections[userID]; exists && c.conn == conn {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}

// SendToUser reports whether the message reached a connected client.
func (h *Hub) SendToUser(userID int64, message interface{}) bool {
	h.mutex.RLock()
	c, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists {
		return false
	}
	if err := c.writeJSON(message); err != nil {
		h.Unregister(userID, c.conn)
		return false
	}
	return true
}

func (h *Hub) isOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.connections {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}

// Send pushes the event to the recipient when online. Offline recipients
// read it later from the store.
func (h *Hub) Send(_ context.Context, recipientID int64, templateID domain.NotificationType, data map[string]any) error {
	h.SendToUser(recipientID, Event{Type: templateID, RecipientID: recipientID, Data: data})
	return nil
}
