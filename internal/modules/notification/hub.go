package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub keeps one live websocket per user. A newer connection replaces the
// older one.
type Hub struct {
	clients map[string]*client
	mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.clients[userID]; exists && old.conn != conn {
		_ = old.conn.Close()
	}

	h.clients[userID] = &client{conn: conn}
}

// Unregister drops userID only while conn is still the registered one, so a
// replaced connection closing late does not evict its successor.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.clients[userID]; exists && c.conn == conn {
		_ = c.conn.Close()
		delete(h.clients, userID)
	}
}

func (h *Hub) SendToUser(userID string, message interface{}) bool {
	h.mutex.RLock()
	c, exists := h.clients[userID]
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

func (h *Hub) ping(userID string) bool {
	h.mutex.RLock()
	c, exists := h.clients[userID]
	h.mutex.RUnlock()

	return exists && c.ping() == nil
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, userID)
	}
}
