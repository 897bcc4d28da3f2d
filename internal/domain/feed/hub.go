// Package feed pushes committed client and lead changes to open dashboards
// over WebSocket.
package feed

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"spincrm/internal/domain/auth"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Event is one change as sent to dashboards, e.g. type "client.updated".
type Event struct {
	Type    string    `json:"type"`
	Entity  string    `json:"entity"`
	ID      string    `json:"id"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

type connection struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub manages all active dashboard connections. A user may hold several.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	now         func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
		now:         time.Now,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Publish broadcasts a change to every connection. Slow clients miss events
// rather than block the writer.
func (h *Hub) Publish(entity, action, id string, payload any) {
	data, err := json.Marshal(Event{
		Type:    entity + "." + action,
		Entity:  entity,
		ID:      id,
		Payload: payload,
		At:      h.now(),
	})
	if err != nil {
		log.Printf("feed_publish_failed entity=%s id=%s error=%q", entity, id, err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			log.Printf("feed_event_dropped user_id=%s type=%s.%s", c.userID, entity, action)
		}
	}
}

// HandleAuthChange closes the sockets of a user who signed out.
func (h *Hub) HandleAuthChange(ev auth.Event) {
	if ev.Type != auth.EventSignedOut {
		return
	}
	h.closeWhere(func(c *connection) bool { return c.userID == ev.UserID })
}

// Close disconnects everyone, used on shutdown.
func (h *Hub) Close() {
	h.closeWhere(func(*connection) bool { return true })
}

func (h *Hub) closeWhere(match func(*connection) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		if match(c) {
			delete(h.connections, c)
			close(c.send)
		}
	}
}

// serve registers conn and runs its pumps until it disconnects.
func (h *Hub) serve(conn *websocket.Conn, userID string) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)
	log.Printf("feed_connected user_id=%s", userID)

	go h.writePump(c)
	h.readPump(c)
	log.Printf("feed_disconnected user_id=%s", userID)
}

// readPump only watches for disconnects and pongs; dashboards do not send.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
