package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// ServerEvent is pushed to websocket subscribers.
type ServerEvent struct {
	Type string `json:"type"` // "info" | "match" | "appointment" | "chat_message"
	Data any    `json:"data,omitempty"`
}

// MatchEvent tells a foundation that an adopter matched one of its pets.
type MatchEvent struct {
	MatchID    uuid.UUID `json:"match_id"`
	PetID      uuid.UUID `json:"pet_id"`
	PetName    string    `json:"pet_name"`
	UserID     uuid.UUID `json:"user_id"`
	MatchScore int       `json:"match_score"`
}

// Client is one websocket connection.
type Client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan ServerEvent
}

// Hub tracks websocket connections per user.
type Hub struct {
	clientsByUser map[uuid.UUID]map[*Client]bool
	mu            sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clientsByUser: make(map[uuid.UUID]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clientsByUser[c.userID] == nil {
		h.clientsByUser[c.userID] = make(map[*Client]bool)
	}
	h.clientsByUser[c.userID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.clientsByUser[c.userID]; ok {
		delete(peers, c)
		if len(peers) == 0 {
			delete(h.clientsByUser, c.userID)
		}
	}
}

// sendToUser delivers evt to every connection of userID and returns how
// many connections accepted it.
func (h *Hub) sendToUser(userID uuid.UUID, evt ServerEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clientsByUser[userID] {
		select {
		case c.send <- evt:
			delivered++
		default:
			// Drop the event if the client's buffer is full
		}
	}
	return delivered
}

func (h *Hub) connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientsByUser[userID])
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsMatchesHandler streams match, appointment and chat events for the
// authenticated user.
func (s *server) wsMatchesHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("websocket upgrade failed", zap.String("user_id", user.ID.String()), zap.Error(err))
			return
		}

		client := &Client{
			userID: user.ID,
			conn:   conn,
			send:   make(chan ServerEvent, sendBuffer),
		}
		s.hub.register(client)

		client.send <- ServerEvent{Type: "info", Data: "connected"}

		go clientWriter(client)
		s.clientReader(client)
	})
}

// clientReader only drains control frames; subscribers never send data.
func (s *server) clientReader(c *Client) {
	defer func() {
		s.hub.unregister(c)
		close(c.send)
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func clientWriter(c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			// ping to keep the connection alive
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
