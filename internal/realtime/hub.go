package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Client is one open websocket session of a user.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub tracks open sessions per user and pushes events to them.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{users: make(map[string]map[*Client]bool)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*Client]bool)
	}
	h.users[c.userID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *Client) {
	conns := h.users[c.userID]
	if conns == nil || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.users, c.userID)
	}
}

// Sessions reports how many sessions the user has open.
func (h *Hub) Sessions(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Deliver pushes data to every session of the user. Sessions whose buffer is
// full are disconnected.
func (h *Hub) Deliver(userID string, data []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.users[userID] {
		select {
		case c.send <- data:
			sent++
		default:
			slog.Warn("dropping slow websocket session", "user_id", userID)
			h.drop(c)
		}
	}
	return sent
}

// Publish delivers directly to the sessions held by this instance.
func (h *Hub) Publish(_ context.Context, userID, event string, payload any) error {
	data, err := services.EncodeEnvelope(userID, event, payload)
	if err != nil {
		return err
	}
	h.Deliver(userID, data)
	return nil
}

// Subscribe forwards events published on the per-user Redis channels to local
// sessions until ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context, client *redis.Client) {
	sub := client.PSubscribe(ctx, services.UserChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	slog.Info("realtime hub listening", "pattern", services.UserChannelPrefix+"*")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID := strings.TrimPrefix(msg.Channel, services.UserChannelPrefix)
			h.Deliver(userID, []byte(msg.Payload))
		}
	}
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.users {
		for c := range conns {
			h.drop(c)
		}
	}
}

// ServeWS upgrades an authenticated request into a push session.
func (h *Hub) ServeWS(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	h.register(client)
	go writePump(client)
	go readPump(client, h)
}

func writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; sessions are push-only.
func readPump(c *Client, h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
