package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwise/internal/services"
)

func newHubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		if user := c.Query("user"); user != "" {
			c.Set("user_id", user)
		}
		h.ServeWS(c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesEverySessionOfUser(t *testing.T) {
	h := NewHub()
	srv := newHubServer(t, h)

	a := dial(t, srv, "u1")
	b := dial(t, srv, "u1")
	other := dial(t, srv, "u2")
	require.Eventually(t, func() bool { return h.Sessions("u1") == 2 && h.Sessions("u2") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Publish(context.Background(), "u1", services.EventMilestoneAchieved, map[string]string{"label": "25% of budget spent"}))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var env services.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, services.EventMilestoneAchieved, env.Event)
		assert.Equal(t, "u1", env.UserID)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other users receive nothing")
}

func TestHub_UnregistersClosedSessions(t *testing.T) {
	h := NewHub()
	srv := newHubServer(t, h)

	conn := dial(t, srv, "u1")
	require.Eventually(t, func() bool { return h.Sessions("u1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.Sessions("u1") == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.Deliver("u1", []byte("{}")))
}

func TestHub_RejectsAnonymousUpgrade(t *testing.T) {
	h := NewHub()
	srv := newHubServer(t, h)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHub_DropsSlowSessions(t *testing.T) {
	h := NewHub()
	c := &Client{send: make(chan []byte, 1), userID: "u1"}
	h.register(c)

	assert.Equal(t, 1, h.Deliver("u1", []byte("one")))
	assert.Equal(t, 0, h.Deliver("u1", []byte("two")))
	assert.Equal(t, 0, h.Sessions("u1"))

	h.Close()
}
