package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func TestHubSendToConnectedUser(t *testing.T) {
	hub := NewHub(WithKeepAliveInterval(0))
	conn := dialHub(t, hub, "admin-1")

	require.Eventually(t, func() bool {
		return hub.ConnectedCount("admin-1") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToUser("admin-1", map[string]string{"type": "toast", "message": "hola"}))

	payload := readJSON(t, conn)
	assert.Equal(t, "toast", payload["type"])
	assert.Equal(t, "hola", payload["message"])
}

func TestHubQueuesOfflineAndReplays(t *testing.T) {
	hub := NewHub(WithKeepAliveInterval(0))

	// nobody connected yet: the message lands in the offline queue
	require.NoError(t, hub.SendToUser("admin-1", map[string]string{"message": "pendiente"}))

	conn := dialHub(t, hub, "admin-1")
	payload := readJSON(t, conn)
	assert.Equal(t, "pendiente", payload["message"])
}

func TestHubBroadcastToast(t *testing.T) {
	hub := NewHub(WithKeepAliveInterval(0))
	center := NewCenter(hub)

	conn := dialHub(t, hub, "admin-1")
	require.Eventually(t, func() bool {
		return hub.ConnectedCount("admin-1") == 1
	}, time.Second, 10*time.Millisecond)

	center.Error("No se pudo cambiar el estado del tenant")

	payload := readJSON(t, conn)
	assert.Equal(t, "toast", payload["type"])
	toast, ok := payload["toast"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, TypeError, toast["type"])
	assert.Equal(t, "No se pudo cambiar el estado del tenant", toast["message"])
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(WithKeepAliveInterval(0))
	conn := dialHub(t, hub, "admin-1")
	require.Eventually(t, func() bool {
		return hub.ConnectedCount("admin-1") == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	// after the peer is gone the next send fails over to the offline queue
	require.Eventually(t, func() bool {
		hub.SendToUser("admin-1", map[string]string{"message": "x"})
		return hub.ConnectedCount("admin-1") == 0
	}, time.Second, 20*time.Millisecond)

	messages, err := hub.offline.Drain(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, messages)
}
