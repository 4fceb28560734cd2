package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console/internal/auth"
	"console/internal/logger"
	"console/internal/notification"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stderr"); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeAuth injects a resolved user context the way the auth middleware would.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(auth.UserContextKey), &auth.UserContext{UserID: userID, Email: userID + "@acme.io"})
		c.Next()
	}
}

func newWSServer(t *testing.T, hub *notification.Hub, middleware ...gin.HandlerFunc) *httptest.Server {
	t.Helper()
	router := gin.New()
	handler := NewWebSocketHandler(hub)
	router.GET("/api/ws/notifications", append(middleware, handler.Connect)...)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/notifications"
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

func TestConnectRequiresUserContext(t *testing.T) {
	srv := newWSServer(t, notification.NewHub())

	resp, err := http.Get(srv.URL + "/api/ws/notifications")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConnectRegistersAndGreets(t *testing.T) {
	hub := notification.NewHub()
	srv := newWSServer(t, hub, fakeAuth("u1"))

	conn := dial(t, srv)
	greeting := readJSON(t, conn)
	assert.Equal(t, "connected", greeting["type"])

	require.Eventually(t, func() bool {
		return hub.ConnectedCount("u1") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGreetingArrivesFirstUnderBroadcastLoad(t *testing.T) {
	hub := notification.NewHub()
	srv := newWSServer(t, hub, fakeAuth("u1"))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Publish(notification.Toast{Type: notification.TypeSuccess, Message: "tráfico de fondo"})
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 10; i++ {
		conn := dial(t, srv)
		first := readJSON(t, conn)
		assert.Equal(t, "connected", first["type"])
		conn.Close()
	}
}

func TestToastReachesConnectedClient(t *testing.T) {
	hub := notification.NewHub()
	center := notification.NewCenter(hub)
	srv := newWSServer(t, hub, fakeAuth("u1"))

	conn := dial(t, srv)
	readJSON(t, conn) // greeting

	require.Eventually(t, func() bool {
		return hub.ConnectedCount("u1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	center.Success("Operación completada")

	msg := readJSON(t, conn)
	assert.Equal(t, "toast", msg["type"])
	toast, ok := msg["toast"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Operación completada", toast["message"])
}

func TestToastEndpoints(t *testing.T) {
	center := notification.NewCenter()
	handler := NewToastHandler(center)

	router := gin.New()
	router.GET("/api/notifications/toast", handler.Current)
	router.DELETE("/api/notifications/toast", handler.Dismiss)

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications/toast", nil))
		return w
	}

	t.Run("empty slot yields 204", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, get().Code)
	})

	t.Run("active toast is visible until dismissed", func(t *testing.T) {
		center.Error("Algo salió mal")

		w := get()
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Algo salió mal")

		del := httptest.NewRecorder()
		router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/notifications/toast", nil))
		require.Equal(t, http.StatusOK, del.Code)

		assert.Equal(t, http.StatusNoContent, get().Code)
	})
}
