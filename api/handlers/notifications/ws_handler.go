package notifications

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	response "console/api/handlers/common"
	"console/internal/auth"
	"console/internal/notification"
)

// WebSocketHandler 管理 toast 实时推送的 WebSocket 连接
type WebSocketHandler struct {
	hub      *notification.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建处理器
func NewWebSocketHandler(hub *notification.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connect 升级连接并注册客户端
func (h *WebSocketHandler) Connect(c *gin.Context) {
	if h == nil || h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, response.ErrorResponse{Success: false, Message: "Servicio de notificaciones no disponible"})
		return
	}
	user, ok := auth.GetUserContext(c)
	if !ok || user.UserID == "" {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Success: false, Message: "Sesión requerida"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
	})

	// 问候帧必须先于注册：注册后 hub 可能从其他 goroutine 写同一连接
	if err := conn.WriteJSON(gin.H{
		"type":    "connected",
		"message": "Canal de notificaciones activo",
	}); err != nil {
		_ = conn.Close()
		return
	}

	h.hub.Register(user.UserID, conn)
	go h.readLoop(user.UserID, conn)
}

func (h *WebSocketHandler) readLoop(userID string, conn *websocket.Conn) {
	defer func() {
		h.hub.Unregister(userID, conn)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
