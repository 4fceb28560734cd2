package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"console/internal/logger"
	"console/internal/metrics"
)

type clientConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub 管理控制台管理员的 WebSocket 连接，负责推送 Toast 通知。
// 管理员离线期间的通知进入离线队列，重连时按序重放。
type Hub struct {
	mu                sync.RWMutex
	clients           map[string]map[*websocket.Conn]*clientConn
	offline           OfflineStore
	keepAliveInterval time.Duration
	logger            *zap.Logger
}

// HubOption 配置 hub
type HubOption func(*Hub)

// WithOfflineStore 指定离线存储
func WithOfflineStore(store OfflineStore) HubOption {
	return func(h *Hub) { h.offline = store }
}

// WithKeepAliveInterval 设置心跳间隔
func WithKeepAliveInterval(interval time.Duration) HubOption {
	return func(h *Hub) { h.keepAliveInterval = interval }
}

// NewHub 创建 Hub
func NewHub(opts ...HubOption) *Hub {
	hub := &Hub{
		clients:           make(map[string]map[*websocket.Conn]*clientConn),
		offline:           NewMemoryOfflineStore(50),
		keepAliveInterval: 30 * time.Second,
		logger:            logger.Get(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hub)
		}
	}
	return hub
}

// Publish 实现 Sink，把 Toast 广播给所有在线管理员
func (h *Hub) Publish(toast Toast) {
	payload := struct {
		Type  string `json:"type"`
		Toast Toast  `json:"toast"`
	}{Type: "toast", Toast: toast}
	if err := h.Broadcast(payload); err != nil {
		h.logger.Debug("广播通知失败", zap.Error(err))
	}
}

// Register 注册连接
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	client := &clientConn{conn: conn}

	h.mu.Lock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*websocket.Conn]*clientConn)
	}
	h.clients[userID][conn] = client
	h.mu.Unlock()

	metrics.WebSocketConnectionsGauge.Inc()
	h.replayOffline(context.Background(), userID, client)
	h.startKeepAlive(userID, client)
}

// Unregister 移除连接
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			metrics.WebSocketConnectionsGauge.Dec()
		}
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// SendToUser 将通知发送给指定管理员的所有连接，离线时入队
func (h *Hub) SendToUser(userID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.clients[userID]))
	for _, client := range h.clients[userID] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return h.storeOffline(context.Background(), userID, data)
	}

	var firstErr error
	for _, client := range conns {
		if err := h.writeMessage(client, data); err != nil {
			h.Unregister(userID, client.conn)
			_ = client.conn.Close()
			_ = h.storeOffline(context.Background(), userID, data)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Broadcast 把通知发送给所有在线连接
func (h *Hub) Broadcast(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make(map[string][]*clientConn, len(h.clients))
	for userID, conns := range h.clients {
		for _, client := range conns {
			targets[userID] = append(targets[userID], client)
		}
	}
	h.mu.RUnlock()

	var firstErr error
	for userID, conns := range targets {
		for _, client := range conns {
			if err := h.writeMessage(client, data); err != nil {
				h.Unregister(userID, client.conn)
				_ = client.conn.Close()
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// ConnectedCount 返回指定管理员的连接数（用于调试/指标）
func (h *Hub) ConnectedCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) writeMessage(client *clientConn, data []byte) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return client.conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) replayOffline(ctx context.Context, userID string, client *clientConn) {
	if h.offline == nil {
		return
	}
	messages, err := h.offline.Drain(ctx, userID)
	if err != nil {
		h.logger.Warn("离线通知重放失败", zap.String("userId", userID), zap.Error(err))
		return
	}
	for _, msg := range messages {
		if err := h.writeMessage(client, msg); err != nil {
			h.logger.Debug("推送离线通知失败", zap.Error(err))
		}
	}
}

func (h *Hub) storeOffline(ctx context.Context, userID string, payload []byte) error {
	if h.offline == nil {
		return nil
	}
	return h.offline.Append(ctx, userID, payload)
}

func (h *Hub) startKeepAlive(userID string, client *clientConn) {
	if h.keepAliveInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(h.keepAliveInterval)
		defer ticker.Stop()
		for range ticker.C {
			client.mu.Lock()
			err := client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			client.mu.Unlock()
			if err != nil {
				h.Unregister(userID, client.conn)
				_ = client.conn.Close()
				return
			}
		}
	}()
}
