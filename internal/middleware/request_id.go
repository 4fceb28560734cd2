package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"console/internal/logger"
)

// 上下文键
type contextKey string

// RequestIDKey 请求 ID 上下文键
const RequestIDKey contextKey = "request_id"

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware 请求 ID 中间件。
// 为每个请求生成唯一 ID（或沿用上游传递的），写入响应头与日志上下文。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(string(RequestIDKey), requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// GetRequestIDFromGin 从 Gin 上下文获取请求 ID
func GetRequestIDFromGin(c *gin.Context) string {
	if id, exists := c.Get(string(RequestIDKey)); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
