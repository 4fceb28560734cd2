package common

import (
	"context"

	"github.com/gin-gonic/gin"

	"console/internal/auth"
	"console/internal/platform"
)

// APIResponse 通用响应结构，用于封装成功或失败结果。
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 统一错误返回结构。
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RequestContext 返回携带调用者 Bearer 令牌的请求上下文，
// 平台客户端据此向后端透传凭证。
func RequestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if userCtx, ok := auth.GetUserContext(c); ok {
		ctx = platform.WithBearerToken(ctx, userCtx.Token)
	}
	return ctx
}
