package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"console/internal/auth"
	"console/internal/metrics"
	middlewarepkg "console/internal/middleware"
)

// RegisterRoutes 注册全局中间件与所有 API 路由
func RegisterRoutes(router *gin.Engine, container *AppContainer, handlers *Handlers) {
	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middlewarepkg.RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(CORS(container.Config.CORS.AllowedOrigins))

	// Prometheus 指标收集中间件
	router.Use(metrics.PrometheusMiddleware())

	// 全局限流
	router.Use(middlewarepkg.RateLimitMiddleware(container.GlobalLimiter))

	// 公开端点（不需要认证）
	router.GET("/health", HealthCheck())
	router.GET("/ready", ReadinessCheck(container.RedisClient))

	// Prometheus 指标端点
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 认证 API（公开，不需要 JWT）
	registerAuthRoutes(router, container, handlers)

	// 受保护 API 组
	api := router.Group("/api")
	api.Use(auth.Middleware(container.TokenVerifier, container.SessionStore))
	registerAPIRoutes(api, handlers)
}

// registerAuthRoutes 注册认证相关路由（公开，敏感端点单独限流）
func registerAuthRoutes(router *gin.Engine, c *AppContainer, h *Handlers) {
	authLimit := middlewarepkg.RateLimitByEndpoint(c.AuthLimiter)

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", authLimit, h.Auth.Login)
		authGroup.POST("/register", authLimit, h.Auth.Register)
		authGroup.POST("/verify", authLimit, h.Auth.Verify)
		authGroup.POST("/resend", authLimit, h.Auth.Resend)
		authGroup.POST("/logout", h.Auth.Logout)
	}
}

// registerAPIRoutes 注册需要认证的 API 路由
func registerAPIRoutes(apiGroup *gin.RouterGroup, h *Handlers) {
	// 当前会话
	apiGroup.GET("/auth/me", h.Auth.Me)

	// WebSocket 通知通道
	apiGroup.GET("/ws/notifications", h.Notification.Connect)

	// Toast 通知
	notifGroup := apiGroup.Group("/notifications")
	{
		notifGroup.GET("/toast", h.Toast.Current)
		notifGroup.DELETE("/toast", h.Toast.Dismiss)
	}

	// 平台管理（仅超级管理员）
	superAdminGuard := auth.RequireRole(auth.RoleSuperAdmin)

	platformGroup := apiGroup.Group("/platform", superAdminGuard)
	{
		platformGroup.GET("/metrics", h.Platform.Metrics)

		platformGroup.GET("/tenants", h.Platform.Tenants)
		platformGroup.PATCH("/tenants/:id/toggle", h.Platform.ToggleTenant)

		platformGroup.POST("/security/block-ip", h.Platform.BlockIP)

		// 系统日志
		logsGroup := platformGroup.Group("/logs")
		{
			logsGroup.GET("", h.Logs.View)
			logsGroup.POST("/reload", h.Logs.Reload)
			logsGroup.POST("/groups/select", h.Logs.Select)
			logsGroup.GET("/export", h.Logs.Export)
		}
	}

	// 用户目录（仅超级管理员）
	usersGroup := apiGroup.Group("/users", superAdminGuard)
	{
		usersGroup.GET("", h.Platform.Users)
		usersGroup.PATCH("/:id/status", h.Platform.ToggleUser)
	}
}
