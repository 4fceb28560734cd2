package api

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authHandlers "console/api/handlers/auth"
	logsHandlers "console/api/handlers/logs"
	notificationHandlers "console/api/handlers/notifications"
	platformHandlers "console/api/handlers/platform"
	"console/internal/auth"
	"console/internal/config"
	"console/internal/logger"
	middlewarepkg "console/internal/middleware"
	"console/internal/notification"
	"console/internal/platform"
)

// AppContainer 应用容器，集中管理所有服务依赖
type AppContainer struct {
	// 基础设施
	Config      *config.Config
	RedisClient *redis.Client

	// 认证相关
	AuthService   *auth.Service
	TokenVerifier *auth.TokenVerifier
	SessionStore  auth.SessionStore

	// 平台后端
	PlatformClient *platform.Client
	Directory      *platform.Directory
	LogBoard       *platform.LogBoard

	// 通知
	ToastCenter *notification.Center
	Hub         *notification.Hub

	// 限流
	GlobalLimiter *middlewarepkg.RateLimiter
	AuthLimiter   *middlewarepkg.RateLimiter
}

// Handlers HTTP 处理器集合
type Handlers struct {
	Auth         *authHandlers.AuthHandler
	Logs         *logsHandlers.LogsHandler
	Platform     *platformHandlers.PlatformHandler
	Notification *notificationHandlers.WebSocketHandler
	Toast        *notificationHandlers.ToastHandler
}

// BuildContainer 构建应用容器，按配置装配全部服务依赖
func BuildContainer(cfg *config.Config) *AppContainer {
	// 统一归一化 Redis 配置，优先使用 cfg.Redis，再回退到环境变量
	redisCfg := normalizeRedisConfig(cfg.Redis)
	cfg.Redis = redisCfg

	// 初始化 Redis 客户端（会话缓存、离线通知）
	var redisClient *redis.Client
	if redisCfg.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         redisCfg.Addr(),
			Password:     redisCfg.Password,
			DB:           redisCfg.DB,
			PoolSize:     redisCfg.PoolSize,
			MinIdleConns: redisCfg.MinIdleConns,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis 不可用，会话缓存与离线通知将退回内存实现", zap.Error(err))
			redisClient = nil
		}
	}

	// JWT 密钥：与认证后端共享，生产环境禁止默认值
	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		jwtSecret = strings.TrimSpace(os.Getenv("JWT_SECRET_KEY"))
	}
	if jwtSecret == "" {
		if strings.EqualFold(cfg.Server.Mode, "release") {
			logger.Fatal("JWT 密钥未配置，生产环境禁止使用默认密钥")
		}
		jwtSecret = "default_jwt_secret_key_change_in_production" // 本地/测试默认值，需明确提示
		logger.Warn("JWT 密钥未配置，已回退为开发默认值，请在生产环境设置强随机密钥")
	}
	verifier := auth.NewTokenVerifier(jwtSecret, cfg.Auth.JWTIssuer)

	// 会话存储：Redis 优先，不可用时退回内存
	sessionTTL := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	var sessions auth.SessionStore
	if redisClient != nil {
		sessions = auth.NewRedisSessionStore(redisClient, "session:", sessionTTL)
	} else {
		sessions = auth.NewMemorySessionStore(sessionTTL)
	}

	// 认证代理服务
	provider := auth.NewProviderClient(cfg.Auth.BaseURL)
	authService := auth.NewService(provider, sessions)

	// 通知：离线存储同样按 Redis 可用性选择实现
	var offlineStore notification.OfflineStore
	if redisClient != nil {
		offlineStore = notification.NewRedisOfflineStore(redisClient, 200, time.Hour)
	} else {
		offlineStore = notification.NewMemoryOfflineStore(200)
	}
	hub := notification.NewHub(notification.WithOfflineStore(offlineStore))
	toasts := notification.NewCenter(hub)

	// 平台后端客户端与派生视图
	platformClient := platform.NewClient(cfg.Platform.BaseURL,
		platform.WithTimeout(time.Duration(cfg.Platform.TimeoutSeconds)*time.Second),
		platform.WithRetries(cfg.Platform.Retries),
	)
	directory := platform.NewDirectory(platformClient, toasts)
	logBoard := platform.NewLogBoard(platformClient)

	return &AppContainer{
		Config:         cfg,
		RedisClient:    redisClient,
		AuthService:    authService,
		TokenVerifier:  verifier,
		SessionStore:   sessions,
		PlatformClient: platformClient,
		Directory:      directory,
		LogBoard:       logBoard,
		ToastCenter:    toasts,
		Hub:            hub,
		GlobalLimiter:  middlewarepkg.NewRateLimiter(middlewarepkg.DefaultRateLimiterConfig()),
		AuthLimiter:    middlewarepkg.NewRateLimiter(middlewarepkg.AuthRateLimiterConfig()),
	}
}

// NewHandlers 构建处理器集合
func NewHandlers(c *AppContainer) *Handlers {
	return &Handlers{
		Auth:         authHandlers.NewAuthHandler(c.AuthService, c.ToastCenter),
		Logs:         logsHandlers.NewLogsHandler(c.LogBoard),
		Platform:     platformHandlers.NewPlatformHandler(c.PlatformClient, c.Directory, c.ToastCenter),
		Notification: notificationHandlers.NewWebSocketHandler(c.Hub),
		Toast:        notificationHandlers.NewToastHandler(c.ToastCenter),
	}
}

// SetupRouter 设置并返回 Gin 路由
func SetupRouter(cfg *config.Config) (*gin.Engine, *AppContainer) {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	container := BuildContainer(cfg)
	handlers := NewHandlers(container)

	RegisterRoutes(router, container, handlers)

	return router, container
}
