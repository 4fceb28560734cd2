package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey 上下文键类型
type ContextKey string

// UserContextKey 用户上下文键
const UserContextKey ContextKey = "user"

// 平台角色
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleOwner      = "OWNER"
	RoleAdmin      = "ADMIN"
	RoleStaff      = "STAFF"
)

// UserContext 已认证请求的用户上下文
type UserContext struct {
	UserID   string
	TenantID string
	Email    string
	Role     string
	Token    string // 原始令牌，用于向平台后端透传
}

// Middleware JWT 认证中间件。校验 Bearer 令牌，并在会话存储中
// 有对应会话时用其用户资料补全上下文（会话存储故障不拦截请求）。
func Middleware(verifier *TokenVerifier, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Falta el token de autenticación",
			})
			c.Abort()
			return
		}

		token := ExtractTokenFromBearer(authHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Formato de token inválido",
			})
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Token inválido o expirado",
			})
			c.Abort()
			return
		}

		userCtx := &UserContext{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Email:    claims.Email,
			Role:     claims.Role,
			Token:    token,
		}

		// 会话中缓存的资料比令牌声明更完整（登出后会话消失，但令牌
		// 在过期前仍然有效，此时退回声明中的信息）
		if sessions != nil {
			if session, err := sessions.Get(c.Request.Context(), token); err == nil {
				userCtx.Email = session.User.Email
				if session.User.Role != "" {
					userCtx.Role = session.User.Role
				}
			}
			// 存储故障或会话缺失时降级为纯令牌认证
		}

		c.Set(string(UserContextKey), userCtx)
		c.Next()
	}
}

// RequireRole 角色检查中间件，放行持有任一指定角色的用户
func RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "No autenticado",
			})
			c.Abort()
			return
		}

		if !hasRole(userCtx.Role, requiredRoles) {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Acceso restringido",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserContext 从 Gin Context 获取用户上下文
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	value, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil, false
	}
	userCtx, ok := value.(*UserContext)
	return userCtx, ok
}

func hasRole(userRole string, requiredRoles []string) bool {
	for _, required := range requiredRoles {
		if strings.EqualFold(userRole, required) {
			return true
		}
	}
	return false
}
