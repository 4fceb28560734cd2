package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims 认证后端签发令牌中的声明
type TokenClaims struct {
	UserID   string `json:"uid"`
	TenantID string `json:"tid"`
	Email    string `json:"email"`
	Role     string `json:"role"` // OWNER / ADMIN / STAFF / SUPER_ADMIN
	jwt.RegisteredClaims
}

// TokenVerifier 校验认证后端签发的 HS256 令牌（网关与后端共享密钥）
type TokenVerifier struct {
	secretKey []byte
	issuer    string
}

// NewTokenVerifier 创建令牌校验器
func NewTokenVerifier(secretKey, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// ValidateToken 验证并解析令牌
func (v *TokenVerifier) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("无效的签名算法: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("解析令牌失败: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("无效的令牌")
	}

	if v.issuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != v.issuer {
			return nil, fmt.Errorf("令牌颁发者不匹配")
		}
	}

	return claims, nil
}

// ExtractTokenFromBearer 从 Bearer 令牌中提取纯令牌字符串
func ExtractTokenFromBearer(bearerToken string) string {
	const prefix = "Bearer "
	if len(bearerToken) > len(prefix) && bearerToken[:len(prefix)] == prefix {
		return bearerToken[len(prefix):]
	}
	return bearerToken
}
