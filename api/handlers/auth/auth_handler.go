package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	response "console/api/handlers/common"
	"console/internal/auth"
	"console/internal/metrics"
	"console/internal/notification"
)

// AuthHandler 认证代理处理器
type AuthHandler struct {
	service *auth.Service
	toasts  *notification.Center
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(service *auth.Service, toasts *notification.Center) *AuthHandler {
	return &AuthHandler{
		service: service,
		toasts:  toasts,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Fullname     string `json:"fullname" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	BusinessName string `json:"businessName" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Plan         string `json:"plan"`
}

// VerifyRequest 邮箱验证请求
type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,min=6"`
}

// ResendRequest 重发验证码请求
type ResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login 登录
// @Summary 登录
// @Description 代理认证后端登录；账户未验证时返回 409 并指示前端进入验证流程
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "凭证"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNotVerified) {
			metrics.AuthLoginsTotal.WithLabelValues("not_verified").Inc()
			c.JSON(http.StatusConflict, gin.H{
				"success":         false,
				"code":            "ACCOUNT_NOT_VERIFIED",
				"message":         "Debes verificar tu cuenta antes de entrar",
				"verify_required": true,
				"email":           req.Email,
			})
			return
		}
		metrics.AuthLoginsTotal.WithLabelValues("failed").Inc()
		writeProviderError(c, err, "Credenciales incorrectas o error de conexión.")
		return
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, resp)
}

// Register 注册
// @Summary 注册
// @Description 代理注册，未指定套餐默认 free；成功后打开 5 分钟验证窗口
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	err := h.service.Register(c.Request.Context(), auth.Registration{
		Fullname:     req.Fullname,
		Email:        req.Email,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		Slug:         req.Slug,
		Plan:         req.Plan,
	})
	if err != nil {
		writeProviderError(c, err, "No se pudo completar el registro.")
		return
	}

	c.JSON(http.StatusCreated, response.APIResponse{
		Success: true,
		Message: "Registro exitoso. Revisa tu email para verificar tu cuenta.",
		Data:    gin.H{"email": req.Email},
	})
}

// Verify 提交邮箱验证码
// @Summary 验证账户
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "邮箱与验证码"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 410 {object} response.ErrorResponse
// @Router /api/auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrVerificationExpired) {
			h.toasts.Error("El tiempo expiró. Registro eliminado.")
			c.JSON(http.StatusGone, response.ErrorResponse{
				Success: false,
				Code:    "VERIFICATION_EXPIRED",
				Message: "El tiempo expiró. Registro eliminado.",
			})
			return
		}
		h.toasts.Error(providerMessage(err, "Código incorrecto"))
		writeProviderError(c, err, "Código incorrecto")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Resend 重发验证码
// @Summary 重发验证码
// @Description 每 60 秒最多一次；成功后验证窗口重新计时
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResendRequest true "邮箱"
// @Success 200 {object} response.APIResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /api/auth/resend [post]
func (h *AuthHandler) Resend(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	if err := h.service.Resend(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrResendCooldown) {
			c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
				Success: false,
				Code:    "RESEND_COOLDOWN",
				Message: "Espera un momento antes de pedir otro código.",
			})
			return
		}
		h.toasts.Error("No se pudo reenviar.")
		writeProviderError(c, err, "No se pudo reenviar.")
		return
	}

	h.toasts.Success("¡Código reenviado! Revisa tu email.")
	c.JSON(http.StatusOK, response.APIResponse{
		Success: true,
		Message: "¡Código reenviado! Revisa tu email.",
	})
}

// Logout 登出，清理网关侧会话缓存
// @Summary 登出
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := auth.ExtractTokenFromBearer(c.GetHeader("Authorization"))
	if token != "" {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Success: false, Message: "No se pudo cerrar la sesión"})
			return
		}
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "Sesión cerrada"})
}

// Me 当前会话信息
// @Summary 当前用户
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 404 {object} response.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	token := auth.ExtractTokenFromBearer(c.GetHeader("Authorization"))
	session, err := h.service.CurrentSession(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Success: false, Message: "Sesión no encontrada"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// writeProviderError 按认证后端的状态码与文案回写错误
func writeProviderError(c *gin.Context, err error, fallback string) {
	if pe, ok := auth.AsProviderError(err); ok {
		c.JSON(pe.Status, response.ErrorResponse{Success: false, Code: pe.Code, Message: pe.Message})
		return
	}
	c.JSON(http.StatusBadGateway, response.ErrorResponse{Success: false, Message: fallback})
}

func providerMessage(err error, fallback string) string {
	if pe, ok := auth.AsProviderError(err); ok && pe.Message != "" {
		return pe.Message
	}
	return fallback
}
