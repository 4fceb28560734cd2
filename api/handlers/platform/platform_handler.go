package platform

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	response "console/api/handlers/common"
	"console/internal/logger"
	"console/internal/notification"
	"console/internal/platform"
)

// PlatformHandler 平台管理处理器：总览指标、租户/用户目录与 IP 封禁
type PlatformHandler struct {
	client    *platform.Client
	directory *platform.Directory
	toasts    *notification.Center
}

// NewPlatformHandler 创建平台管理处理器
func NewPlatformHandler(client *platform.Client, directory *platform.Directory, toasts *notification.Center) *PlatformHandler {
	return &PlatformHandler{
		client:    client,
		directory: directory,
		toasts:    toasts,
	}
}

// BlockIPRequest IP 封禁请求
type BlockIPRequest struct {
	IP     string `json:"ip" binding:"required,ip"`
	Reason string `json:"reason"`
}

// Metrics 平台总览指标
// @Summary 平台总览指标
// @Description 后端不可用时返回零值指标而不是错误，仪表盘保持可渲染
// @Tags Platform
// @Produce json
// @Success 200 {object} platform.Metrics
// @Security BearerAuth
// @Router /api/platform/metrics [get]
func (h *PlatformHandler) Metrics(c *gin.Context) {
	m, err := h.client.FetchMetrics(response.RequestContext(c))
	if err != nil {
		logger.Warn("平台指标拉取失败，返回零值兜底", zap.Error(err))
		c.JSON(http.StatusOK, platform.Metrics{})
		return
	}
	c.JSON(http.StatusOK, m)
}

// Tenants 租户目录
// @Summary 租户目录
// @Description 从后端刷新租户列表并返回
// @Tags Platform
// @Produce json
// @Success 200 {object} response.APIResponse
// @Failure 502 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/platform/tenants [get]
func (h *PlatformHandler) Tenants(c *gin.Context) {
	tenants, err := h.directory.RefreshTenants(response.RequestContext(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, response.ErrorResponse{Success: false, Message: "No se pudo cargar la lista de tenants"})
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: tenants})
}

// ToggleTenant 切换租户状态
// @Summary 切换租户激活状态
// @Description 乐观切换：本地先翻转，后端确认失败则回滚并通知
// @Tags Platform
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} platform.Tenant
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/platform/tenants/{id}/toggle [patch]
func (h *PlatformHandler) ToggleTenant(c *gin.Context) {
	tenant, err := h.directory.ToggleTenant(response.RequestContext(c), c.Param("id"))
	if err != nil {
		writeDirectoryError(c, err, "Tenant no encontrado")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// Users 用户目录
// @Summary 用户目录
// @Tags Platform
// @Produce json
// @Success 200 {object} response.APIResponse
// @Failure 502 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/users [get]
func (h *PlatformHandler) Users(c *gin.Context) {
	users, err := h.directory.RefreshUsers(response.RequestContext(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, response.ErrorResponse{Success: false, Message: "No se pudo cargar la lista de usuarios"})
		return
	}
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Data: users})
}

// ToggleUser 切换用户状态
// @Summary 切换用户激活状态
// @Tags Platform
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} platform.User
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/users/{id}/status [patch]
func (h *PlatformHandler) ToggleUser(c *gin.Context) {
	user, err := h.directory.ToggleUser(response.RequestContext(c), c.Param("id"))
	if err != nil {
		writeDirectoryError(c, err, "Usuario no encontrado")
		return
	}
	c.JSON(http.StatusOK, user)
}

// BlockIP 封禁 IP
// @Summary 封禁来源 IP
// @Tags Platform
// @Accept json
// @Produce json
// @Param request body BlockIPRequest true "IP 与原因"
// @Success 200 {object} response.APIResponse
// @Failure 502 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/platform/security/block-ip [post]
func (h *PlatformHandler) BlockIP(c *gin.Context) {
	var req BlockIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	if err := h.client.BlockIP(response.RequestContext(c), req.IP, req.Reason); err != nil {
		h.toasts.Error("No se pudo bloquear la IP")
		writeBackendError(c, err, "No se pudo bloquear la IP")
		return
	}

	h.toasts.Success("IP bloqueada correctamente")
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "IP bloqueada correctamente"})
}

// writeDirectoryError 区分目录缺失（404）与后端失败（透传状态或 502）
func writeDirectoryError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, platform.ErrNotInDirectory) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Success: false, Message: notFoundMessage})
		return
	}
	writeBackendError(c, err, "Error de conexión con el backend")
}

func writeBackendError(c *gin.Context, err error, fallback string) {
	if apiErr, ok := platform.AsAPIError(err); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
		c.JSON(apiErr.Status, response.ErrorResponse{Success: false, Code: apiErr.Code, Message: apiErr.Message})
		return
	}
	c.JSON(http.StatusBadGateway, response.ErrorResponse{Success: false, Message: fallback})
}
