package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"

	response "console/api/handlers/common"
	"console/internal/notification"
)

// ToastHandler 单槽 toast 查询与关闭
type ToastHandler struct {
	center *notification.Center
}

// NewToastHandler 创建 toast 处理器
func NewToastHandler(center *notification.Center) *ToastHandler {
	return &ToastHandler{center: center}
}

// Current 当前 toast
// @Summary 当前活动的 toast
// @Description 单槽语义：最多一条活动通知，过期或被替换后不可见
// @Tags Notifications
// @Produce json
// @Success 200 {object} notification.Toast
// @Success 204 "sin notificación activa"
// @Security BearerAuth
// @Router /api/notifications/toast [get]
func (h *ToastHandler) Current(c *gin.Context) {
	toast := h.center.Current()
	if toast == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toast)
}

// Dismiss 手动关闭 toast
// @Summary 关闭当前 toast
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.APIResponse
// @Security BearerAuth
// @Router /api/notifications/toast [delete]
func (h *ToastHandler) Dismiss(c *gin.Context) {
	h.center.Dismiss()
	c.JSON(http.StatusOK, response.APIResponse{Success: true, Message: "Notificación descartada"})
}
