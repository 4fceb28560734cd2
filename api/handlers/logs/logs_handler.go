package logs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	response "console/api/handlers/common"
	"console/internal/logengine"
	"console/internal/metrics"
	"console/internal/platform"
)

// queryDateLayout 过滤器日期格式（本地日）
const queryDateLayout = "2006-01-02"

// LogsHandler 系统日志处理器：重载、过滤、分组历史选择与 CSV 导出
type LogsHandler struct {
	board *platform.LogBoard
}

// NewLogsHandler 创建日志处理器
func NewLogsHandler(board *platform.LogBoard) *LogsHandler {
	return &LogsHandler{board: board}
}

// ReloadRequest 重载请求
type ReloadRequest struct {
	TenantID           string `json:"tenantId"`
	LocalOffsetMinutes int    `json:"localOffsetMinutes"`
}

// SelectRequest 分组历史条目选择请求
type SelectRequest struct {
	Action  string `json:"action" binding:"required"`
	Message string `json:"message" binding:"required"`
	Level   string `json:"level" binding:"required"`
	EntryID string `json:"entryId" binding:"required"`
}

// Reload 重载日志
// @Summary 重载日志
// @Description 从后端重新拉取日志批次并整体替换当前记录集；失败时保留上一批
// @Tags Logs
// @Accept json
// @Produce json
// @Param request body ReloadRequest true "租户范围与本地时区偏移"
// @Success 200 {object} logengine.View
// @Failure 502 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/platform/logs/reload [post]
func (h *LogsHandler) Reload(c *gin.Context) {
	var req ReloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	ctx := response.RequestContext(c)
	view, err := h.board.Reload(ctx, req.TenantID, req.LocalOffsetMinutes)
	if err != nil {
		// la vista anterior sigue instalada; el cliente decide si reintenta
		c.JSON(http.StatusBadGateway, response.ErrorResponse{Success: false, Message: "No se pudieron cargar los logs"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// View 查询当前视图
// @Summary 查询日志视图
// @Description 应用查询参数中的过滤条件并返回完整派生视图（分组、统计、趋势、状态）
// @Tags Logs
// @Produce json
// @Param search query string false "búsqueda en message/action/email/ip"
// @Param level query string false "ERROR|WARN|INFO|ALL"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} logengine.View
// @Security BearerAuth
// @Router /api/platform/logs [get]
func (h *LogsHandler) View(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Fecha inválida: " + err.Error()})
		return
	}

	h.board.Board().SetCriteria(criteria)
	c.JSON(http.StatusOK, h.board.Board().Snapshot())
}

// Select 选择分组历史条目
// @Summary 选择分组历史条目
// @Description 将分组展示的上下文切换到指定的历史条目
// @Tags Logs
// @Accept json
// @Produce json
// @Param request body SelectRequest true "分组标识与条目 ID"
// @Success 200 {object} logengine.View
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /api/platform/logs/groups/select [post]
func (h *LogsHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Parámetros inválidos: " + err.Error()})
		return
	}

	if !h.board.Board().Select(req.Action, req.Message, req.Level, req.EntryID) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Success: false, Message: "Entrada no encontrada en la vista actual"})
		return
	}
	c.JSON(http.StatusOK, h.board.Board().Snapshot())
}

// Export 导出 CSV
// @Summary 导出当前视图为 CSV
// @Description 按当前过滤条件导出分组视图；视图为空时返回 204
// @Tags Logs
// @Produce text/csv
// @Param search query string false "búsqueda"
// @Param level query string false "ERROR|WARN|INFO|ALL"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {string} string "CSV"
// @Success 204 "vista vacía"
// @Security BearerAuth
// @Router /api/platform/logs/export [get]
func (h *LogsHandler) Export(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Success: false, Message: "Fecha inválida: " + err.Error()})
		return
	}
	h.board.Board().SetCriteria(criteria)

	data, active := h.board.Board().ExportSnapshot()
	if data == nil {
		c.Status(http.StatusNoContent)
		return
	}

	metrics.CSVExportsTotal.Inc()
	filename := logengine.ExportFilename(active.Level, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// criteriaFromQuery 从查询参数解析过滤条件；缺失的日期边界保持开放
func criteriaFromQuery(c *gin.Context) (logengine.FilterCriteria, error) {
	criteria := logengine.FilterCriteria{
		SearchTerm: c.Query("search"),
		Level:      c.DefaultQuery("level", logengine.LevelAll),
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return logengine.FilterCriteria{}, err
		}
		criteria.StartDate = t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return logengine.FilterCriteria{}, err
		}
		criteria.EndDate = t
	}
	return criteria, nil
}
