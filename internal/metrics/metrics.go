package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// APIResponseSize API 响应体大小（字节）
	APIResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_api_response_size_bytes",
			Help:    "API 响应体大小分布",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
)

// 审计日志看板指标
var (
	// LogReloadsTotal 日志批次拉取总数
	LogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_log_reloads_total",
			Help: "审计日志批次拉取总数",
		},
		[]string{"status"},
	)

	// LogRecordsLoaded 最近一次拉取的日志条数
	LogRecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_log_records_loaded",
			Help: "最近一次拉取的审计日志条数",
		},
	)

	// CSVExportsTotal CSV 导出总数
	CSVExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_csv_exports_total",
			Help: "审计日志 CSV 导出总数",
		},
	)
)

// 平台管理指标
var (
	// ToggleRollbacksTotal 乐观切换回滚总数
	ToggleRollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_toggle_rollbacks_total",
			Help: "租户/用户状态切换失败回滚总数",
		},
		[]string{"kind"},
	)

	// AuthLoginsTotal 登录尝试总数
	AuthLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_auth_logins_total",
			Help: "登录尝试总数",
		},
		[]string{"status"}, // success / not_verified / failed
	)
)

// WebSocket 指标
var (
	// WebSocketConnectionsGauge 当前 WebSocket 连接数
	WebSocketConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_websocket_connections",
			Help: "当前通知通道 WebSocket 连接数",
		},
	)
)
