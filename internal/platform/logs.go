package platform

import (
	"context"

	"go.uber.org/zap"

	"console/internal/logengine"
	"console/internal/logger"
	"console/internal/metrics"
)

// LogBoard couples the backend log source with the aggregation engine's
// view-state board. Reload is the single asynchronous operation around the
// engine: one fetch per explicit reload, whose resolution replaces the
// record set wholesale (last-resolved-wins).
type LogBoard struct {
	client *Client
	board  *logengine.Board
}

// NewLogBoard creates a log board over the given backend client.
func NewLogBoard(client *Client) *LogBoard {
	return &LogBoard{client: client, board: logengine.NewBoard()}
}

// Board exposes the underlying view-state container.
func (l *LogBoard) Board() *logengine.Board {
	return l.board
}

// Reload fetches the log batch, normalizes it with the viewer's local offset
// and installs it atomically. Records with unparseable timestamps are
// dropped with a warning instead of failing the batch. On fetch failure the
// previously installed set stays visible.
func (l *LogBoard) Reload(ctx context.Context, tenantScope string, localOffsetMinutes int) (logengine.View, error) {
	records, err := l.client.FetchLogs(ctx, tenantScope)
	if err != nil {
		metrics.LogReloadsTotal.WithLabelValues("error").Inc()
		return l.board.Snapshot(), err
	}
	metrics.LogReloadsTotal.WithLabelValues("success").Inc()
	metrics.LogRecordsLoaded.Set(float64(len(records)))

	normalized, dropped := logengine.Normalize(records, localOffsetMinutes)
	if dropped > 0 {
		logger.Warn("丢弃时间戳无法解析的日志记录",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(normalized)),
		)
	}
	l.board.Replace(normalized)
	return l.board.Snapshot(), nil
}
