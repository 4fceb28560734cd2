package logengine

import "time"

// Known severity levels as emitted by the backend. The set is closed on the
// backend side, but records carrying an unrecognized level are preserved
// as-is rather than rejected.
const (
	LevelInfo     = "INFO"
	LevelWarn     = "WARN"
	LevelError    = "ERROR"
	LevelSecurity = "SECURITY"
	LevelAudit    = "AUDIT"
	LevelHTTP     = "HTTP"

	// LevelAll is the filter wildcard, never a record level.
	LevelAll = "ALL"
)

// Record is one audit event exactly as received from the backend log source.
// Payload and Metadata are free-form attachments; the backend populates at
// most one of them per record.
type Record struct {
	ID        string         `json:"id"`
	Level     string         `json:"level"`
	Action    string         `json:"action"`
	Message   string         `json:"message"`
	CreatedAt string         `json:"createdAt"` // ISO-8601, UTC
	UserEmail string         `json:"userEmail,omitempty"`
	TenantID  string         `json:"tenantId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Country   string         `json:"country,omitempty"`
	Device    string         `json:"device,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
}

// NormalizedRecord pairs a Record with its display instant: the parsed UTC
// instant shifted once, at fetch time, by the viewer's local offset. The
// shift is pinned legacy behavior inherited from the web console; it is not
// a timezone-correct conversion and must not be re-derived per viewer.
type NormalizedRecord struct {
	Record
	DisplayAt time.Time `json:"displayAt"`
}

// FilterCriteria selects a subset of the normalized records. Zero values
// impose no constraint: empty SearchTerm matches everything, Level ALL (or
// empty) matches every level, and a zero StartDate/EndDate leaves that side
// of the date range open.
type FilterCriteria struct {
	SearchTerm string
	Level      string
	StartDate  time.Time // local day, inclusive from 00:00:00
	EndDate    time.Time // local day, inclusive until 23:59:59
}

// HistoryEntry is one raw occurrence collapsed into a Group, paired with its
// extracted structured data (payload if non-empty, else metadata, else nil).
type HistoryEntry struct {
	NormalizedRecord
	Data map[string]any `json:"data"`
}

// Group is a deduplicated cluster of records sharing identical
// action+message+level. The displayed context fields mirror one member of
// History (the newest by default, or whichever entry the operator selected);
// Count, LastSeen and History are independent of that selection.
type Group struct {
	Key       string         `json:"-"`
	Action    string         `json:"action"`
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Count     int            `json:"count"`
	LastSeen  time.Time      `json:"lastSeen"`
	History   []HistoryEntry `json:"history"`
	Data      map[string]any `json:"data"`
	UserEmail string         `json:"userEmail,omitempty"`
	TenantID  string         `json:"tenantId,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Country   string         `json:"country,omitempty"`
	Device    string         `json:"device,omitempty"`
	ActiveID  string         `json:"activeLogId"`
}

// Stats are dashboard-wide severity counts over the unfiltered record set.
type Stats struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Security int `json:"security"`
	Warnings int `json:"warnings"`
}

// TrendPoint is one bucket of the activity histogram. Y is normalized to
// [0, 1] against the fullest bucket; X runs left to right with the most
// recent bucket last.
type TrendPoint struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// System status classifications derived from Stats, in strict priority order.
const (
	StatusCritical    = "CRITICAL"
	StatusAtRisk      = "AT-RISK"
	StatusDegraded    = "DEGRADED"
	StatusOperational = "OPERATIONAL"
)
