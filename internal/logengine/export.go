package logengine

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// csvHeader is the fixed export header row.
const csvHeader = "Last Seen,Repeat Count,Level,Action,Message,User,Tenant ID,IP,Country,Device"

// ExportCSV renders the groups to a UTF-8 CSV document, one row per group
// using the group's currently displayed field values (whatever history entry
// the operator last selected). Returns nil for an empty group list: no file
// is produced in that case. Message and device are quoted with internal
// quotes doubled; missing optionals render as "N/A" and a missing user as
// "Sistema".
func ExportCSV(groups []Group) []byte {
	if len(groups) == 0 {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString(csvHeader)
	buf.WriteByte('\n')

	for _, g := range groups {
		fields := []string{
			g.LastSeen.Format(time.RFC3339),
			strconv.Itoa(g.Count),
			g.Level,
			g.Action,
			quote(g.Message),
			orDefault(g.UserEmail, "Sistema"),
			orDefault(g.TenantID, "N/A"),
			orDefault(g.IP, "N/A"),
			orDefault(g.Country, "N/A"),
			quote(orDefault(g.Device, "N/A")),
		}
		buf.WriteString(strings.Join(fields, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ExportFilename builds the download name for the current export, encoding
// the active level filter and the given date: audit_<LEVEL>_<YYYY-MM-DD>.csv.
func ExportFilename(level string, now time.Time) string {
	if level == "" {
		level = LevelAll
	}
	return "audit_" + level + "_" + now.Format("2006-01-02") + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
