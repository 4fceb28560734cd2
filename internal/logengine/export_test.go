package logengine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	t.Run("empty groups produce no document", func(t *testing.T) {
		assert.Nil(t, ExportCSV(nil))
		assert.Nil(t, ExportCSV([]Group{}))
	})

	t.Run("renders header and one row per group", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "LOGIN", Message: "fail", Level: LevelWarn, CreatedAt: "2024-01-01T10:00:00Z", UserEmail: "ops@acme.io", TenantID: "t1", IP: "1.2.3.4", Country: "DE", Device: "Desktop"},
			Record{ID: "2", Action: "EXPORT", Message: "done", Level: LevelInfo, CreatedAt: "2024-01-01T11:00:00Z"},
		)

		out := ExportCSV(BuildGroups(set))
		require.NotNil(t, out)

		lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Last Seen,Repeat Count,Level,Action,Message,User,Tenant ID,IP,Country,Device", lines[0])
		// newest group first
		assert.Equal(t, `2024-01-01T11:00:00Z,1,INFO,EXPORT,"done",Sistema,N/A,N/A,N/A,"N/A"`, lines[1])
		assert.Equal(t, `2024-01-01T10:00:00Z,1,WARN,LOGIN,"fail",ops@acme.io,t1,1.2.3.4,DE,"Desktop"`, lines[2])
	})

	t.Run("doubles embedded quotes in message", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "SAY", Message: `He said "hi"`, Level: LevelInfo, CreatedAt: "2024-01-01T10:00:00Z"},
		)

		out := string(ExportCSV(BuildGroups(set)))
		assert.Contains(t, out, `"He said ""hi"""`)
	})

	t.Run("row uses the selected history entry", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T08:00:00Z", UserEmail: "selected@acme.io"},
			Record{ID: "2", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T09:00:00Z", UserEmail: "newest@acme.io"},
		)
		groups := BuildGroups(set)
		require.True(t, SelectHistoryEntry(&groups[0], "1"))

		out := string(ExportCSV(groups))
		assert.Contains(t, out, "selected@acme.io")
		assert.NotContains(t, out, "newest@acme.io")
	})
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 5, 6, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "audit_ERROR_2024-05-06.csv", ExportFilename(LevelError, now))
	assert.Equal(t, "audit_ALL_2024-05-06.csv", ExportFilename("", now))
}
