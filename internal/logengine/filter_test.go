package logengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(t *testing.T, records ...Record) []NormalizedRecord {
	t.Helper()
	out, dropped := Normalize(records, 0)
	require.Zero(t, dropped)
	return out
}

func TestFilter(t *testing.T) {
	set := normalized(t,
		Record{ID: "1", Level: LevelError, Action: "DB_WRITE", Message: "connection lost", UserEmail: "ops@acme.io", CreatedAt: "2024-01-02T10:00:00Z"},
		Record{ID: "2", Level: LevelWarn, Action: "LOGIN", Message: "slow response", IP: "10.0.0.9", CreatedAt: "2024-01-02T11:00:00Z"},
		Record{ID: "3", Level: LevelInfo, Action: "LOGIN", Message: "ok", CreatedAt: "2024-01-03T09:00:00Z"},
	)

	t.Run("empty criteria passes everything", func(t *testing.T) {
		assert.Len(t, Filter(set, FilterCriteria{}), 3)
	})

	t.Run("term matches message action email and ip case-insensitively", func(t *testing.T) {
		assert.Len(t, Filter(set, FilterCriteria{SearchTerm: "CONNECTION"}), 1)
		assert.Len(t, Filter(set, FilterCriteria{SearchTerm: "login"}), 2)
		assert.Len(t, Filter(set, FilterCriteria{SearchTerm: "ACME.IO"}), 1)
		assert.Len(t, Filter(set, FilterCriteria{SearchTerm: "10.0.0.9"}), 1)
		assert.Empty(t, Filter(set, FilterCriteria{SearchTerm: "nowhere"}))
	})

	t.Run("level filter", func(t *testing.T) {
		out := Filter(set, FilterCriteria{Level: LevelWarn})
		require.Len(t, out, 1)
		assert.Equal(t, "2", out[0].ID)
		assert.Len(t, Filter(set, FilterCriteria{Level: LevelAll}), 3)
	})

	t.Run("criteria combine with AND", func(t *testing.T) {
		out := Filter(set, FilterCriteria{SearchTerm: "login", Level: LevelWarn})
		require.Len(t, out, 1)
		assert.Equal(t, "2", out[0].ID)
	})

	t.Run("date bounds are inclusive whole days and independently optional", func(t *testing.T) {
		day2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		day3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

		assert.Len(t, Filter(set, FilterCriteria{StartDate: day3}), 1)
		assert.Len(t, Filter(set, FilterCriteria{EndDate: day2}), 2)
		assert.Len(t, Filter(set, FilterCriteria{StartDate: day2, EndDate: day3}), 3)
	})

	// Boundary behavior: one second before midnight stays inside the range,
	// one second after midnight falls out.
	t.Run("midnight boundary", func(t *testing.T) {
		boundary := normalized(t,
			Record{ID: "in", CreatedAt: "2024-01-01T23:59:59Z"},
			Record{ID: "out", CreatedAt: "2024-01-02T00:00:01Z"},
		)
		day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		got := Filter(boundary, FilterCriteria{StartDate: day1, EndDate: day1})
		require.Len(t, got, 1)
		assert.Equal(t, "in", got[0].ID)
	})

	t.Run("empty input is a valid empty result", func(t *testing.T) {
		assert.Empty(t, Filter(nil, FilterCriteria{SearchTerm: "x", Level: LevelError}))
	})
}
