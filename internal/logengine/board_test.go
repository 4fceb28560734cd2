package logengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard(t *testing.T) {
	firstBatch := func() []NormalizedRecord {
		return normalized(t,
			Record{ID: "1", Action: "LOGIN", Message: "fail", Level: LevelWarn, CreatedAt: "2024-01-01T10:00:00Z", UserEmail: "a@acme.io"},
			Record{ID: "2", Action: "LOGIN", Message: "fail", Level: LevelWarn, CreatedAt: "2024-01-01T11:00:00Z", UserEmail: "b@acme.io"},
			Record{ID: "3", Action: "BOOT", Message: "ok", Level: LevelInfo, CreatedAt: "2024-01-01T09:00:00Z"},
		)
	}

	t.Run("empty board snapshots cleanly", func(t *testing.T) {
		view := NewBoard().Snapshot()
		assert.Zero(t, view.Total)
		assert.Empty(t, view.Groups)
		assert.Empty(t, view.Trend)
		assert.Equal(t, StatusOperational, view.Status)
	})

	t.Run("replace installs a new set and bumps the version", func(t *testing.T) {
		b := NewBoard()
		b.Replace(firstBatch())
		view := b.Snapshot()

		assert.Equal(t, uint64(1), view.Version)
		assert.Equal(t, 3, view.Total)
		assert.Len(t, view.Groups, 2)

		b.Replace(nil)
		assert.Equal(t, uint64(2), b.Version())
		assert.Zero(t, b.Snapshot().Total)
	})

	t.Run("criteria narrow the grouped view but not the stats", func(t *testing.T) {
		b := NewBoard()
		b.Replace(firstBatch())
		b.SetCriteria(FilterCriteria{Level: LevelWarn})

		view := b.Snapshot()
		assert.Equal(t, 2, view.Filtered)
		assert.Len(t, view.Groups, 1)
		assert.Equal(t, Stats{Total: 3, Warnings: 2}, view.Stats)
	})

	t.Run("selection persists across snapshots", func(t *testing.T) {
		b := NewBoard()
		b.Replace(firstBatch())

		require.True(t, b.Select("LOGIN", "fail", LevelWarn, "1"))

		for i := 0; i < 2; i++ {
			view := b.Snapshot()
			require.Len(t, view.Groups, 2)
			assert.Equal(t, "a@acme.io", view.Groups[0].UserEmail)
			assert.Equal(t, "1", view.Groups[0].ActiveID)
			// selection never mutates the aggregate values
			assert.Equal(t, 2, view.Groups[0].Count)
		}
	})

	t.Run("selection of unknown group or entry is rejected", func(t *testing.T) {
		b := NewBoard()
		b.Replace(firstBatch())

		assert.False(t, b.Select("LOGIN", "fail", LevelWarn, "404"))
		assert.False(t, b.Select("NOPE", "fail", LevelWarn, "1"))
	})

	t.Run("replace clears stale selections", func(t *testing.T) {
		b := NewBoard()
		b.Replace(firstBatch())
		require.True(t, b.Select("LOGIN", "fail", LevelWarn, "1"))

		b.Replace(firstBatch())
		view := b.Snapshot()
		assert.Equal(t, "2", view.Groups[0].ActiveID)
	})

	t.Run("export snapshot honors filter and selection", func(t *testing.T) {
		b := NewBoard()
		b.Replace(firstBatch())
		b.SetCriteria(FilterCriteria{Level: LevelWarn})
		require.True(t, b.Select("LOGIN", "fail", LevelWarn, "1"))

		data, criteria := b.ExportSnapshot()
		require.NotNil(t, data)
		assert.Contains(t, string(data), "a@acme.io")
		assert.Equal(t, LevelWarn, criteria.Level)

		b.SetCriteria(FilterCriteria{SearchTerm: "matches-nothing"})
		data, _ = b.ExportSnapshot()
		assert.Nil(t, data)
	})

	t.Run("export rows always match the criteria returned with them", func(t *testing.T) {
		b := NewBoard()
		b.Replace(normalized(t,
			Record{ID: "1", Action: "LOGIN", Message: "denied", Level: LevelError, CreatedAt: "2024-01-01T10:00:00Z"},
			Record{ID: "2", Action: "BOOT", Message: "ok", Level: LevelInfo, CreatedAt: "2024-01-01T11:00:00Z"},
		))

		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			levels := []string{LevelError, LevelInfo}
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
					b.SetCriteria(FilterCriteria{Level: levels[i%2]})
				}
			}
		}()

		for i := 0; i < 200; i++ {
			data, criteria := b.ExportSnapshot()
			if data == nil {
				continue
			}
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			for _, line := range lines[1:] {
				fields := strings.Split(line, ",")
				require.Greater(t, len(fields), 3)
				assert.Equal(t, criteria.Level, fields[2])
			}
		}
		close(stop)
		<-done
	})
}
