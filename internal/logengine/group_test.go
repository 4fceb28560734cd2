package logengine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGroups(t *testing.T) {
	t.Run("two identical events collapse into one group", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "LOGIN", Message: "fail", Level: LevelWarn, CreatedAt: "2024-01-01T10:00:00Z", UserEmail: "old@acme.io"},
			Record{ID: "2", Action: "LOGIN", Message: "fail", Level: LevelWarn, CreatedAt: "2024-01-01T11:00:00Z", UserEmail: "new@acme.io"},
		)

		groups := BuildGroups(set)
		require.Len(t, groups, 1)
		g := groups[0]
		assert.Equal(t, 2, g.Count)
		assert.True(t, g.LastSeen.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)))
		// displayed fields come from the newest member
		assert.Equal(t, "new@acme.io", g.UserEmail)
		assert.Equal(t, "2", g.ActiveID)
	})

	t.Run("counts partition the filtered set exactly", func(t *testing.T) {
		var records []Record
		for i := 0; i < 30; i++ {
			records = append(records, Record{
				ID:        fmt.Sprintf("r%d", i),
				Action:    fmt.Sprintf("ACT_%d", i%4),
				Message:   fmt.Sprintf("msg %d", i%3),
				Level:     LevelInfo,
				CreatedAt: fmt.Sprintf("2024-01-01T%02d:00:00Z", i%24),
			})
		}
		set := normalized(t, records...)

		groups := BuildGroups(set)
		total := 0
		seen := make(map[string]bool)
		for _, g := range groups {
			total += g.Count
			assert.Len(t, g.History, g.Count)
			for _, e := range g.History {
				assert.False(t, seen[e.ID], "record %s appears in two groups", e.ID)
				seen[e.ID] = true
			}
		}
		assert.Equal(t, len(set), total)
	})

	t.Run("grouping is idempotent", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T10:00:00Z"},
			Record{ID: "2", Action: "B", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T11:00:00Z"},
			Record{ID: "3", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T12:00:00Z"},
		)

		assert.Equal(t, BuildGroups(set), BuildGroups(set))
	})

	t.Run("history within a group is newest first", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T08:00:00Z"},
			Record{ID: "2", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T12:00:00Z"},
			Record{ID: "3", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T10:00:00Z"},
		)

		groups := BuildGroups(set)
		require.Len(t, groups, 1)
		h := groups[0].History
		for i := 0; i+1 < len(h); i++ {
			assert.False(t, h[i].DisplayAt.Before(h[i+1].DisplayAt))
		}
	})

	t.Run("groups are ordered by last seen descending", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "OLD", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T08:00:00Z"},
			Record{ID: "2", Action: "NEW", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-02T08:00:00Z"},
			Record{ID: "3", Action: "MID", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T20:00:00Z"},
		)

		groups := BuildGroups(set)
		require.Len(t, groups, 3)
		for i := 0; i+1 < len(groups); i++ {
			assert.False(t, groups[i].LastSeen.Before(groups[i+1].LastSeen))
		}
		assert.Equal(t, "NEW", groups[0].Action)
	})

	t.Run("fields containing the old dash separator do not collide", func(t *testing.T) {
		set := normalized(t,
			Record{ID: "1", Action: "A-B", Message: "c", Level: LevelInfo, CreatedAt: "2024-01-01T10:00:00Z"},
			Record{ID: "2", Action: "A", Message: "B-c", Level: LevelInfo, CreatedAt: "2024-01-01T10:00:00Z"},
		)

		assert.Len(t, BuildGroups(set), 2)
	})

	t.Run("empty input yields no groups", func(t *testing.T) {
		assert.Empty(t, BuildGroups(nil))
	})
}

func TestExtractData(t *testing.T) {
	payload := map[string]any{"a": 1}
	metadata := map[string]any{"b": 2}

	assert.Equal(t, payload, ExtractData(Record{Payload: payload, Metadata: metadata}))
	assert.Equal(t, metadata, ExtractData(Record{Metadata: metadata}))
	assert.Nil(t, ExtractData(Record{}))
	// an object with zero own keys counts as absent
	assert.Nil(t, ExtractData(Record{Payload: map[string]any{}, Metadata: map[string]any{}}))
}

func TestSelectHistoryEntry(t *testing.T) {
	set := normalized(t,
		Record{ID: "1", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T08:00:00Z", UserEmail: "first@acme.io", IP: "1.1.1.1"},
		Record{ID: "2", Action: "A", Message: "m", Level: LevelInfo, CreatedAt: "2024-01-01T12:00:00Z", UserEmail: "second@acme.io", IP: "2.2.2.2"},
	)
	groups := BuildGroups(set)
	require.Len(t, groups, 1)
	g := groups[0]

	before := struct {
		count    int
		lastSeen time.Time
		history  int
	}{g.Count, g.LastSeen, len(g.History)}

	t.Run("selection changes display fields only", func(t *testing.T) {
		require.True(t, SelectHistoryEntry(&g, "1"))
		assert.Equal(t, "first@acme.io", g.UserEmail)
		assert.Equal(t, "1.1.1.1", g.IP)
		assert.Equal(t, "1", g.ActiveID)

		assert.Equal(t, before.count, g.Count)
		assert.True(t, g.LastSeen.Equal(before.lastSeen))
		assert.Len(t, g.History, before.history)
	})

	t.Run("selection is reversible", func(t *testing.T) {
		require.True(t, SelectHistoryEntry(&g, "2"))
		assert.Equal(t, "second@acme.io", g.UserEmail)
	})

	t.Run("unknown entry leaves the group untouched", func(t *testing.T) {
		assert.False(t, SelectHistoryEntry(&g, "missing"))
		assert.Equal(t, "second@acme.io", g.UserEmail)
	})
}
