package logengine

import "sync"

// Board is the explicit view-state container behind the system-logs screen:
// the current normalized record set plus the active filter criteria and any
// per-group history selections. Every derived view (filtered list, groups,
// stats, trend, status) is recomputed from that state on demand; nothing is
// patched incrementally. Replace swaps the record set wholesale, so a racing
// reload resolves last-write-wins, which is acceptable for a user-initiated,
// infrequent action.
type Board struct {
	mu         sync.RWMutex
	records    []NormalizedRecord
	criteria   FilterCriteria
	selections map[string]string // group key -> selected record ID
	version    uint64
}

// View is one consistent snapshot of every derived projection.
type View struct {
	Version  uint64       `json:"version"`
	Total    int          `json:"total"`
	Filtered int          `json:"filtered"`
	Groups   []Group      `json:"groups"`
	Stats    Stats        `json:"stats"`
	Trend    []TrendPoint `json:"trend"`
	Status   string       `json:"status"`
}

// NewBoard creates an empty board with no records and no active filter.
func NewBoard() *Board {
	return &Board{selections: make(map[string]string)}
}

// Replace installs a freshly normalized record set, superseding the previous
// one atomically. History selections are reset: they referred to the old set.
func (b *Board) Replace(records []NormalizedRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = records
	b.selections = make(map[string]string)
	b.version++
}

// SetCriteria replaces the active filter criteria.
func (b *Board) SetCriteria(criteria FilterCriteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = criteria
}

// Criteria returns the active filter criteria.
func (b *Board) Criteria() FilterCriteria {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.criteria
}

// Version identifies the currently installed record set.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Select remembers a history selection for the group identified by action,
// message and level. The selection only affects the group's displayed
// context fields in subsequent snapshots; it reports false when no group in
// the current filtered view holds the entry.
func (b *Board) Select(action, message, level, entryID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := GroupKey(action, message, level)
	for _, g := range BuildGroups(Filter(b.records, b.criteria)) {
		if g.Key != key {
			continue
		}
		if SelectHistoryEntry(&g, entryID) {
			b.selections[key] = entryID
			return true
		}
		return false
	}
	return false
}

// Snapshot recomputes every derived view from the current state.
func (b *Board) Snapshot() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// snapshotLocked builds the view; callers must hold b.mu.
func (b *Board) snapshotLocked() View {
	filtered := Filter(b.records, b.criteria)
	groups := BuildGroups(filtered)
	for i := range groups {
		if id, ok := b.selections[groups[i].Key]; ok {
			SelectHistoryEntry(&groups[i], id)
		}
	}
	stats := ComputeStats(b.records)

	return View{
		Version:  b.version,
		Total:    len(b.records),
		Filtered: len(filtered),
		Groups:   groups,
		Stats:    stats,
		Trend:    ComputeTrend(filtered),
		Status:   SystemStatus(stats),
	}
}

// ExportSnapshot renders the current grouped view (selections applied) as
// CSV, along with the criteria that produced it. Both come from one critical
// section so the reported criteria always match the exported rows. Returns
// nil when there is nothing to export.
func (b *Board) ExportSnapshot() ([]byte, FilterCriteria) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	view := b.snapshotLocked()
	return ExportCSV(view.Groups), b.criteria
}
