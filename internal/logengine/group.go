package logengine

import "sort"

// keySeparator joins the fields of the deduplication key. NUL cannot occur in
// action, message or level, so key collisions between different field
// combinations are impossible.
const keySeparator = "\x00"

// GroupKey builds the deduplication identity for a record: two records with
// identical action, message and level belong to the same group.
func GroupKey(action, message, level string) string {
	return action + keySeparator + message + keySeparator + level
}

// BuildGroups collapses the filtered records into deduplicated groups. The
// input is expected newest-first (the Normalize ordering). Each group's
// history is sorted newest-first, the displayed context fields come from the
// newest member, and the groups themselves are ordered by LastSeen
// descending. The sum of all group counts always equals len(filtered).
func BuildGroups(filtered []NormalizedRecord) []Group {
	index := make(map[string]int, len(filtered))
	groups := make([]Group, 0)

	for _, r := range filtered {
		key := GroupKey(r.Action, r.Message, r.Level)
		entry := HistoryEntry{NormalizedRecord: r, Data: ExtractData(r.Record)}

		if i, ok := index[key]; ok {
			g := &groups[i]
			g.Count++
			g.History = append(g.History, entry)
			if r.DisplayAt.After(g.LastSeen) {
				g.LastSeen = r.DisplayAt
			}
			continue
		}

		index[key] = len(groups)
		groups = append(groups, Group{
			Key:      key,
			Action:   r.Action,
			Message:  r.Message,
			Level:    r.Level,
			Count:    1,
			LastSeen: r.DisplayAt,
			History:  []HistoryEntry{entry},
		})
	}

	for i := range groups {
		g := &groups[i]
		sort.SliceStable(g.History, func(a, b int) bool {
			return g.History[a].DisplayAt.After(g.History[b].DisplayAt)
		})
		applyEntry(g, g.History[0])
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].LastSeen.After(groups[b].LastSeen)
	})
	return groups
}

// SelectHistoryEntry re-derives the group's displayed context fields from the
// history entry with the given record ID. It is purely a view-state change:
// count, last-seen, membership and ordering are untouched. Selecting an
// unknown ID leaves the group as it is and reports false.
func SelectHistoryEntry(g *Group, entryID string) bool {
	for _, e := range g.History {
		if e.ID == entryID {
			applyEntry(g, e)
			return true
		}
	}
	return false
}

// applyEntry copies one history entry's context into the group's displayed
// fields.
func applyEntry(g *Group, e HistoryEntry) {
	g.Data = e.Data
	g.UserEmail = e.UserEmail
	g.TenantID = e.TenantID
	g.IP = e.IP
	g.Country = e.Country
	g.Device = e.Device
	g.ActiveID = e.ID
}

// ExtractData resolves a record's structured attachment: payload when it has
// at least one key, else metadata when it has at least one key, else nil.
func ExtractData(r Record) map[string]any {
	if len(r.Payload) > 0 {
		return r.Payload
	}
	if len(r.Metadata) > 0 {
		return r.Metadata
	}
	return nil
}
