package logengine

import (
	"sort"
	"time"
)

// Normalize parses every record's CreatedAt as a UTC instant and attaches the
// display instant (parsed instant minus localOffsetMinutes). Records whose
// timestamp cannot be parsed are dropped rather than failing the whole batch;
// the count of dropped records is returned so the caller can surface a
// warning. The result is sorted newest-first by display instant and must be
// treated as immutable: a refetch replaces the whole slice, never patches it.
func Normalize(records []Record, localOffsetMinutes int) ([]NormalizedRecord, int) {
	out := make([]NormalizedRecord, 0, len(records))
	dropped := 0
	offset := time.Duration(localOffsetMinutes) * time.Minute

	for _, r := range records {
		t, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, NormalizedRecord{
			Record:    r,
			DisplayAt: t.Add(-offset),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayAt.After(out[j].DisplayAt)
	})
	return out, dropped
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds, plus
// the bare "2006-01-02T15:04:05" shape some backend revisions emit (taken as
// UTC).
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
