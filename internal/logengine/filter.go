package logengine

import (
	"strings"
	"time"
)

// Filter returns the records matching criteria. It is a total, deterministic
// function: any input, including an empty slice, yields a valid (possibly
// empty) result, so it is safe to recompute on every criteria change.
func Filter(records []NormalizedRecord, criteria FilterCriteria) []NormalizedRecord {
	term := strings.ToLower(criteria.SearchTerm)
	level := criteria.Level
	if level == "" {
		level = LevelAll
	}

	var startBound, endBound time.Time
	if !criteria.StartDate.IsZero() {
		y, m, d := criteria.StartDate.Date()
		startBound = time.Date(y, m, d, 0, 0, 0, 0, criteria.StartDate.Location())
	}
	if !criteria.EndDate.IsZero() {
		y, m, d := criteria.EndDate.Date()
		endBound = time.Date(y, m, d, 23, 59, 59, 0, criteria.EndDate.Location())
	}

	out := make([]NormalizedRecord, 0, len(records))
	for _, r := range records {
		if term != "" && !matchesTerm(r, term) {
			continue
		}
		if level != LevelAll && r.Level != level {
			continue
		}
		if !startBound.IsZero() && r.DisplayAt.Before(startBound) {
			continue
		}
		if !endBound.IsZero() && r.DisplayAt.After(endBound) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesTerm reports whether the lowercased term occurs in the record's
// message, action, user email or IP. Absent optional fields participate as
// empty strings, mirroring the web console.
func matchesTerm(r NormalizedRecord, term string) bool {
	return strings.Contains(strings.ToLower(r.Message), term) ||
		strings.Contains(strings.ToLower(r.Action), term) ||
		strings.Contains(strings.ToLower(r.UserEmail), term) ||
		strings.Contains(strings.ToLower(r.IP), term)
}
