package logengine

import "time"

// trendBuckets is the fixed histogram width of the activity trend.
const trendBuckets = 20

// minTrendSpan keeps the histogram from degenerating into a single bucket
// when every record landed within the same instant.
const minTrendSpan = time.Hour

// ComputeStats counts severities over the full, unfiltered record set. The
// dashboard shows these numbers independently of the active filter, so the
// result only changes when the record set itself is replaced.
func ComputeStats(records []NormalizedRecord) Stats {
	s := Stats{Total: len(records)}
	for _, r := range records {
		switch r.Level {
		case LevelError:
			s.Errors++
		case LevelSecurity:
			s.Security++
		case LevelWarn:
			s.Warnings++
		}
	}
	return s
}

// SystemStatus classifies the platform health from the severity counts.
// Checked in strict priority order; the first matching rule wins.
func SystemStatus(s Stats) string {
	switch {
	case s.Errors > 0:
		return StatusCritical
	case s.Security > 0:
		return StatusAtRisk
	case s.Warnings > 5:
		return StatusDegraded
	default:
		return StatusOperational
	}
}

// ComputeTrend buckets the filtered records into a fixed-width activity
// histogram spanning oldest to newest, most recent bucket last. Heights are
// normalized against the fullest bucket so they always lie in [0, 1]. An
// empty input yields an empty (non-nil error free) result.
func ComputeTrend(filtered []NormalizedRecord) []TrendPoint {
	if len(filtered) == 0 {
		return nil
	}

	newest := filtered[0].DisplayAt
	oldest := filtered[0].DisplayAt
	for _, r := range filtered[1:] {
		if r.DisplayAt.After(newest) {
			newest = r.DisplayAt
		}
		if r.DisplayAt.Before(oldest) {
			oldest = r.DisplayAt
		}
	}

	span := newest.Sub(oldest)
	if span < minTrendSpan {
		span = minTrendSpan
	}
	width := span / trendBuckets

	counts := make([]int, trendBuckets)
	for _, r := range filtered {
		idx := int(newest.Sub(r.DisplayAt) / width)
		if idx < 0 {
			idx = 0
		}
		if idx > trendBuckets-1 {
			idx = trendBuckets - 1
		}
		counts[trendBuckets-1-idx]++
	}

	maxCount := 1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	points := make([]TrendPoint, trendBuckets)
	for i, c := range counts {
		points[i] = TrendPoint{X: i, Y: float64(c) / float64(maxCount)}
	}
	return points
}
