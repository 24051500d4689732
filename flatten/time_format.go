package flatten

import (
	"math"
	"time"
)

// timestampISO8601 renders unix seconds as RFC 3339 UTC. Non-positive values are treated as
// unset so reports never show 1970-era dates.
func timestampISO8601(ts *float64) string {
	if ts == nil || *ts <= 0 {
		return ""
	}
	ns := int64(math.Round(*ts * 1e9))
	return time.Unix(0, ns).UTC().Format(time.RFC3339)
}

// timestampRange returns the earliest and latest positive timestamps among rows.
func timestampRange(rows []Row) (first, last *float64) {
	for _, r := range rows {
		if r.Timestamp == nil || *r.Timestamp <= 0 {
			continue
		}
		ts := *r.Timestamp
		if first == nil || ts < *first {
			first = &ts
		}
		if last == nil || ts > *last {
			last = &ts
		}
	}
	return first, last
}
