package flatten

import "slices"

// Stats describes a Flatten run.
type Stats struct {
	TotalMessages         int
	EmptyContentRemoved   int
	SystemMessagesRemoved int
	DuplicatesRemoved     int

	// OversizedRemoved counts rows dropped by the post-pass length filter (cleaning only).
	OversizedRemoved int

	FinalRows int

	// Content length figures are zero when FinalRows is zero.
	AvgContentLength float64
	MaxContentLength int

	Roles []RoleCount
}

// RoleCount is one entry of a role distribution.
type RoleCount struct {
	Role    string
	Count   int
	Percent float64
}

// HasRows reports whether the run produced any rows.
func (s Stats) HasRows() bool {
	return s.FinalRows > 0
}

// RetentionRate is the percentage of messages that made it into the table, 0 when no
// messages were seen.
func (s Stats) RetentionRate() float64 {
	if s.TotalMessages == 0 {
		return 0
	}
	return float64(s.FinalRows) / float64(s.TotalMessages) * 100
}

// Removed is the total number of messages dropped by all filters.
func (s Stats) Removed() int {
	return s.EmptyContentRemoved + s.SystemMessagesRemoved + s.DuplicatesRemoved + s.OversizedRemoved
}

func (s *Stats) summarize(rows []Row) {
	s.FinalRows = len(rows)
	s.AvgContentLength, s.MaxContentLength = contentLengths(rows)
	s.Roles = RoleDistribution(rows)
}

func contentLengths(rows []Row) (avg float64, longest int) {
	if len(rows) == 0 {
		return 0, 0
	}
	total := 0
	for _, r := range rows {
		total += r.ContentLength
		longest = max(longest, r.ContentLength)
	}
	return float64(total) / float64(len(rows)), longest
}

// RoleDistribution counts rows per role, most frequent first. Ties keep the order in which
// the roles first appear.
func RoleDistribution(rows []Row) []RoleCount {
	if len(rows) == 0 {
		return nil
	}
	index := make(map[string]int)
	var out []RoleCount
	for _, r := range rows {
		i, ok := index[r.Role]
		if !ok {
			i = len(out)
			index[r.Role] = i
			out = append(out, RoleCount{Role: r.Role})
		}
		out[i].Count++
	}
	for i := range out {
		out[i].Percent = float64(out[i].Count) / float64(len(rows)) * 100
	}
	slices.SortStableFunc(out, func(a, b RoleCount) int {
		return b.Count - a.Count
	})
	return out
}
