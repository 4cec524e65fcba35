package record

import (
	"sort"
	"time"
)

// sessionStart is the first instant of a Congress.
type sessionStart struct {
	number int
	start  time.Time
}

func jan3(year int) time.Time { return time.Date(year, time.January, 3, 0, 0, 0, 0, time.UTC) }

// Each Congress opens on January 3 of an odd year. The last entry is open-ended.
var sessionCalendar = []sessionStart{
	{114, jan3(2015)},
	{115, jan3(2017)},
	{116, jan3(2019)},
	{117, jan3(2021)},
	{118, jan3(2023)},
	{119, jan3(2025)},
}

// SessionFor returns the Congress number whose [start, nextStart) interval
// contains t. Zero times and times before the calendar are absent.
func SessionFor(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	t = t.UTC()
	i := sort.Search(len(sessionCalendar), func(i int) bool {
		return sessionCalendar[i].start.After(t)
	})
	if i == 0 {
		return 0, false
	}
	return sessionCalendar[i-1].number, true
}

// Sessions lists the Congress numbers covered by the calendar, ascending.
func Sessions() []int {
	out := make([]int, len(sessionCalendar))
	for i, s := range sessionCalendar {
		out[i] = s.number
	}
	return out
}

// GroupBySession buckets speeches by Congress number. Speeches whose issue
// date falls outside the calendar are returned separately.
func GroupBySession(speeches []Speech) (map[int][]Speech, []Speech) {
	groups := make(map[int][]Speech)
	var unassigned []Speech
	for _, sp := range speeches {
		n, ok := SessionFor(sp.IssueDate)
		if !ok {
			unassigned = append(unassigned, sp)
			continue
		}
		groups[n] = append(groups[n], sp)
	}
	return groups, unassigned
}
