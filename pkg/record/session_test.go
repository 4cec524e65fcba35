package record

import (
	"testing"
	"time"
)

func TestSessionFor(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	tests := []struct {
		name string
		t    time.Time
		want int
		ok   bool
	}{
		{"zero", time.Time{}, 0, false},
		{"before calendar", time.Date(2015, 1, 2, 23, 59, 0, 0, time.UTC), 0, false},
		{"first day", time.Date(2015, 1, 3, 0, 0, 0, 0, time.UTC), 114, true},
		{"end of 114", time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC), 114, true},
		{"day before 115", time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC), 114, true},
		{"start of 115", time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC), 115, true},
		{"offset zone", time.Date(2017, 1, 3, 2, 0, 0, 0, est), 115, true},
		{"mid 118", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 118, true},
		{"start of 119", time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), 119, true},
		{"open ended", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), 119, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SessionFor(tt.t)
			if got != tt.want || ok != tt.ok {
				t.Errorf("SessionFor(%v) = %d, %v; want %d, %v", tt.t, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGroupBySession(t *testing.T) {
	speeches := []Speech{
		{ID: "a", IssueDate: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", IssueDate: time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c", IssueDate: time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)},
		{ID: "d"},
	}
	groups, rest := GroupBySession(speeches)
	if len(groups[116]) != 2 || len(groups[118]) != 1 {
		t.Errorf("groups = %v", groups)
	}
	if len(rest) != 1 || rest[0].ID != "d" {
		t.Errorf("unassigned = %v", rest)
	}
}

func TestSessions(t *testing.T) {
	got := Sessions()
	if got[0] != 114 || got[len(got)-1] != 119 {
		t.Errorf("Sessions() = %v", got)
	}
}
