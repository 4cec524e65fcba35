// CLAUDE:SUMMARY Congress numbering from term dates: floor((year-1789)/2)+1 with the January 3 handover rule.
package roster

import "time"

// SessionNumber returns the Congress a date belongs to. A January date before
// the 3rd, or January 3 itself when it is not a term start, still belongs to
// the previous Congress.
func SessionNumber(d time.Time, isStart bool) int {
	year := d.Year()
	if d.Month() == time.January {
		if d.Day() < 3 || (d.Day() == 3 && !isStart) {
			year--
		}
	}
	return (year-1789)/2 + 1
}

// SessionsServed lists every Congress between a term's start and end, inclusive.
// It is empty when the term ends before the first Congress it would open.
func SessionsServed(start, end time.Time) []int {
	first := SessionNumber(start, true)
	last := SessionNumber(end, false)
	if last < first {
		return []int{}
	}
	out := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, n)
	}
	return out
}
