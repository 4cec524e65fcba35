// CLAUDE:SUMMARY Read-only per-session legislator table with declared columns and key-uniqueness queries for the exact match tiers.
package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// ErrMissingColumn reports a roster that lacks a column a caller needs.
var ErrMissingColumn = errors.New("roster: missing required column")

// Roster is the ordered legislator table of one session.
// It is never mutated after construction.
type Roster struct {
	Manifest    *Manifest
	Session     int
	Legislators []Legislator
	columns     map[string]bool
}

// New builds a roster from rows already in canonical form (lower-case,
// transliterated). columns declares which fields the rows carry.
func New(session int, rows []Legislator, columns []string) *Roster {
	r := &Roster{
		Session:     session,
		Legislators: rows,
		columns:     make(map[string]bool, len(columns)),
	}
	for _, c := range columns {
		r.columns[c] = true
	}
	return r
}

// FromFeed builds a roster from raw rows, canonicalizing names with the given
// transliteration mode. All standard columns are declared.
func FromFeed(session int, rows []Legislator, mode string) *Roster {
	tr := speaker.ForMode(mode)
	out := make([]Legislator, len(rows))
	cols := map[string]bool{}
	for i, l := range rows {
		out[i] = canonical(l, tr)
		for k := range l.Extra {
			cols[k] = true
		}
	}
	columns := append([]string{}, RequiredColumns...)
	columns = append(columns, ColSessions)
	for k := range cols {
		columns = append(columns, k)
	}
	return New(session, out, columns)
}

// Len returns the number of rows.
func (r *Roster) Len() int { return len(r.Legislators) }

// Columns returns the declared column names, sorted.
func (r *Roster) Columns() []string {
	out := make([]string, 0, len(r.columns))
	for c := range r.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// RequireColumns returns an ErrMissingColumn error naming every absent column.
func (r *Roster) RequireColumns(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !r.columns[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (session %d)", ErrMissingColumn, strings.Join(missing, ", "), r.Session)
	}
	return nil
}

// Key joins the values of cols for row i.
func (r *Roster) Key(i int, cols []string) string {
	return KeyOf(r.Legislators[i].Field, cols)
}

// KeyOf joins the values returned by field for cols into one lookup key.
func KeyOf(field func(string) string, cols []string) string {
	vals := make([]string, len(cols))
	for i, c := range cols {
		vals[i] = field(c)
	}
	return strings.Join(vals, "\x1f")
}

// UniqueBy indexes the rows whose key tuple over cols occurs exactly once.
// Rows sharing a tuple are left out entirely.
func (r *Roster) UniqueBy(cols ...string) map[string]int {
	seen := make(map[string]int, len(r.Legislators))
	dup := make(map[string]bool)
	for i := range r.Legislators {
		k := r.Key(i, cols)
		if _, ok := seen[k]; ok {
			dup[k] = true
			continue
		}
		seen[k] = i
	}
	for k := range dup {
		delete(seen, k)
	}
	return seen
}

// InState returns the indices of rows for a state, in roster order.
func (r *Roster) InState(state string) []int {
	var out []int
	for i, l := range r.Legislators {
		if l.State == state {
			out = append(out, i)
		}
	}
	return out
}
