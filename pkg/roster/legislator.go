// Package roster holds per-session legislator tables: loading them from
// manifest directories, building them from the public legislators feed and
// answering the key-uniqueness questions the match tiers ask.
package roster

import (
	"sort"
	"strings"

	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// Column names shared by roster files, the match tiers and the output table.
const (
	ColName      = "name"
	ColFirstName = "first_name"
	ColLastName  = "last_name"
	ColState     = "state"
	ColSessions  = "congress_numbers"
)

// RequiredColumns must be declared by every loaded roster.
var RequiredColumns = []string{ColName, ColFirstName, ColLastName, ColState}

// Legislator is one roster row: a legislator for one term.
type Legislator struct {
	Name      string            `json:"name" validate:"required"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name" validate:"required"`
	State     string            `json:"state"`
	Sessions  []int             `json:"congress_numbers,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Field returns the value of a named column.
func (l Legislator) Field(col string) string {
	switch col {
	case ColName:
		return l.Name
	case ColFirstName:
		return l.FirstName
	case ColLastName:
		return l.LastName
	case ColState:
		return l.State
	default:
		return l.Extra[col]
	}
}

// Serves reports whether the legislator sat in the given session.
func (l Legislator) Serves(session int) bool {
	for _, s := range l.Sessions {
		if s == session {
			return true
		}
	}
	return false
}

// ExtraKeys returns the biographical column names in sorted order.
func (l Legislator) ExtraKeys() []string {
	keys := make([]string, 0, len(l.Extra))
	for k := range l.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonical lowercases and transliterates the identity fields so they compare
// equal to parsed speaker fragments. Two-letter state codes are expanded.
func canonical(l Legislator, tr speaker.Transliterator) Legislator {
	l.Name = strings.Join(strings.Fields(tr(l.Name)), " ")
	l.FirstName = strings.TrimSpace(tr(l.FirstName))
	l.LastName = strings.TrimSpace(tr(l.LastName))
	state := strings.TrimSpace(l.State)
	if full, ok := StateName(state); ok {
		state = full
	}
	l.State = strings.ToLower(state)
	return l
}
