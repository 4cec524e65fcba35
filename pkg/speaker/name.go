// Package speaker decomposes speaker fragments such as "Mr. SMITH of Ohio"
// into state, first name and last name.
package speaker

import "strings"

// Parsed is a speaker fragment split into its identity fields.
// State and FirstName are empty when absent. LastName is never empty.
type Parsed struct {
	Raw       string `json:"raw"`
	Name      string `json:"name"`
	State     string `json:"state,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name"`
}

var courtesyTitles = map[string]bool{
	"mr.": true, "ms.": true, "mrs.": true, "miss": true,
	"mr": true, "ms": true, "mrs": true,
}

// Parser splits fragments using a configurable transliteration.
type Parser struct {
	translit Transliterator
}

// NewParser returns a parser for the given transliteration mode.
func NewParser(mode string) *Parser {
	return &Parser{translit: ForMode(mode)}
}

var defaultParser = NewParser("lowercase_ascii")

// Parse splits fragment with the default lowercase_ascii transliteration.
func Parse(fragment string) (Parsed, bool) {
	return defaultParser.Parse(fragment)
}

// Parse lowercases and transliterates fragment, then takes the text after
// the last " of " as the state and the text before the first " of " as the
// name. Only the first and last name tokens are kept. It reports false when
// no name token remains.
func (p *Parser) Parse(fragment string) (Parsed, bool) {
	s := strings.Join(strings.Fields(p.translit(fragment)), " ")

	var state string
	name := s
	if i := strings.Index(s, " of "); i >= 0 {
		name = s[:i]
		state = strings.Trim(s[strings.LastIndex(s, " of ")+len(" of "):], " .,;:")
	}

	var tokens []string
	for _, tok := range strings.Fields(name) {
		if len(tokens) == 0 && courtesyTitles[tok] {
			continue
		}
		if tok = strings.Trim(tok, ".,;:"); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return Parsed{}, false
	}

	out := Parsed{
		Raw:      fragment,
		Name:     strings.Join(tokens, " "),
		State:    state,
		LastName: tokens[len(tokens)-1],
	}
	if len(tokens) > 1 {
		out.FirstName = tokens[0]
	}
	return out, true
}

// HasState reports whether a jurisdiction clause was present.
func (p Parsed) HasState() bool { return p.State != "" }

// HasFirstName reports whether more than one name token was present.
func (p Parsed) HasFirstName() bool { return p.FirstName != "" }
