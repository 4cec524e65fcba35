// CLAUDE:SUMMARY Builds roster rows from the congress-legislators feed (current YAML, historical JSON) for target sessions.
package roster

import (
	"log/slog"
	"strconv"
	"time"
)

// FeedLegislator is one entry of the congress-legislators feed. The same
// shape is served as YAML (current) and JSON (historical).
type FeedLegislator struct {
	ID    FeedID     `yaml:"id" json:"id"`
	Name  FeedName   `yaml:"name" json:"name"`
	Bio   FeedBio    `yaml:"bio" json:"bio"`
	Terms []FeedTerm `yaml:"terms" json:"terms"`
}

// FeedID holds cross-reference identifiers.
type FeedID struct {
	Bioguide string `yaml:"bioguide" json:"bioguide"`
}

// FeedName is the name block of a feed entry.
type FeedName struct {
	First        string `yaml:"first" json:"first"`
	Middle       string `yaml:"middle" json:"middle"`
	Last         string `yaml:"last" json:"last"`
	OfficialFull string `yaml:"official_full" json:"official_full"`
}

// FeedBio is the biography block of a feed entry.
type FeedBio struct {
	Gender   string `yaml:"gender" json:"gender"`
	Birthday string `yaml:"birthday" json:"birthday"`
}

// FeedTerm is one term served.
type FeedTerm struct {
	Type     string `yaml:"type" json:"type"`
	Start    string `yaml:"start" json:"start"`
	End      string `yaml:"end" json:"end"`
	State    string `yaml:"state" json:"state"`
	District int    `yaml:"district" json:"district"`
	Party    string `yaml:"party" json:"party"`
}

const feedDate = "2006-01-02"

// Build turns feed entries into roster rows, one per term. Only the two most
// recent terms of each legislator are considered. When sessions is non-empty,
// terms overlapping none of them are skipped.
func Build(feed []FeedLegislator, sessions []int) []Legislator {
	want := make(map[int]bool, len(sessions))
	for _, s := range sessions {
		want[s] = true
	}

	var rows []Legislator
	var badTerms int
	for _, fl := range feed {
		terms := fl.Terms
		if len(terms) > 2 {
			terms = terms[len(terms)-2:]
		}
		for _, t := range terms {
			start, err1 := time.Parse(feedDate, t.Start)
			end, err2 := time.Parse(feedDate, t.End)
			if err1 != nil || err2 != nil {
				badTerms++
				continue
			}
			served := SessionsServed(start, end)
			if len(want) > 0 && !overlaps(served, want) {
				continue
			}
			rows = append(rows, fromTerm(fl, t, served))
		}
	}
	if badTerms > 0 {
		slog.Warn("feed terms with unparseable dates skipped", "terms", badTerms)
	}
	return rows
}

func fromTerm(fl FeedLegislator, t FeedTerm, served []int) Legislator {
	name := fl.Name.OfficialFull
	if name == "" {
		name = fl.Name.First + " " + fl.Name.Last
	}
	state, ok := StateName(t.State)
	if !ok {
		state = t.State
	}
	extra := map[string]string{
		"bioguide":   fl.ID.Bioguide,
		"gender":     orNA(fl.Bio.Gender),
		"birthday":   orNA(fl.Bio.Birthday),
		"type":       t.Type,
		"party":      t.Party,
		"start_date": t.Start,
		"end_date":   t.End,
	}
	if t.Type == "rep" {
		extra["district"] = strconv.Itoa(t.District)
	}
	return Legislator{
		Name:      name,
		FirstName: fl.Name.First,
		LastName:  fl.Name.Last,
		State:     state,
		Sessions:  served,
		Extra:     extra,
	}
}

// ForSession keeps the rows serving session, one per legislator. The first
// row of a bioguide id wins; rows without one are deduplicated by name.
func ForSession(rows []Legislator, session int) []Legislator {
	seen := make(map[string]bool)
	var out []Legislator
	for _, l := range rows {
		if !l.Serves(session) {
			continue
		}
		id := l.Extra["bioguide"]
		if id == "" {
			id = "name:" + l.Name
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, l)
	}
	return out
}

// FeedColumns lists the columns Build produces.
func FeedColumns() []string {
	return append(append([]string{}, RequiredColumns...),
		ColSessions, "bioguide", "gender", "birthday", "type", "party", "start_date", "end_date", "district")
}

func overlaps(served []int, want map[int]bool) bool {
	for _, s := range served {
		if want[s] {
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
