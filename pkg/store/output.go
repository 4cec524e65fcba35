// CLAUDE:SUMMARY CSV writer for the attributed-speech table: speech, parsed speaker, legislator fields, tier and score.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/hazyhaar/floorspeech/pkg/match"
)

var leadingColumns = []string{
	"speech_id", "congress_number", "issue_date", "source_url", "speaker", "speech",
	"state", "first_name", "last_name",
	"name", "legislator_first_name", "legislator_last_name", "legislator_state",
}

var trailingColumns = []string{"matched_by", "similarity_score"}

// OutputColumns returns the header for rows: fixed columns, then every
// biographical column any legislator carries (sorted), then tier and score.
func OutputColumns(rows []match.Matched) []string {
	extra := extraColumns(rows)
	cols := make([]string, 0, len(leadingColumns)+len(extra)+len(trailingColumns))
	cols = append(cols, leadingColumns...)
	cols = append(cols, extra...)
	return append(cols, trailingColumns...)
}

// WriteMatched writes rows as CSV with a header.
func WriteMatched(w io.Writer, rows []match.Matched) error {
	extra := extraColumns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(OutputColumns(rows)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range rows {
		rec := []string{
			m.Speech.ID, strconv.Itoa(m.Session), formatDate(m.Speech.IssueDate), m.Speech.SourceURL,
			m.Speech.Speaker, m.Speech.Body,
			m.Parsed.State, m.Parsed.FirstName, m.Parsed.LastName,
			m.Legislator.Name, m.Legislator.FirstName, m.Legislator.LastName, m.Legislator.State,
		}
		for _, c := range extra {
			rec = append(rec, m.Legislator.Extra[c])
		}
		rec = append(rec, m.MatchedBy, strconv.Itoa(m.Score))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", m.Speech.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func extraColumns(rows []match.Matched) []string {
	set := make(map[string]bool)
	for _, m := range rows {
		for k := range m.Legislator.Extra {
			set[k] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
