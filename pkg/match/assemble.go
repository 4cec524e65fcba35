// CLAUDE:SUMMARY Final merge of tier outputs: exact-duplicate removal, merge-only column drop, one legislator per speech, stable order.
package match

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// mergeOnlyColumns are roster fields that only exist to build the join.
var mergeOnlyColumns = []string{"term"}

// Finalize drops exact duplicate rows and merge-only roster columns, keeps
// the first legislator attached to each speech id and sorts by issue date,
// source URL and offset.
func Finalize(matched []Matched, logger *slog.Logger) []Matched {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]Matched, 0, len(matched))
	rows := make(map[string]bool, len(matched))
	owner := make(map[string]string, len(matched))
	for _, m := range matched {
		m = dropMergeOnly(m)
		key := rowKey(m)
		if rows[key] {
			continue
		}
		rows[key] = true

		who := legislatorKey(m)
		if prev, ok := owner[m.Speech.ID]; ok {
			if prev != who {
				logger.Warn("speech matched twice, keeping first",
					"speech_id", m.Speech.ID, "speaker", m.Speech.Speaker, "dropped", m.Legislator.Name, "matched_by", m.MatchedBy)
			}
			continue
		}
		owner[m.Speech.ID] = who
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Speech, out[j].Speech
		if !a.IssueDate.Equal(b.IssueDate) {
			return a.IssueDate.Before(b.IssueDate)
		}
		if a.SourceURL != b.SourceURL {
			return a.SourceURL < b.SourceURL
		}
		return a.Offset < b.Offset
	})
	return out
}

func dropMergeOnly(m Matched) Matched {
	var hit bool
	for _, c := range mergeOnlyColumns {
		if _, ok := m.Legislator.Extra[c]; ok {
			hit = true
		}
	}
	if !hit {
		return m
	}
	extra := make(map[string]string, len(m.Legislator.Extra))
	for k, v := range m.Legislator.Extra {
		extra[k] = v
	}
	for _, c := range mergeOnlyColumns {
		delete(extra, c)
	}
	m.Legislator.Extra = extra
	return m
}

func legislatorKey(m Matched) string {
	l := m.Legislator
	var b strings.Builder
	b.WriteString(l.Name + "\x1f" + l.FirstName + "\x1f" + l.LastName + "\x1f" + l.State)
	for _, k := range l.ExtraKeys() {
		b.WriteString("\x1f" + k + "=" + l.Extra[k])
	}
	return b.String()
}

// rowKey covers every output column.
func rowKey(m Matched) string {
	return strings.Join([]string{
		m.Speech.ID, m.Speech.Speaker, m.Speech.Body,
		legislatorKey(m), m.MatchedBy, strconv.Itoa(m.Score),
	}, "\x1e")
}
