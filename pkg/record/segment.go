// CLAUDE:SUMMARY Salutation-driven speech segmenter: opener regex plus an ordered list of boundary closers.
package record

import (
	"regexp"
	"strings"
	"time"
)

const (
	courtesyTitle = `(Mr\.|Ms\.|Mrs\.|Miss)`
	speakerName   = `([A-Z]+(?:\s[A-Z]+)*)`
	jurisdiction  = `(of [\p{L}\p{N}_ ]*)?`
	salutation    = `\.?\s*(?:Mr\.|Madam)\s*Speaker`
)

// boundary is one closer alternative. A nil re means end of text.
type boundary struct {
	name string
	re   *regexp.Regexp
}

// Segmenter extracts speeches from normalized text.
type Segmenter struct {
	opener     *regexp.Regexp
	boundaries []boundary
}

// NewSegmenter compiles the opener and the closers in precedence order.
func NewSegmenter() *Segmenter {
	return &Segmenter{
		opener: regexp.MustCompile(`\b` + courtesyTitle + `\s+` + speakerName + `\s*` + jurisdiction + salutation + `,\s*`),
		boundaries: []boundary{
			{name: "pro_tempore", re: regexp.MustCompile(`\bThe SPEAKER pro tempore\b`)},
			{name: "reserve_time", re: regexp.MustCompile(courtesyTitle + `\s*Speaker,\s*I reserve the balance of my time`)},
			{name: "next_speaker", re: regexp.MustCompile(`\b` + courtesyTitle + `\s+` + speakerName + `\s*` + jurisdiction + salutation)},
			{name: "speaker_break", re: regexp.MustCompile(regexp.QuoteMeta(SpeakerBreak))},
			{name: "end_of_text"},
			{name: "caps_heading", re: regexp.MustCompile(`[A-Z]+\s+[A-Z]+\s+[A-Z]+\s+[A-Z]+\s+[A-Z]+`)},
		},
	}
}

// Boundaries returns closer names in precedence order.
func (s *Segmenter) Boundaries() []string {
	names := make([]string, len(s.boundaries))
	for i, b := range s.boundaries {
		names[i] = b.name
	}
	return names
}

// Segment returns one Speech per opener found in text, in text order.
// Text without any opener yields an empty, non-nil slice.
func (s *Segmenter) Segment(text string, issueDate time.Time, sourceURL string) []Speech {
	speeches := []Speech{}
	if text == "" {
		return speeches
	}

	space := DocumentSpace(text)
	pos := 0
	for _, loc := range s.opener.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] < pos {
			continue
		}
		bodyStart := loc[1]
		end, closer := s.closeAt(text, bodyStart)

		title := text[loc[2]:loc[3]]
		parts := []string{title, text[loc[4]:loc[5]]}
		if loc[6] >= 0 {
			if clause := strings.TrimSpace(text[loc[6]:loc[7]]); clause != "" {
				parts = append(parts, clause)
			}
		}

		speeches = append(speeches, Speech{
			ID:        SpeechID(space, sourceURL, issueDate, loc[0]),
			Title:     title,
			Speaker:   strings.Join(parts, " "),
			Body:      strings.TrimSpace(text[bodyStart:end]),
			IssueDate: issueDate,
			SourceURL: sourceURL,
			Offset:    loc[0],
			Boundary:  closer,
		})
		pos = end
	}
	return speeches
}

// closeAt finds where a body starting at from ends: the leftmost closer start,
// ties resolved by boundary order.
func (s *Segmenter) closeAt(text string, from int) (int, string) {
	best, bestName := -1, ""
	rest := text[from:]
	for _, b := range s.boundaries {
		at := len(text)
		if b.re != nil {
			loc := b.re.FindStringIndex(rest)
			if loc == nil {
				continue
			}
			at = from + loc[0]
		}
		if best < 0 || at < best {
			best, bestName = at, b.name
		}
	}
	return best, bestName
}

// SegmentDocument normalizes a document and segments it.
func (s *Segmenter) SegmentDocument(doc Document) []Speech {
	return s.Segment(Normalize(doc.Text), doc.IssueDate, doc.SourceURL)
}
