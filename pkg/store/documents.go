// Package store reads document tables and persists attributed speeches as
// CSV files or in SQLite.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hazyhaar/floorspeech/pkg/record"
)

// ErrMissingColumn reports a document table without a required column.
var ErrMissingColumn = errors.New("store: missing document column")

// Accepted header aliases, first match wins.
var (
	textColumns = []string{"content", "text"}
	dateColumns = []string{"issueDate", "issue_date"}
	urlColumns  = []string{"pdf_url", "sourceUrl", "source_url"}
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and plain dates. Empty is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ReadDocuments reads a CSV document table with a header row. The text and
// date columns are required; the source URL column is optional.
func ReadDocuments(r io.Reader) ([]record.Document, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read document header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	textIdx, dateIdx, urlIdx := column(header, textColumns), column(header, dateColumns), column(header, urlColumns)
	if textIdx < 0 {
		return nil, fmt.Errorf("%w: one of %v", ErrMissingColumn, textColumns)
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: one of %v", ErrMissingColumn, dateColumns)
	}

	var docs []record.Document
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read document row %d: %w", line, err)
		}
		doc := record.Document{Text: field(rec, textIdx), SourceURL: strings.TrimSpace(field(rec, urlIdx))}
		if doc.IssueDate, err = ParseDate(field(rec, dateIdx)); err != nil {
			return nil, fmt.Errorf("document row %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadDocumentsJSON reads a JSON array of documents.
func ReadDocumentsJSON(r io.Reader) ([]record.Document, error) {
	var docs []record.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

func column(header []string, names []string) int {
	for _, n := range names {
		for i, h := range header {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
