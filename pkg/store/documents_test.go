package store

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReadDocuments(t *testing.T) {
	in := "content,issueDate,pdf_url\n" +
		"\"Mr. SMITH of Ohio. Mr. Speaker,\nI yield.\",2024-01-09T05:00:00Z,https://example.gov/a.pdf\n" +
		"second,2023-02-01,https://example.gov/b.pdf\n"
	docs, err := ReadDocuments(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if !strings.Contains(docs[0].Text, "\nI yield.") {
		t.Errorf("multi-line text lost: %q", docs[0].Text)
	}
	if !docs[0].IssueDate.Equal(time.Date(2024, 1, 9, 5, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", docs[0].IssueDate)
	}
	if docs[1].SourceURL != "https://example.gov/b.pdf" || docs[1].IssueDate.Day() != 1 {
		t.Errorf("doc 1 = %+v", docs[1])
	}
}

func TestReadDocuments_Aliases(t *testing.T) {
	in := "\ufefftext,issue_date,sourceUrl\nbody,2021-03-04,u\n"
	docs, err := ReadDocuments(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if docs[0].Text != "body" || docs[0].SourceURL != "u" {
		t.Errorf("got %+v", docs[0])
	}
}

func TestReadDocuments_Errors(t *testing.T) {
	tests := []struct {
		name, in string
		missing  bool
	}{
		{"no text column", "issueDate,pdf_url\n2024-01-01,u\n", true},
		{"no date column", "content,pdf_url\nx,u\n", true},
		{"bad date", "content,issueDate\nx,yesterday\n", false},
		{"empty input", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocuments(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.missing && !errors.Is(err, ErrMissingColumn) {
				t.Errorf("err = %v, want ErrMissingColumn", err)
			}
		})
	}
}

func TestReadDocumentsJSON(t *testing.T) {
	in := `[{"text":"Mr. A. Mr. Speaker, b.","issue_date":"2024-01-09T00:00:00Z","source_url":"u"}]`
	docs, err := ReadDocumentsJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadDocumentsJSON: %v", err)
	}
	if len(docs) != 1 || docs[0].SourceURL != "u" || docs[0].IssueDate.Year() != 2024 {
		t.Errorf("got %+v", docs)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"2024-01-09", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
		{"2024-01-09T00:00:00-05:00", time.Date(2024, 1, 9, 5, 0, 0, 0, time.UTC)},
		{"2024-01-09 12:30:00", time.Date(2024, 1, 9, 12, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
