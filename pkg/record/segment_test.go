package record

import (
	"testing"
	"time"
)

var testDate = time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)

func TestSegment(t *testing.T) {
	seg := NewSegmenter()
	tests := []struct {
		name     string
		text     string
		speakers []string
		bodies   []string
		closers  []string
	}{
		{
			name:     "single with jurisdiction",
			text:     "Mr. SMITH of Ohio. Mr. Speaker, I yield.",
			speakers: []string{"Mr. SMITH of Ohio"},
			bodies:   []string{"I yield."},
			closers:  []string{"end_of_text"},
		},
		{
			name:     "consecutive openers",
			text:     "Mr. SMITH of Ohio. Mr. Speaker, I rise today. Ms. JONES. Madam Speaker, I thank the gentleman.",
			speakers: []string{"Mr. SMITH of Ohio", "Ms. JONES"},
			bodies:   []string{"I rise today.", "I thank the gentleman."},
			closers:  []string{"next_speaker", "end_of_text"},
		},
		{
			name:     "speaker break is hard",
			text:     "Mr. SMITH. Mr. Speaker, first part <SPEAKER_BREAK> trailing text here.",
			speakers: []string{"Mr. SMITH"},
			bodies:   []string{"first part"},
			closers:  []string{"speaker_break"},
		},
		{
			name:     "pro tempore",
			text:     "Mrs. LEE. Madam Speaker, I yield back. The SPEAKER pro tempore. The gentlewoman yields back.",
			speakers: []string{"Mrs. LEE"},
			bodies:   []string{"I yield back."},
			closers:  []string{"pro_tempore"},
		},
		{
			name:     "reserve time",
			text:     "Mr. DOE. Mr. Speaker, I support this bill. Mr. Speaker, I reserve the balance of my time.",
			speakers: []string{"Mr. DOE"},
			bodies:   []string{"I support this bill."},
			closers:  []string{"reserve_time"},
		},
		{
			name:     "caps heading",
			text:     "Mr. KING. Mr. Speaker, thanks. NATIONAL DEFENSE AUTHORIZATION ACT FOR FISCAL YEAR",
			speakers: []string{"Mr. KING"},
			bodies:   []string{"thanks."},
			closers:  []string{"caps_heading"},
		},
		{
			name:     "multi word name",
			text:     "Ms. JACKSON LEE of Texas. Madam Speaker, I object.",
			speakers: []string{"Ms. JACKSON LEE of Texas"},
			bodies:   []string{"I object."},
			closers:  []string{"end_of_text"},
		},
		{
			name:     "empty body kept",
			text:     "Mr. SMITH. Mr. Speaker, <SPEAKER_BREAK> Mr. JONES. Mr. Speaker, hello",
			speakers: []string{"Mr. SMITH", "Mr. JONES"},
			bodies:   []string{"", "hello"},
			closers:  []string{"speaker_break", "end_of_text"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Segment(tt.text, testDate, "https://example.gov/a.pdf")
			if len(got) != len(tt.speakers) {
				t.Fatalf("got %d speeches, want %d: %+v", len(got), len(tt.speakers), got)
			}
			for i, sp := range got {
				if sp.Speaker != tt.speakers[i] {
					t.Errorf("[%d] speaker = %q, want %q", i, sp.Speaker, tt.speakers[i])
				}
				if sp.Body != tt.bodies[i] {
					t.Errorf("[%d] body = %q, want %q", i, sp.Body, tt.bodies[i])
				}
				if sp.Boundary != tt.closers[i] {
					t.Errorf("[%d] boundary = %q, want %q", i, sp.Boundary, tt.closers[i])
				}
				if !sp.IssueDate.Equal(testDate) || sp.SourceURL != "https://example.gov/a.pdf" {
					t.Errorf("[%d] provenance not copied: %+v", i, sp)
				}
			}
		})
	}
}

func TestSegment_NoOpener(t *testing.T) {
	seg := NewSegmenter()
	for _, text := range []string{"", "The House met at noon and was called to order."} {
		got := seg.Segment(text, testDate, "u")
		if got == nil || len(got) != 0 {
			t.Errorf("Segment(%q) = %#v, want empty non-nil", text, got)
		}
	}
}

func TestSegment_StableIDs(t *testing.T) {
	seg := NewSegmenter()
	text := "Mr. SMITH. Mr. Speaker, one. Mr. JONES. Mr. Speaker, two."
	a := seg.Segment(text, testDate, "u")
	b := seg.Segment(text, testDate, "u")
	if a[0].ID != b[0].ID || a[1].ID != b[1].ID {
		t.Error("ids differ between runs")
	}
	if a[0].ID == a[1].ID {
		t.Error("distinct speeches share an id")
	}
	if c := seg.Segment(text, testDate, "v"); c[0].ID == a[0].ID {
		t.Error("different source produced same id")
	}
}

func TestSegment_SameSourceDifferentText(t *testing.T) {
	seg := NewSegmenter()
	a := seg.Segment("Mr. JORDAN. Mr. Speaker, first text.", testDate, "")
	b := seg.Segment("Mr. JORDAN. Mr. Speaker, other text.", testDate, "")
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("got %d and %d speeches", len(a), len(b))
	}
	if a[0].Offset != b[0].Offset {
		t.Fatalf("offsets differ: %d, %d", a[0].Offset, b[0].Offset)
	}
	if a[0].ID == b[0].ID {
		t.Error("speeches of different documents share an id")
	}
}

func TestSegmentDocument_Normalizes(t *testing.T) {
	seg := NewSegmenter()
	doc := Document{
		Text:      "Mr. SMITH of Ohio. Mr. Speaker, I rise in sup-\nport.\nf \nMs. JONES. Madam Speaker, thanks.",
		IssueDate: testDate,
		SourceURL: "u",
	}
	got := seg.SegmentDocument(doc)
	if len(got) != 2 {
		t.Fatalf("got %d speeches", len(got))
	}
	if got[0].Body != "I rise in support." {
		t.Errorf("body = %q", got[0].Body)
	}
	if got[0].Boundary != "speaker_break" {
		t.Errorf("boundary = %q", got[0].Boundary)
	}
}

func TestBoundaries_Order(t *testing.T) {
	want := []string{"pro_tempore", "reserve_time", "next_speaker", "speaker_break", "end_of_text", "caps_heading"}
	got := NewSegmenter().Boundaries()
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
