package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hazyhaar/floorspeech/pkg/match"
	"github.com/hazyhaar/floorspeech/pkg/metrics"
	"github.com/hazyhaar/floorspeech/pkg/record"
	"github.com/hazyhaar/floorspeech/pkg/roster"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testRegistry(t *testing.T) *roster.Registry {
	t.Helper()
	reg := roster.NewRegistry(t.TempDir())
	reg.Put(roster.FromFeed(117, []roster.Legislator{
		{Name: "Jim Jordan", FirstName: "Jim", LastName: "Jordan", State: "OH"},
		{Name: "Sheila Jackson Lee", FirstName: "Sheila", LastName: "Jackson Lee", State: "TX"},
	}, "lowercase_ascii"))
	reg.Put(roster.FromFeed(118, []roster.Legislator{
		{Name: "Jim Jordan", FirstName: "Jim", LastName: "Jordan", State: "OH"},
		{Name: "Nanette Diaz Barragán", FirstName: "Nanette", LastName: "Barragán", State: "CA"},
	}, "lowercase_ascii"))
	return reg
}

func doc(day time.Time, url, text string) record.Document {
	return record.Document{Text: text, IssueDate: day, SourceURL: url}
}

func TestRun(t *testing.T) {
	m := metrics.New()
	p := New(testRegistry(t), Options{Workers: 2, Metrics: m, Logger: quiet,
		Cascade: &match.Cascade{Logger: quiet, Exceptions: match.DefaultExceptions()}})

	docs := []record.Document{
		doc(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), "b",
			"Mr. JORDAN. Mr. Speaker, I yield.\nf \nMs. BARRAGAN of California. Madam Speaker, thanks."),
		doc(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), "a",
			"Ms. JACKSON LEE of Texas. Madam Speaker, I object."),
		doc(time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC), "old",
			"Mr. JORDAN. Mr. Speaker, too early."),
		doc(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "new",
			"Mr. JORDAN. Mr. Speaker, no roster yet."),
	}
	res, err := p.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Speeches != 5 {
		t.Errorf("speeches = %d, want 5", res.Speeches)
	}
	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", res.Skipped)
	}
	if len(res.Matched) != 3 {
		t.Fatalf("matched = %d, want 3: %+v", len(res.Matched), res.Matched)
	}
	// Sorted by issue date: the 2021 speech first.
	if res.Matched[0].Session != 117 || res.Matched[0].Legislator.Name != "sheila jackson lee" {
		t.Errorf("first = %+v", res.Matched[0])
	}
	if res.Matched[1].MatchedBy != "last_name" || res.Matched[2].MatchedBy != "state, last_name" {
		t.Errorf("tiers = %q, %q", res.Matched[1].MatchedBy, res.Matched[2].MatchedBy)
	}
	if len(res.Stats) != 2 || res.Stats[0].Session != 117 {
		t.Errorf("stats = %+v", res.Stats)
	}

	if got := testutil.ToFloat64(m.Documents); got != 4 {
		t.Errorf("documents metric = %v", got)
	}
	if got := testutil.ToFloat64(m.Matches.WithLabelValues("118", "last_name")); got != 1 {
		t.Errorf("matches metric = %v", got)
	}
}

func TestRun_Empty(t *testing.T) {
	p := New(testRegistry(t), Options{Logger: quiet})
	res, err := p.Run(context.Background(), []record.Document{doc(time.Now(), "x", "")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Speeches != 0 || len(res.Matched) != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestRun_SameDayDocumentsWithoutURL(t *testing.T) {
	p := New(testRegistry(t), Options{Logger: quiet, Cascade: &match.Cascade{Logger: quiet}})
	day := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	res, err := p.Run(context.Background(), []record.Document{
		doc(day, "", "Mr. JORDAN. Mr. Speaker, first document speech."),
		doc(day, "", "Mr. JORDAN. Mr. Speaker, second document, different speech."),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Speeches != 2 || len(res.Matched) != 2 {
		t.Fatalf("speeches = %d, matched = %d, want 2 and 2", res.Speeches, len(res.Matched))
	}
	bodies := map[string]bool{}
	for _, m := range res.Matched {
		bodies[m.Speech.Body] = true
	}
	for _, want := range []string{"first document speech.", "second document, different speech."} {
		if !bodies[want] {
			t.Errorf("missing body %q in %v", want, bodies)
		}
	}
}

func TestRun_MissingColumnAborts(t *testing.T) {
	reg := roster.NewRegistry(t.TempDir())
	reg.Put(roster.New(118, nil, []string{roster.ColName, roster.ColLastName}))
	p := New(reg, Options{Logger: quiet, Cascade: &match.Cascade{Logger: quiet}})

	_, err := p.Run(context.Background(), []record.Document{
		doc(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), "u", "Mr. JORDAN. Mr. Speaker, hi."),
	})
	if !errors.Is(err, match.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestSegment_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(testRegistry(t), Options{Workers: 1, Logger: quiet})
	_, err := p.Segment(ctx, []record.Document{doc(time.Now(), "u", "Mr. A. Mr. Speaker, b.")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestResolveSpeaker(t *testing.T) {
	p := New(testRegistry(t), Options{Logger: quiet, Cascade: &match.Cascade{Logger: quiet}})

	m, err := p.ResolveSpeaker(context.Background(), 118, "Mr. JORDAN of Ohio")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Legislator.Name != "jim jordan" || m.Score != 100 {
		t.Errorf("got %+v", m)
	}

	m, err = p.ResolveSpeaker(context.Background(), 118, "Mr.")
	if err != nil || m != nil {
		t.Errorf("unparsable fragment = %+v, %v", m, err)
	}

	if _, err := p.ResolveSpeaker(context.Background(), 101, "Mr. JORDAN"); !errors.Is(err, match.ErrNoRoster) {
		t.Errorf("err = %v, want ErrNoRoster", err)
	}
}
