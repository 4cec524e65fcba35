package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/floorspeech/pkg/record"
	"github.com/hazyhaar/floorspeech/pkg/roster"
	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func leg(name, first, last, state string) roster.Legislator {
	return roster.Legislator{Name: name, FirstName: first, LastName: last, State: state,
		Extra: map[string]string{"bioguide": strings.ReplaceAll(name, " ", "_")}}
}

func newRoster(rows ...roster.Legislator) *roster.Roster {
	return roster.New(118, rows, roster.RequiredColumns)
}

// candidates segments text and parses every speaker, like the pipeline does.
func candidates(t *testing.T, text string) []Candidate {
	t.Helper()
	date := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	var out []Candidate
	for _, sp := range record.NewSegmenter().Segment(text, date, "https://example.gov/h.pdf") {
		p, ok := speaker.Parse(sp.Speaker)
		if !ok {
			continue
		}
		out = append(out, Candidate{Speech: sp, Parsed: p})
	}
	if len(out) == 0 {
		t.Fatalf("no candidates in %q", text)
	}
	return out
}

func resolve(t *testing.T, c *Cascade, text string, ro *roster.Roster) ([]Matched, Stats) {
	t.Helper()
	if c.Logger == nil {
		c.Logger = quiet
	}
	out, stats, err := c.ResolveWithStats(context.Background(), 118, candidates(t, text), ro)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return out, stats
}

func TestResolve_ScenarioA_StateLast(t *testing.T) {
	ro := newRoster(
		leg("john smith", "john", "smith", "ohio"),
		leg("mary smith", "mary", "smith", "texas"),
		leg("jim jordan", "jim", "jordan", "ohio"),
	)
	out, _ := resolve(t, &Cascade{}, "Mr. SMITH of Ohio. Mr. Speaker, I yield.", ro)
	if len(out) != 1 {
		t.Fatalf("matches = %d, want 1", len(out))
	}
	m := out[0]
	if m.MatchedBy != "state, last_name" || m.Score != 100 || m.Legislator.Name != "john smith" {
		t.Errorf("got %s/%d/%s", m.MatchedBy, m.Score, m.Legislator.Name)
	}
	if m.Speech.Body != "I yield." {
		t.Errorf("body = %q", m.Speech.Body)
	}
}

func TestResolve_ScenarioA_AllThree(t *testing.T) {
	ro := newRoster(leg("john smith", "john", "smith", "ohio"), leg("jane smith", "jane", "smith", "ohio"))
	out, _ := resolve(t, &Cascade{}, "Mr. JOHN SMITH of Ohio. Mr. Speaker, I yield.", ro)
	if len(out) != 1 || out[0].MatchedBy != "state, first_name, last_name" || out[0].Score != 100 {
		t.Fatalf("got %+v", out)
	}
	if out[0].Legislator.Name != "john smith" {
		t.Errorf("legislator = %q", out[0].Legislator.Name)
	}
}

func TestResolve_ScenarioB_AmbiguousStateLast(t *testing.T) {
	ro := newRoster(leg("john smith", "john", "smith", "ohio"), leg("jane smith", "jane", "smith", "ohio"))
	out, stats := resolve(t, &Cascade{}, "Mr. SMITH of Ohio. Mr. Speaker, I yield.", ro)
	if len(out) != 0 {
		t.Fatalf("ambiguous key produced %+v", out)
	}
	if stats.Unmatched != 1 || stats.Buckets["state_last"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestResolve_AmbiguousLastOnly(t *testing.T) {
	ro := newRoster(leg("john smith", "john", "smith", "ohio"), leg("jane smith", "jane", "smith", "texas"),
		leg("jim jordan", "jim", "jordan", "ohio"))
	out, _ := resolve(t, &Cascade{}, "Mr. SMITH. Mr. Speaker, one. Mr. JORDAN. Mr. Speaker, two.", ro)
	if len(out) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(out), out)
	}
	if out[0].Legislator.Name != "jim jordan" || out[0].MatchedBy != "last_name" {
		t.Errorf("got %+v", out[0])
	}
}

func TestResolve_AmbiguousAllThreeFallsToApproximate(t *testing.T) {
	// Two rows share (ohio, john, smith); the exact tier must refuse them.
	ro := newRoster(leg("john a smith", "john", "smith", "ohio"), leg("john b smith", "john", "smith", "ohio"))
	out, _ := resolve(t, &Cascade{}, "Mr. JOHN SMITH of Ohio. Mr. Speaker, I yield.", ro)
	for _, m := range out {
		if m.Exact() {
			t.Errorf("exact match on duplicated key: %+v", m)
		}
	}
	if len(out) != 1 || out[0].MatchedBy != ByLongNameState || out[0].Legislator.Name != "john a smith" {
		t.Errorf("got %+v", out)
	}
}

func TestResolve_ScenarioC_Exception(t *testing.T) {
	ro := newRoster(leg("sheila jackson lee", "sheila", "jackson lee", "texas"), leg("jim jordan", "jim", "jordan", "ohio"))
	text := "Ms. JACKSON LEE of Texas. Madam Speaker, I object. Ms. JACKSON LEE. Madam Speaker, again."

	out, _ := resolve(t, &Cascade{}, text, ro)
	if len(out) != 2 {
		t.Fatalf("without exceptions: matches = %d, want 2", len(out))
	}
	if out[0].MatchedBy != ByLongNameState || out[1].MatchedBy != ByLongName {
		t.Errorf("matched_by = %q, %q", out[0].MatchedBy, out[1].MatchedBy)
	}

	out, stats := resolve(t, &Cascade{Exceptions: DefaultExceptions()}, text, ro)
	if len(out) != 0 {
		t.Fatalf("exception list ignored: %+v", out)
	}
	if stats.Excluded != 2 {
		t.Errorf("excluded = %d, want 2", stats.Excluded)
	}
}

func TestResolve_ExceptionsDoNotTouchExactTiers(t *testing.T) {
	ro := newRoster(leg("sheila jackson lee", "jackson", "lee", "texas"))
	out, _ := resolve(t, &Cascade{Exceptions: DefaultExceptions()}, "Ms. JACKSON LEE of Texas. Madam Speaker, I object.", ro)
	if len(out) != 1 || !out[0].Exact() {
		t.Fatalf("exact match should survive exceptions: %+v", out)
	}
}

func TestResolve_Threshold(t *testing.T) {
	ro := newRoster(leg("a person", "a", "person", "ohio"), leg("b person", "b", "person", "ohio"))
	text := "Mr. JOHN DOE. Mr. Speaker, hello."

	low := &Cascade{Similarity: SimilarityFunc(func(a, b string) int { return 49 })}
	if out, _ := resolve(t, low, text, ro); len(out) != 0 {
		t.Errorf("score below threshold accepted: %+v", out)
	}

	perfect := &Cascade{Similarity: SimilarityFunc(func(a, b string) int { return 100 })}
	out, _ := resolve(t, perfect, text, ro)
	if len(out) != 1 || out[0].Score != 99 {
		t.Fatalf("approximate score must stay below 100: %+v", out)
	}
	if out[0].Legislator.Name != "a person" {
		t.Errorf("tie should keep first roster row, got %q", out[0].Legislator.Name)
	}

	strict := &Cascade{Threshold: 80, Similarity: SimilarityFunc(func(a, b string) int { return 79 })}
	if out, _ := resolve(t, strict, text, ro); len(out) != 0 {
		t.Errorf("custom threshold ignored: %+v", out)
	}
}

func TestResolve_ScoreInvariants(t *testing.T) {
	ro := newRoster(
		leg("john smith", "john", "smith", "ohio"),
		leg("jane smith", "jane", "smith", "ohio"),
		leg("jim jordan", "jim", "jordan", "ohio"),
		leg("sheila jackson lee", "sheila", "jackson lee", "texas"),
		leg("nanette diaz barragan", "nanette", "barragan", "california"),
	)
	text := strings.Join([]string{
		"Mr. JORDAN. Mr. Speaker, a.",
		"Mr. JOHN SMITH of Ohio. Mr. Speaker, b.",
		"Mr. SMITH of Ohio. Mr. Speaker, c.",
		"Ms. JACKSON LEE of Texas. Madam Speaker, d.",
		"Ms. NANETTE BARRAGAN. Madam Speaker, e.",
		"Mr. NOBODY KNOWN. Mr. Speaker, f.",
	}, " ")
	c := &Cascade{Threshold: 60}
	out, _ := resolve(t, c, text, ro)
	seen := map[string]bool{}
	for _, m := range out {
		if m.Exact() && m.Score != 100 {
			t.Errorf("exact %q scored %d", m.MatchedBy, m.Score)
		}
		if !m.Exact() && (m.Score < 60 || m.Score >= 100) {
			t.Errorf("approximate %q scored %d", m.MatchedBy, m.Score)
		}
		if seen[m.Speech.ID] {
			t.Errorf("speech %s attributed twice", m.Speech.ID)
		}
		seen[m.Speech.ID] = true
	}
}

func TestResolve_MissingColumn(t *testing.T) {
	ro := roster.New(118, []roster.Legislator{leg("john smith", "john", "smith", "")},
		[]string{roster.ColName, roster.ColFirstName, roster.ColLastName})
	_, err := (&Cascade{Logger: quiet}).Resolve(context.Background(), 118,
		candidates(t, "Mr. SMITH. Mr. Speaker, hi."), ro)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestResolve_NoRoster(t *testing.T) {
	_, err := (&Cascade{Logger: quiet}).Resolve(context.Background(), 118, nil, nil)
	if !errors.Is(err, ErrNoRoster) {
		t.Fatalf("err = %v, want ErrNoRoster", err)
	}
}

func TestResolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ro := newRoster(leg("john smith", "john", "smith", "ohio"))
	_, err := (&Cascade{Logger: quiet}).Resolve(ctx, 118, candidates(t, "Mr. SMITH. Mr. Speaker, hi."), ro)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	rows := []roster.Legislator{leg("john smith", "john", "smith", "ohio")}
	rows[0].Extra["term"] = "1"
	ro := newRoster(rows...)
	out, _ := resolve(t, &Cascade{}, "Mr. SMITH of Ohio. Mr. Speaker, hi.", ro)
	if len(out) != 1 {
		t.Fatalf("matches = %d", len(out))
	}
	if _, ok := out[0].Legislator.Extra["term"]; ok {
		t.Error("merge-only column kept in output")
	}
	if ro.Legislators[0].Extra["term"] != "1" {
		t.Error("roster row was mutated")
	}
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		fragment string
		want     Bucket
	}{
		{"Mr. JOHN SMITH of Ohio", AllThree},
		{"Mr. SMITH of Ohio", StateLast},
		{"Mr. SMITH", LastOnly},
		{"Mr. JOHN SMITH", FirstLast},
	}
	for _, tt := range tests {
		p, _ := speaker.Parse(tt.fragment)
		if got := BucketOf(p); got != tt.want {
			t.Errorf("BucketOf(%q) = %v, want %v", tt.fragment, got, tt.want)
		}
	}
}
