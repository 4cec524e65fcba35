// Package match resolves parsed speaker fragments against a session roster
// through exact-key tiers followed by an approximate name tier.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/floorspeech/pkg/record"
	"github.com/hazyhaar/floorspeech/pkg/roster"
	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// DefaultThreshold is the minimum approximate score accepted.
const DefaultThreshold = 50

// maxApproxScore keeps approximate scores below the exact-tier 100.
const maxApproxScore = 99

var (
	// ErrMissingColumn is returned when the roster lacks a tier's key column.
	ErrMissingColumn = roster.ErrMissingColumn
	// ErrNoRoster is returned when no roster is supplied for a session.
	ErrNoRoster = errors.New("match: no roster for session")
)

// MatchedBy labels of the approximate tier.
const (
	ByLongName      = "long_name"
	ByLongNameState = "long_name, state"
)

// Candidate is a segmented speech with its parsed speaker.
type Candidate struct {
	Speech record.Speech
	Parsed speaker.Parsed
}

// Matched is a speech attributed to one legislator.
type Matched struct {
	Session    int               `json:"session"`
	Speech     record.Speech     `json:"speech"`
	Parsed     speaker.Parsed    `json:"parsed"`
	Legislator roster.Legislator `json:"legislator"`
	MatchedBy  string            `json:"matched_by"`
	Score      int               `json:"similarity_score"`
}

// Exact reports whether the match came from an exact-key tier.
func (m Matched) Exact() bool { return !strings.Contains(m.MatchedBy, ByLongName) }

// Bucket groups candidates by which identity fields their fragment carried.
type Bucket int

const (
	AllThree  Bucket = iota // state, first name, last name
	StateLast               // state, last name
	LastOnly                // last name
	FirstLast               // first name, last name
)

var bucketNames = [...]string{"all_three", "state_last", "last_only", "first_last"}

func (b Bucket) String() string { return bucketNames[b] }

// BucketOf classifies a parsed speaker. LastName is always present.
func BucketOf(p speaker.Parsed) Bucket {
	switch {
	case p.HasState() && p.HasFirstName():
		return AllThree
	case p.HasState():
		return StateLast
	case p.HasFirstName():
		return FirstLast
	default:
		return LastOnly
	}
}

// exactTiers run in decreasing key specificity.
var exactTiers = []struct {
	bucket Bucket
	cols   []string
}{
	{AllThree, []string{roster.ColState, roster.ColFirstName, roster.ColLastName}},
	{StateLast, []string{roster.ColState, roster.ColLastName}},
	{LastOnly, []string{roster.ColLastName}},
}

// Stats summarizes one Resolve call.
type Stats struct {
	Session    int            `json:"session"`
	Candidates int            `json:"candidates"`
	Buckets    map[string]int `json:"buckets"`
	Matched    map[string]int `json:"matched"`
	Excluded   int            `json:"excluded"`
	Unmatched  int            `json:"unmatched"`
}

// Cascade holds the approximate-tier settings. The zero value uses
// DefaultThreshold, WeightedRatio and no exceptions.
//
// Exceptions filter every approximate match, the state-restricted
// "long_name, state" ones included, not only the first+last bucket: a
// fragment such as "Ms. JACKSON LEE of Texas" carries a state and reaches the
// approximate tier through the all-three residual.
type Cascade struct {
	Threshold  int
	Similarity Similarity
	Exceptions Exceptions
	Logger     *slog.Logger
}

func (c *Cascade) threshold() int {
	if c.Threshold <= 0 {
		return DefaultThreshold
	}
	return min(c.Threshold, maxApproxScore)
}

func (c *Cascade) similarity() Similarity {
	if c.Similarity == nil {
		return WeightedRatio{}
	}
	return c.Similarity
}

func (c *Cascade) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Resolve attributes candidates of one session to roster rows.
func (c *Cascade) Resolve(ctx context.Context, session int, cands []Candidate, ro *roster.Roster) ([]Matched, error) {
	out, _, err := c.ResolveWithStats(ctx, session, cands, ro)
	return out, err
}

// ResolveWithStats is Resolve plus per-tier counters. Exact tiers run first;
// only the all-three residual and the first+last bucket reach the approximate
// tier. Unmatched candidates are dropped. A missing key column aborts.
func (c *Cascade) ResolveWithStats(ctx context.Context, session int, cands []Candidate, ro *roster.Roster) ([]Matched, Stats, error) {
	stats := Stats{
		Session:    session,
		Candidates: len(cands),
		Buckets:    make(map[string]int, len(bucketNames)),
		Matched:    make(map[string]int),
	}
	if ro == nil {
		return nil, stats, fmt.Errorf("%w %d", ErrNoRoster, session)
	}
	if err := ro.RequireColumns(roster.RequiredColumns...); err != nil {
		return nil, stats, err
	}

	var buckets [len(bucketNames)][]Candidate
	for _, cand := range cands {
		if cand.Parsed.LastName == "" {
			continue
		}
		b := BucketOf(cand.Parsed)
		buckets[b] = append(buckets[b], cand)
		stats.Buckets[b.String()]++
	}

	var matched []Matched
	var residual []Candidate
	for _, tier := range exactTiers {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		hits, misses := exactJoin(session, buckets[tier.bucket], ro, tier.cols)
		matched = append(matched, hits...)
		if len(hits) > 0 {
			stats.Matched[hits[0].MatchedBy] += len(hits)
		}
		if tier.bucket == AllThree {
			residual = misses
		} else {
			stats.Unmatched += len(misses)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	approx := append(residual, buckets[FirstLast]...)
	for _, cand := range approx {
		m, ok := c.approximate(session, cand, ro)
		if !ok {
			stats.Unmatched++
			continue
		}
		if pattern, hit := c.Exceptions.Excludes(session, cand.Speech.Speaker); hit {
			stats.Excluded++
			c.logger().Debug("approximate match excluded",
				"session", session, "speaker", cand.Speech.Speaker, "pattern", pattern, "legislator", m.Legislator.Name)
			continue
		}
		matched = append(matched, m)
		stats.Matched[m.MatchedBy]++
	}

	c.logger().Info("session resolved",
		"session", session,
		"candidates", stats.Candidates,
		"matched", len(matched),
		"excluded", stats.Excluded,
		"unmatched", stats.Unmatched,
	)
	return Finalize(matched, c.logger()), stats, nil
}

// exactJoin matches candidates to roster rows whose key tuple over cols is
// unique. Duplicated tuples never match.
func exactJoin(session int, cands []Candidate, ro *roster.Roster, cols []string) (hits []Matched, misses []Candidate) {
	if len(cands) == 0 {
		return nil, nil
	}
	index := ro.UniqueBy(cols...)
	by := strings.Join(cols, ", ")
	for _, cand := range cands {
		i, ok := index[roster.KeyOf(parsedField(cand.Parsed), cols)]
		if !ok {
			misses = append(misses, cand)
			continue
		}
		hits = append(hits, Matched{
			Session:    session,
			Speech:     cand.Speech,
			Parsed:     cand.Parsed,
			Legislator: ro.Legislators[i],
			MatchedBy:  by,
			Score:      100,
		})
	}
	return hits, misses
}

// approximate picks the best-scoring roster row, restricted to the
// candidate's state when it has one. Ties keep the earlier row.
func (c *Cascade) approximate(session int, cand Candidate, ro *roster.Roster) (Matched, bool) {
	sim := c.similarity()
	by := ByLongName
	var rows []int
	if cand.Parsed.HasState() {
		by = ByLongNameState
		rows = ro.InState(cand.Parsed.State)
	} else {
		rows = make([]int, ro.Len())
		for i := range rows {
			rows[i] = i
		}
	}

	best, bestScore := -1, -1
	for _, i := range rows {
		if s := sim.Score(cand.Parsed.Name, ro.Legislators[i].Name); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < c.threshold() {
		return Matched{}, false
	}
	return Matched{
		Session:    session,
		Speech:     cand.Speech,
		Parsed:     cand.Parsed,
		Legislator: ro.Legislators[best],
		MatchedBy:  by,
		Score:      min(bestScore, maxApproxScore),
	}, true
}

func parsedField(p speaker.Parsed) func(string) string {
	return func(col string) string {
		switch col {
		case roster.ColState:
			return p.State
		case roster.ColFirstName:
			return p.FirstName
		case roster.ColLastName:
			return p.LastName
		case roster.ColName:
			return p.Name
		}
		return ""
	}
}
