// Package pipeline runs documents through segmentation, session assignment,
// speaker parsing and the match cascade, in parallel across documents and
// across sessions.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/floorspeech/pkg/match"
	"github.com/hazyhaar/floorspeech/pkg/metrics"
	"github.com/hazyhaar/floorspeech/pkg/record"
	"github.com/hazyhaar/floorspeech/pkg/roster"
	"github.com/hazyhaar/floorspeech/pkg/speaker"
)

// Rosters looks up the roster of a session. *roster.Registry implements it.
type Rosters interface {
	Get(session int) (*roster.Roster, bool)
}

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	Workers int
	Cascade *match.Cascade
	Parser  *speaker.Parser
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Pipeline is safe for concurrent use; it holds no per-run state.
type Pipeline struct {
	rosters   Rosters
	segmenter *record.Segmenter
	parser    *speaker.Parser
	cascade   *match.Cascade
	metrics   *metrics.Metrics
	workers   int
	logger    *slog.Logger
}

// New creates a pipeline resolving against rosters.
func New(rosters Rosters, opts Options) *Pipeline {
	p := &Pipeline{
		rosters:   rosters,
		segmenter: record.NewSegmenter(),
		parser:    opts.Parser,
		cascade:   opts.Cascade,
		metrics:   opts.Metrics,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}
	if p.parser == nil {
		p.parser = speaker.NewParser("lowercase_ascii")
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.cascade == nil {
		p.cascade = &match.Cascade{Logger: p.logger}
	}
	if p.workers <= 0 {
		p.workers = runtime.NumCPU()
	}
	return p
}

// Result is the outcome of one batch.
type Result struct {
	Matched  []match.Matched `json:"matched"`
	Stats    []match.Stats   `json:"stats"`
	Speeches int             `json:"speeches"`
	Skipped  int             `json:"skipped"`
}

// Segment normalizes and segments documents in parallel. Speeches keep
// document order.
func (p *Pipeline) Segment(ctx context.Context, docs []record.Document) ([]record.Speech, error) {
	perDoc := make([][]record.Speech, len(docs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range docs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			perDoc[i] = p.segmenter.SegmentDocument(docs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []record.Speech
	for _, s := range perDoc {
		out = append(out, s...)
	}
	if p.metrics != nil {
		p.metrics.Documents.Add(float64(len(docs)))
		p.metrics.Speeches.Add(float64(len(out)))
	}
	return out, nil
}

// Run segments docs and attributes the resulting speeches.
func (p *Pipeline) Run(ctx context.Context, docs []record.Document) (*Result, error) {
	speeches, err := p.Segment(ctx, docs)
	if err != nil {
		return nil, err
	}
	p.logger.Info("documents segmented", "documents", len(docs), "speeches", len(speeches))
	return p.Attribute(ctx, speeches)
}

// Attribute groups speeches by session, parses speakers and resolves each
// session concurrently. Speeches outside the session calendar, without a
// parsable last name or without a loaded roster are counted as skipped.
func (p *Pipeline) Attribute(ctx context.Context, speeches []record.Speech) (*Result, error) {
	res := &Result{Speeches: len(speeches)}

	groups, unassigned := record.GroupBySession(speeches)
	res.Skipped += len(unassigned)

	sessions := make([]int, 0, len(groups))
	for s := range groups {
		sessions = append(sessions, s)
	}
	sort.Ints(sessions)

	type job struct {
		session int
		ro      *roster.Roster
		cands   []match.Candidate
	}
	var jobs []job
	for _, s := range sessions {
		ro, ok := p.rosters.Get(s)
		if !ok {
			p.logger.Warn("no roster for session, speeches skipped", "session", s, "speeches", len(groups[s]))
			res.Skipped += len(groups[s])
			continue
		}
		cands, skipped := p.candidates(groups[s])
		res.Skipped += skipped
		jobs = append(jobs, job{session: s, ro: ro, cands: cands})
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			matched, stats, err := p.cascade.ResolveWithStats(gCtx, j.session, j.cands, j.ro)
			if err != nil {
				return fmt.Errorf("session %d: %w", j.session, err)
			}
			p.observe(stats)
			mu.Lock()
			res.Matched = append(res.Matched, matched...)
			res.Stats = append(res.Stats, stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(res.Stats, func(i, k int) bool { return res.Stats[i].Session < res.Stats[k].Session })
	res.Matched = match.Finalize(res.Matched, p.logger)
	if p.metrics != nil {
		p.metrics.Skipped.Add(float64(res.Skipped))
	}
	return res, nil
}

// ResolveSpeaker attributes a single speaker fragment within a session.
func (p *Pipeline) ResolveSpeaker(ctx context.Context, session int, fragment string) (*match.Matched, error) {
	ro, ok := p.rosters.Get(session)
	if !ok {
		return nil, fmt.Errorf("%w %d", match.ErrNoRoster, session)
	}
	parsed, ok := p.parser.Parse(fragment)
	if !ok {
		return nil, nil
	}
	cand := match.Candidate{Speech: record.Speech{Speaker: fragment}, Parsed: parsed}
	out, err := p.cascade.Resolve(ctx, session, []match.Candidate{cand}, ro)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (p *Pipeline) candidates(speeches []record.Speech) ([]match.Candidate, int) {
	out := make([]match.Candidate, 0, len(speeches))
	skipped := 0
	for _, sp := range speeches {
		parsed, ok := p.parser.Parse(sp.Speaker)
		if !ok {
			skipped++
			continue
		}
		out = append(out, match.Candidate{Speech: sp, Parsed: parsed})
	}
	return out, skipped
}

func (p *Pipeline) observe(st match.Stats) {
	if p.metrics == nil {
		return
	}
	session := strconv.Itoa(st.Session)
	for by, n := range st.Matched {
		p.metrics.Matches.WithLabelValues(session, by).Add(float64(n))
	}
	p.metrics.Unmatched.WithLabelValues(session).Add(float64(st.Unmatched))
	p.metrics.Excluded.WithLabelValues(session).Add(float64(st.Excluded))
}
