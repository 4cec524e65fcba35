package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/hazyhaar/floorspeech/pkg/roster"
)

// Summary reports what an import wrote.
type Summary struct {
	Feeds    map[string]int // adapter id -> entries fetched
	Sessions map[int]int    // session -> legislators written
}

// Import fetches the feeds named by ids (all registered adapters when empty),
// builds rosters for sessions and writes one <outputDir>/<session>/ directory
// per session holding manifest.yaml and data.gob.
//
// Feeds are merged in id order, so with the default adapters the current
// members come before the historical ones and win bioguide deduplication.
func Import(ctx context.Context, sources *SourceDB, ids []string, sessions []int, outputDir string, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("import: no sessions requested")
	}

	adapters, err := resolveAdapters(ids)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Feeds: make(map[string]int), Sessions: make(map[int]int)}
	var feed []roster.FeedLegislator
	for _, a := range adapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		url := a.DefaultURL()
		if sources != nil {
			if url, err = sources.GetURL(a.ID()); err != nil {
				return nil, err
			}
		}
		logger.Info("fetching feed", "adapter", a.ID(), "url", url)
		entries, err := a.Fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.ID(), err)
		}
		sum.Feeds[a.ID()] = len(entries)
		if sources != nil {
			if err := sources.RecordImport(a.ID(), len(entries)); err != nil {
				logger.Warn("record import failed", "adapter", a.ID(), "error", err)
			}
		}
		feed = append(feed, entries...)
	}

	rows := roster.Build(feed, sessions)
	for _, session := range sessions {
		members := roster.ForSession(rows, session)
		if len(members) == 0 {
			logger.Warn("no legislators for session", "session", session)
			continue
		}
		if err := writeSession(outputDir, session, members, adapters); err != nil {
			return nil, err
		}
		sum.Sessions[session] = len(members)
		logger.Info("roster written", "session", session, "legislators", len(members))
	}
	return sum, nil
}

func resolveAdapters(ids []string) ([]Adapter, error) {
	if len(ids) == 0 {
		all := All()
		if len(all) == 0 {
			return nil, fmt.Errorf("import: no adapters registered")
		}
		return currentFirst(all), nil
	}
	out := make([]Adapter, 0, len(ids))
	for _, id := range ids {
		a, err := Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// currentFirst moves legislators-current ahead of the other feeds.
func currentFirst(all []Adapter) []Adapter {
	out := make([]Adapter, 0, len(all))
	for _, a := range all {
		if a.ID() == "legislators-current" {
			out = append(out, a)
		}
	}
	for _, a := range all {
		if a.ID() != "legislators-current" {
			out = append(out, a)
		}
	}
	return out
}

func writeSession(outputDir string, session int, members []roster.Legislator, adapters []Adapter) error {
	dir := filepath.Join(outputDir, strconv.Itoa(session))
	if err := ensureDir(dir); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}
	if err := roster.SaveGob(members, roster.FeedColumns(), filepath.Join(dir, "data.gob")); err != nil {
		return err
	}
	m := &roster.Manifest{
		ID:       "congress-" + strconv.Itoa(session),
		Session:  session,
		Source:   "congress-legislators",
		License:  adapters[0].License(),
		DataFile: "data.gob",
		Format:   roster.FormatSpec{Normalize: "lowercase_ascii"},
	}
	if len(adapters) == 1 {
		m.SourceURL = adapters[0].DefaultURL()
	}
	return roster.SaveManifest(m, filepath.Join(dir, "manifest.yaml"))
}
