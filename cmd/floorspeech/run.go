package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/floorspeech/pkg/match"
	"github.com/hazyhaar/floorspeech/pkg/record"
	"github.com/hazyhaar/floorspeech/pkg/store"
)

var (
	runInput  string
	runFormat string
	runOutput string
	runDB     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Segment and attribute a batch of Record documents",
	Long: `Read a document table (CSV with text/issueDate/pdf_url columns, or a JSON
array), segment every document into speeches, attribute each speech to a
legislator and write the matched table as CSV.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "document file (CSV or JSON); - for stdin")
	runCmd.Flags().StringVar(&runFormat, "format", "", "input format: csv or json (default: from file extension)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output CSV path (default: config output, else stdout)")
	runCmd.Flags().StringVar(&runDB, "db", "", "SQLite database to store results in (default: config database)")
	runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := readDocuments(runInput, runFormat)
	if err != nil {
		return err
	}

	reg, err := loadRosters()
	if err != nil {
		return err
	}
	p, err := newPipeline(reg, nil)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, docs)
	if err != nil {
		return err
	}
	logger.Info("run complete", "documents", len(docs), "speeches", res.Speeches,
		"matched", len(res.Matched), "skipped", res.Skipped)
	for _, st := range res.Stats {
		logger.Info("session stats", "session", st.Session, "candidates", st.Candidates,
			"matched", st.Matched, "excluded", st.Excluded, "unmatched", st.Unmatched)
	}

	if err := writeOutput(firstNonEmpty(runOutput, cfg.Output), res.Matched); err != nil {
		return err
	}

	if path := firstNonEmpty(runDB, cfg.Database); path != "" {
		db, err := store.OpenSpeechDB(path)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveAll(ctx, res.Matched); err != nil {
			return err
		}
		logger.Info("results stored", "database", path)
	}
	return nil
}

func readDocuments(path, format string) ([]record.Document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "json":
		return store.ReadDocumentsJSON(r)
	case "csv", "":
		return store.ReadDocuments(r)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// writeOutput writes the matched table to path, or stdout when path is empty.
func writeOutput(path string, rows []match.Matched) error {
	if path == "" {
		return store.WriteMatched(os.Stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := store.WriteMatched(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("output written", "path", path, "rows", len(rows))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
