// CLAUDE:SUMMARY CLI subcommand that downloads the legislator feeds and writes per-session rosters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/floorspeech/pkg/importer"
	"github.com/hazyhaar/floorspeech/pkg/record"
)

var (
	importSources  []string
	importSessions []int
	importOutput   string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Build session rosters from the congress-legislators feeds",
	Long: `Download the legislators feeds and write one roster directory
(manifest.yaml + data.gob) per requested session. Without --source every
registered feed is merged, current members first.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringSliceVar(&importSources, "source", nil, "feed adapter ID (repeatable; default: all)")
	importCmd.Flags().IntSliceVar(&importSessions, "sessions", nil, "session numbers to build (default: the whole calendar)")
	importCmd.Flags().StringVar(&importOutput, "output-dir", "", "roster directory (default: config rosters_dir)")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	outDir := firstNonEmpty(importOutput, cfg.RostersDir)
	sessions := importSessions
	if len(sessions) == 0 {
		sessions = record.Sessions()
	}

	sdb, err := openSources()
	if err != nil {
		return err
	}
	defer sdb.Close()

	sum, err := importer.Import(ctx, sdb, importSources, sessions, outDir, logger)
	if err != nil {
		return err
	}
	for id, n := range sum.Feeds {
		fmt.Printf("[%s] %d entries\n", id, n)
	}
	for _, s := range sessions {
		if n, ok := sum.Sessions[s]; ok {
			fmt.Printf("session %d: %d legislators -> %s\n", s, n, filepath.Join(outDir, fmt.Sprint(s)))
		}
	}
	return nil
}

// openSources opens the source database and seeds the registered feeds.
func openSources() (*importer.SourceDB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SourcesDB), 0o755); err != nil {
		return nil, fmt.Errorf("create source db dir: %w", err)
	}
	sdb, err := importer.OpenSourceDB(cfg.SourcesDB)
	if err != nil {
		return nil, err
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		return nil, err
	}
	return sdb, nil
}
