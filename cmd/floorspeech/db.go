package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/floorspeech/pkg/store"
)

var (
	dbSession int
	dbLimit   int
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query the attributed speech database",
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count stored speeches per session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openSpeechDB()
		if err != nil {
			return err
		}
		defer db.Close()
		counts, err := db.CountBySession(cmd.Context())
		if err != nil {
			return err
		}
		sessions := make([]int, 0, len(counts))
		for s := range counts {
			sessions = append(sessions, s)
		}
		sort.Ints(sessions)
		for _, s := range sessions {
			fmt.Printf("%d\t%d\n", s, counts[s])
		}
		return nil
	},
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored speeches of a session as JSON lines",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openSpeechDB()
		if err != nil {
			return err
		}
		defer db.Close()
		rows, err := db.ListSession(cmd.Context(), dbSession, dbLimit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	},
}

func openSpeechDB() (*store.SpeechDB, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("no database configured (set database or %sDATABASE)", envPrefix)
	}
	return store.OpenSpeechDB(cfg.Database)
}

func init() {
	dbListCmd.Flags().IntVar(&dbSession, "session", 0, "session number")
	dbListCmd.Flags().IntVar(&dbLimit, "limit", 50, "maximum rows (0 for all)")
	dbListCmd.MarkFlagRequired("session")
	dbCmd.AddCommand(dbStatsCmd, dbListCmd)
	rootCmd.AddCommand(dbCmd)
}
