package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/floorspeech/pkg/importer"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect and manage the legislator feed sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feed sources with their last check and import",
	RunE: func(_ *cobra.Command, _ []string) error {
		sdb, err := openSources()
		if err != nil {
			return err
		}
		defer sdb.Close()
		sources, err := sdb.ListSources()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tLAST IMPORT\tENTRIES\tURL")
		for _, src := range sources {
			status, imported, count := "-", "-", "-"
			if src.LastStatus != nil {
				status = fmt.Sprint(*src.LastStatus)
			}
			if src.LastImport != nil {
				imported = time.Unix(*src.LastImport, 0).UTC().Format(time.DateTime)
			}
			if src.LastCount != nil {
				count = fmt.Sprint(*src.LastCount)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", src.AdapterID, status, imported, count, src.SourceURL)
		}
		return tw.Flush()
	},
}

var sourcesSetURLCmd = &cobra.Command{
	Use:   "set-url <adapter-id> <url>",
	Short: "Override the download URL of a feed",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		sdb, err := openSources()
		if err != nil {
			return err
		}
		defer sdb.Close()
		return sdb.SetURL(args[0], args[1])
	},
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "HEAD every feed URL once and record the result",
	RunE: func(_ *cobra.Command, _ []string) error {
		sdb, err := openSources()
		if err != nil {
			return err
		}
		defer sdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		rep := importer.NewChecker(sdb, logger, time.Hour).CheckAll(ctx)
		if len(rep.Failed) > 0 {
			return fmt.Errorf("unreachable sources: %v", rep.Failed)
		}
		fmt.Printf("%d sources reachable\n", rep.OK)
		return nil
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd, sourcesSetURLCmd, sourcesCheckCmd)
	rootCmd.AddCommand(sourcesCmd)
}
