package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/floorspeech/pkg/mcpquic"
)

var (
	remoteAddr     string
	remoteInsecure bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Query a running TLS server over MCP/QUIC",
}

var remoteResolveCmd = &cobra.Command{
	Use:   "resolve <session> <speaker>",
	Short: "Resolve a speaker fragment on the remote server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("session must be an integer: %w", err)
		}
		return callRemote(cmd.Context(), "resolve_speaker", map[string]any{"session": session, "speaker": args[1]})
	},
}

var remoteSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the rosters loaded on the remote server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return callRemote(cmd.Context(), "list_sessions", nil)
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "localhost:8420", "server host:port")
	remoteCmd.PersistentFlags().BoolVar(&remoteInsecure, "insecure", false, "skip certificate verification")
	remoteCmd.AddCommand(remoteResolveCmd, remoteSessionsCmd)
	rootCmd.AddCommand(remoteCmd)
}

// callRemote calls one tool and pretty-prints its JSON result on stdout.
func callRemote(ctx context.Context, tool string, args map[string]any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := mcpquic.NewClient(remoteAddr, mcpquic.ClientTLSConfig(remoteInsecure))
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	var out json.RawMessage
	if err := client.CallJSON(ctx, tool, args, &out); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
