package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the endpoints as MCP tools over stdio",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}
		return server.ServeStdio(newMCPServer(svc))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
