// Command floorspeech segments Congressional Record text into floor speeches
// and attributes each speech to a legislator.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        config
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:           "floorspeech",
	Short:         "Congressional Record speech segmentation and speaker attribution",
	Long:          "floorspeech splits Congressional Record issues into floor speeches and resolves each speaker fragment to a legislator of the session in force.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = loadConfig(configPath, os.Getenv)
		if err != nil {
			return err
		}
		logger = newLogger(cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "floorspeech.yaml", "path to config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
