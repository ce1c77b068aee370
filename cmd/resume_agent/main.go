// Package main provides the resume_agent CLI: the HTTP API server and the
// offline render, compile and validation commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "resume_agent",
	Short: "GitHub résumé generator",
	Long:  "resume_agent turns a GitHub profile, its repositories and their language statistics into a LaTeX or HTML résumé, either over a REST API or from the command line.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(logLevel, logFormat)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", config.DefaultLogLevel), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOr("LOG_FORMAT", config.DefaultLogFormat), "Log format (text, json)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
