package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the GitHub data, résumé generation and
compilation endpoints. Settings come from the environment (see .env.example);
JWT_SECRET is required.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	srv, err := server.Open(context.Background(), cfg, jwtCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Port,
		"github_api", cfg.GitHubAPIURL,
		"database", cfg.DatabaseURL != "",
		"compiler", cfg.CompilerEnabled,
		"chrome", cfg.ChromeEnabled,
	)
	return srv.Start()
}
