package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development session token",
	Long: `Mint a session token for calling the API locally. The token carries the
GitHub access token from GITHUB_TOKEN (or --github-token) and is signed with
JWT_SECRET. Production sessions come from the identity provider in front of
the API.`,
	RunE: runToken,
}

var (
	tokenLogin       string
	tokenGitHubToken string
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenLogin, "login", "l", "", "GitHub login recorded in the token (required)")
	tokenCmd.Flags().StringVar(&tokenGitHubToken, "github-token", "", "GitHub access token (default: GITHUB_TOKEN)")

	if err := tokenCmd.MarkFlagRequired("login"); err != nil {
		panic(fmt.Sprintf("failed to mark login flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	accessToken := tokenGitHubToken
	if accessToken == "" {
		accessToken = os.Getenv("GITHUB_TOKEN")
	}
	if accessToken == "" {
		return fmt.Errorf("GITHUB_TOKEN not set and --github-token not provided")
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenLogin, accessToken)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, token)
	return nil
}
