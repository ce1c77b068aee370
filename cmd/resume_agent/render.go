package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/github-resume/internal/compile"
	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/db"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/rendering"
	"github.com/jonathan/github-resume/internal/sanitize"
	"github.com/jonathan/github-resume/internal/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a résumé from an input bundle or a live GitHub account",
	Long: `Render a LaTeX (default) or HTML résumé.

The input is either a JSON bundle (--input) holding profile, repos and
languages, or the GitHub account that GITHUB_TOKEN belongs to (--from-github).

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runRender,
}

var (
	renderConfigPath  string
	renderInput       string
	renderFromGitHub  bool
	renderTemplate    string
	renderOutputDir   string
	renderFormat      string
	renderAsOf        string
	renderCompile     bool
	renderDatabaseURL string
	renderVerbose     bool
)

func init() {
	renderCmd.Flags().StringVar(&renderConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "Path to input bundle JSON")
	renderCmd.Flags().BoolVar(&renderFromGitHub, "from-github", false, "Fetch the bundle for the account GITHUB_TOKEN belongs to")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Path to a LaTeX template replacing the built-in one")
	renderCmd.Flags().StringVarP(&renderOutputDir, "out-dir", "o", "", "Output directory (default: current directory)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "Output format: latex or html (default: latex)")
	renderCmd.Flags().StringVar(&renderAsOf, "as-of", "", "Reference date YYYY-MM-DD for years on GitHub (default: today)")
	renderCmd.Flags().BoolVar(&renderCompile, "compile", false, "Also compile a PDF (pdflatex for latex, headless Chrome for html)")
	renderCmd.Flags().StringVar(&renderDatabaseURL, "db-url", "", "Archive the document in this PostgreSQL database")
	renderCmd.Flags().BoolVarP(&renderVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := renderConfig(cmd)
	if err != nil {
		return err
	}

	var input *types.ResumeInput
	switch {
	case cfg.Input != "" && renderFromGitHub:
		return fmt.Errorf("--input and --from-github are mutually exclusive")
	case cfg.Input != "":
		input, err = loadBundle(cfg.Input)
	case renderFromGitHub:
		input, err = fetchFromGitHub(ctx, cfg.GitHubAPIURL)
	default:
		return fmt.Errorf("either --input or --from-github is required")
	}
	if err != nil {
		return err
	}

	asOf, err := parseAsOf(cfg.AsOf, time.Now)
	if err != nil {
		return err
	}

	doc, err := renderDocument(input, cfg.Format, cfg.Template, asOf)
	if err != nil {
		return fmt.Errorf("failed to render résumé: %w", err)
	}

	path, err := writeOutput(cfg.OutputDir, doc.Filename, []byte(doc.Text))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully rendered %s résumé\n", cfg.Format)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", path)

	if cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Repositories: %d, languages: %d\n", len(input.Repos), len(input.Languages))
	}

	if cfg.Compile {
		pdfPath, err := compileDocument(ctx, cfg, doc)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "PDF: %s\n", pdfPath)
	}

	if cfg.DatabaseURL != "" {
		id, err := archive(ctx, cfg, input.Profile.Login, doc)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Archived as %s\n", id)
	}
	return nil
}

// renderConfig merges the optional config file with explicitly set flags.
func renderConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if renderConfigPath != "" {
		loaded, err := config.LoadConfig(renderConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = renderInput
	}
	if flags.Changed("template") {
		cfg.Template = renderTemplate
	}
	if flags.Changed("out-dir") {
		cfg.OutputDir = renderOutputDir
	}
	if flags.Changed("format") {
		cfg.Format = strings.ToLower(renderFormat)
	}
	if flags.Changed("as-of") {
		cfg.AsOf = renderAsOf
	}
	if flags.Changed("compile") {
		cfg.Compile = renderCompile
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = renderDatabaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = renderVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		OutputDir:    ".",
		GitHubAPIURL: envOr("GITHUB_API_URL", config.DefaultGitHubAPIURL),
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func fetchFromGitHub(ctx context.Context, apiURL string) (*types.ResumeInput, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is required with --from-github")
	}
	client, err := github.NewClient(&github.Options{BaseURL: apiURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return fetchBundle(ctx, client, token, config.DefaultLanguageFetchConcurrency)
}

func compileDocument(ctx context.Context, cfg config.Config, doc *rendering.Document) (string, error) {
	var compiler interface {
		compile.Compiler
		Available() error
	}
	if cfg.Format == config.FormatHTML {
		compiler = compile.NewChromePrinter(compile.DefaultTimeout)
	} else {
		compiler = compile.NewPDFLaTeX()
	}
	if err := compiler.Available(); err != nil {
		return "", err
	}

	pdf, err := compiler.Compile(ctx, doc.Text)
	if err != nil {
		return "", fmt.Errorf("failed to compile PDF: %w", err)
	}
	name := strings.TrimSuffix(doc.Filename, filepath.Ext(doc.Filename)) + ".pdf"
	return writeOutput(cfg.OutputDir, name, pdf)
}

func archive(ctx context.Context, cfg config.Config, login string, doc *rendering.Document) (string, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return "", fmt.Errorf("failed to migrate database: %w", err)
	}

	kind := db.KindLaTeX
	if cfg.Format == config.FormatHTML {
		kind = db.KindHTML
	}
	id, err := database.SaveDocument(ctx, sanitize.Username(login), kind, doc.Filename, doc.Text)
	if err != nil {
		return "", fmt.Errorf("failed to save document: %w", err)
	}
	return id.String(), nil
}
