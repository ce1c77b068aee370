package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/github-resume/internal/config"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/rendering"
	"github.com/jonathan/github-resume/internal/schemas"
	"github.com/jonathan/github-resume/internal/types"
)

// loadBundle reads an input bundle, checks it against the bundle schema
// and decodes it.
func loadBundle(path string) (*types.ResumeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if err := schemas.ValidateResumeInput(data); err != nil {
		return nil, err
	}

	var input types.ResumeInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input JSON: %w", err)
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input bundle: %w", err)
	}
	return &input, nil
}

// fetchBundle assembles a bundle for the account token belongs to.
// Repositories whose languages cannot be fetched are left out of the
// histogram.
func fetchBundle(ctx context.Context, src github.DataSource, token string, concurrency int) (*types.ResumeInput, error) {
	profile, err := src.FetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	repos, err := src.FetchRepositories(ctx, token, profile.Login)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	agg := github.AggregateLanguages(ctx, src, token, repos, concurrency)
	if len(agg.Failed) > 0 {
		slog.Warn("language data missing for some repositories", "count", len(agg.Failed), "repos", agg.Failed)
	}
	return &types.ResumeInput{Profile: *profile, Repos: repos, Languages: agg.Languages}, nil
}

// parseAsOf parses a YYYY-MM-DD reference date, defaulting to now.
func parseAsOf(value string, now func() time.Time) (time.Time, error) {
	if value == "" {
		return now(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q: %w", value, err)
	}
	return t, nil
}

// renderDocument produces the LaTeX or HTML document for input. A template
// path replaces the embedded LaTeX skeleton.
func renderDocument(input *types.ResumeInput, format, templatePath string, asOf time.Time) (*rendering.Document, error) {
	switch format {
	case config.FormatHTML:
		profile, repos := rendering.StripMarkup(&input.Profile, input.Repos)
		return rendering.RenderHTML(profile, repos, input.Languages, asOf)
	case config.FormatLaTeX, "":
		opts := []rendering.Option{rendering.WithClock(func() time.Time { return asOf })}
		if templatePath != "" {
			tmpl, err := rendering.LoadTemplate(templatePath)
			if err != nil {
				return nil, err
			}
			opts = append(opts, rendering.WithTemplate(tmpl))
		}
		synth, err := rendering.NewSynthesizer(opts...)
		if err != nil {
			return nil, err
		}
		return synth.Synthesize(&input.Profile, input.Repos, input.Languages)
	default:
		return nil, fmt.Errorf("unknown format %q (want %s or %s)", format, config.FormatLaTeX, config.FormatHTML)
	}
}

// writeOutput writes content to dir/name, creating dir as needed.
func writeOutput(dir, name string, content []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}
