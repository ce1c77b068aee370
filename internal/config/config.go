// Package config loads service settings from the environment and CLI
// settings from an optional JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Output formats for the render command.
const (
	FormatLaTeX = "latex"
	FormatHTML  = "html"
)

// Config is the CLI configuration loaded from a JSON file. Every field is
// optional; flags fill in or override what is missing.
type Config struct {
	Input     string `json:"input,omitempty"`    // path to an input bundle
	Template  string `json:"template,omitempty"` // path to a LaTeX template overriding the built-in one
	OutputDir string `json:"output_dir,omitempty"`
	Format    string `json:"format,omitempty" validate:"omitempty,oneof=latex html"`
	AsOf      string `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"` // reference date for tenure

	GitHubAPIURL string `json:"github_api_url,omitempty" validate:"omitempty,url"`
	DatabaseURL  string `json:"database_url,omitempty"`
	Compile      bool   `json:"compile,omitempty"` // also produce a PDF
	Verbose      bool   `json:"verbose,omitempty"`
}

// LoadConfig reads and parses a JSON config file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks field formats and that referenced files exist. Required
// fields are left to the command after flags are merged.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	return nil
}

// MergeWithDefaults returns a copy with empty fields taken from defaults.
// Booleans are not merged since unset and false look the same.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.Format == "" {
		result.Format = FormatLaTeX
	}
	if result.AsOf == "" {
		result.AsOf = defaults.AsOf
	}
	if result.GitHubAPIURL == "" {
		result.GitHubAPIURL = defaults.GitHubAPIURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	return result
}
