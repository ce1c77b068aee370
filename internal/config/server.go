package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults for the HTTP service.
const (
	DefaultPort                     = 8080
	DefaultGitHubAPIURL             = "https://api.github.com"
	DefaultLanguageFetchConcurrency = 8
	DefaultLogLevel                 = "info"
	DefaultLogFormat                = "text"
)

// ServerConfig is the environment-driven configuration of the HTTP service.
type ServerConfig struct {
	Port                     int    `validate:"min=1,max=65535"`
	DatabaseURL              string // optional; enables Postgres rate windows and the document archive
	GitHubAPIURL             string `validate:"required,url"`
	CompilerEnabled          bool
	ChromeEnabled            bool
	LanguageFetchConcurrency int    `validate:"min=1,max=64"`
	LogLevel                 string `validate:"oneof=debug info warn error"`
	LogFormat                string `validate:"oneof=text json"`
	AllowedOrigins           []string
}

// NewServerConfig reads the service configuration from the environment.
func NewServerConfig() (*ServerConfig, error) {
	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("LANGUAGE_FETCH_CONCURRENCY", DefaultLanguageFetchConcurrency)
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Port:                     port,
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		GitHubAPIURL:             getEnvString("GITHUB_API_URL", DefaultGitHubAPIURL),
		CompilerEnabled:          getEnvBool("COMPILER_ENABLED", true),
		ChromeEnabled:            getEnvBool("CHROME_ENABLED", false),
		LanguageFetchConcurrency: concurrency,
		LogLevel:                 strings.ToLower(getEnvString("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:                strings.ToLower(getEnvString("LOG_FORMAT", DefaultLogFormat)),
		AllowedOrigins:           splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
