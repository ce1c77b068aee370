package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled   bool
	Backend   string
	Allowlist map[string]bool
	Blocklist map[string]bool
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:   enabled,
		Backend:   strings.ToLower(getEnvString("RATE_LIMIT_BACKEND", BackendMemory)),
		Allowlist: parseIdentityList(getEnvString("RATE_LIMIT_ALLOWLIST", "")),
		Blocklist: parseIdentityList(getEnvString("RATE_LIMIT_BLOCKLIST", "")),
	}
}

// NewStore builds the store selected by cfg. windows is required for the
// postgres backend and ignored otherwise.
func NewStore(cfg *Config, windows WindowStore) (Store, error) {
	if cfg == nil || !cfg.Enabled {
		return NoopStore{}, nil
	}

	var store Store
	switch cfg.Backend {
	case "", BackendMemory:
		store = NewMemoryStore()
	case BackendPostgres:
		if windows == nil {
			return nil, fmt.Errorf("rate limit backend %q requires a database", cfg.Backend)
		}
		store = NewPostgresStore(windows)
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}

	return WithAccessLists(store, cfg.Allowlist, cfg.Blocklist), nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseIdentityList parses a comma-separated list of client identities into a set.
func parseIdentityList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			result[id] = true
		}
	}

	return result
}
