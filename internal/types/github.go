// Package types provides type definitions for structured data used throughout the github-resume system.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Timestamp is a point in time decoded from either RFC 3339 or a bare YYYY-MM-DD date.
// GitHub returns RFC 3339; hand-written input bundles often use plain dates.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339, YYYY-MM-DD, an empty string, or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		t.Time = time.Time{}
		return nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON writes the timestamp as RFC 3339, or null when unset.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Profile is a GitHub user profile. Free-text fields are untrusted.
type Profile struct {
	Login       string    `json:"login" validate:"required,max=39"`
	Name        string    `json:"name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Location    string    `json:"location,omitempty"`
	Company     string    `json:"company,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	PublicRepos int       `json:"public_repos" validate:"gte=0"`
	Followers   int       `json:"followers" validate:"gte=0"`
	Following   int       `json:"following" validate:"gte=0"`
	CreatedAt   Timestamp `json:"created_at"`
}

// RepositoryOwner identifies the account that owns a repository.
type RepositoryOwner struct {
	Login string `json:"login"`
}

// Repository is a GitHub repository as returned by the list-repositories endpoint.
type Repository struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name" validate:"required"`
	FullName        string          `json:"full_name,omitempty"`
	Description     string          `json:"description,omitempty"`
	HTMLURL         string          `json:"html_url,omitempty"`
	Language        string          `json:"language,omitempty"`
	StargazersCount int             `json:"stargazers_count" validate:"gte=0"`
	ForksCount      int             `json:"forks_count" validate:"gte=0"`
	Topics          []string        `json:"topics,omitempty"`
	Owner           RepositoryOwner `json:"owner"`
	CreatedAt       Timestamp       `json:"created_at"`
	UpdatedAt       Timestamp       `json:"updated_at"`
}

// OwnerLogin returns the owning account, falling back to the full_name prefix.
func (r *Repository) OwnerLogin() string {
	if r.Owner.Login != "" {
		return r.Owner.Login
	}
	if owner, _, ok := strings.Cut(r.FullName, "/"); ok {
		return owner
	}
	return ""
}

// Key identifies the repository for logging and aggregation.
func (r *Repository) Key() string {
	if r.FullName != "" {
		return r.FullName
	}
	if owner := r.OwnerLogin(); owner != "" {
		return owner + "/" + r.Name
	}
	return r.Name
}

// ResumeInput bundles everything the synthesizer needs.
type ResumeInput struct {
	Profile   Profile           `json:"profile"`
	Repos     []Repository      `json:"repos" validate:"dive"`
	Languages LanguageHistogram `json:"languages"`
}

// Validate validates the bundle using the validator.
func (in *ResumeInput) Validate() error {
	validate := validator.New()
	return validate.Struct(in)
}
