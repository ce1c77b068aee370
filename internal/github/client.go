// Package github fetches profile, repository and language data from the
// GitHub REST API on behalf of an authenticated user.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/github-resume/internal/types"
)

// Defaults for the REST client.
const (
	DefaultBaseURL   = "https://api.github.com"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "github-resume/1.0"
	DefaultPerPage   = 100
	apiVersion       = "2022-11-28"
	maxErrorBodySize = 64 << 10
)

// DataSource is the GitHub data collaborator. credential is the caller's
// opaque access token.
type DataSource interface {
	FetchProfile(ctx context.Context, credential string) (*types.Profile, error)
	FetchRepositories(ctx context.Context, credential, handle string) ([]types.Repository, error)
	FetchLanguageBytes(ctx context.Context, credential, owner, repo string) (types.LanguageHistogram, error)
}

// Options configures the client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	PerPage    int
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for the public GitHub API.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		PerPage:   DefaultPerPage,
	}
}

// Client implements DataSource against the GitHub REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	perPage   int
}

// NewClient creates a client. Nil or zero options fall back to defaults.
func NewClient(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: base, Message: "invalid base URL", Cause: err}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	perPage := opts.PerPage
	if perPage <= 0 || perPage > DefaultPerPage {
		perPage = DefaultPerPage
	}

	return &Client{
		baseURL:   parsed,
		http:      httpClient,
		userAgent: userAgent,
		perPage:   perPage,
	}, nil
}

// FetchProfile returns the profile of the user the credential belongs to.
func (c *Client) FetchProfile(ctx context.Context, credential string) (*types.Profile, error) {
	var profile types.Profile
	if err := c.getJSON(ctx, credential, "/user", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchRepositories lists up to one page of public repositories for
// handle, most recently updated first.
func (c *Client) FetchRepositories(ctx context.Context, credential, handle string) ([]types.Repository, error) {
	query := url.Values{}
	query.Set("sort", "updated")
	query.Set("per_page", strconv.Itoa(c.perPage))

	var repos []types.Repository
	path := "/users/" + url.PathEscape(handle) + "/repos"
	if err := c.getJSON(ctx, credential, path, query, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// FetchLanguageBytes returns the byte count per language of one repository
// in the order GitHub reports it.
func (c *Client) FetchLanguageBytes(ctx context.Context, credential, owner, repo string) (types.LanguageHistogram, error) {
	var languages types.LanguageHistogram
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/languages"
	if err := c.getJSON(ctx, credential, path, nil, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

func (c *Client) getJSON(ctx context.Context, credential, path string, query url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()
	urlStr := endpoint.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &Error{
			URL:     urlStr,
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{URL: urlStr, Status: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// errorMessage extracts GitHub's {"message": ...} body, falling back to the status.
func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return fmt.Sprintf("HTTP status %d: %s", resp.StatusCode, payload.Message)
	}
	return fmt.Sprintf("HTTP status %d", resp.StatusCode)
}
