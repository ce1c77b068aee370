package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/github-resume/internal/compile"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/schemas"
	"github.com/jonathan/github-resume/internal/server/middleware"
	"github.com/jonathan/github-resume/internal/validation"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "unauthenticated", err: &middleware.UnauthenticatedError{}, want: http.StatusUnauthorized},
		{name: "rate limited", err: &middleware.RateLimitedError{RetryAfter: 10}, want: http.StatusTooManyRequests},
		{name: "invalid body", err: &validation.Error{Source: "body"}, want: http.StatusBadRequest},
		{name: "invalid bundle", err: &schemas.ValidationError{}, want: http.StatusBadRequest},
		{name: "compiler missing", err: fmt.Errorf("compile: %w", compile.ErrUnavailable), want: http.StatusServiceUnavailable},
		{name: "compile failure", err: &compile.Error{Message: "LaTeX compilation failed"}, want: http.StatusInternalServerError},
		{name: "github not found", err: &github.Error{Status: 404}, want: http.StatusNotFound},
		{name: "github forbidden", err: &github.Error{Status: 403}, want: http.StatusForbidden},
		{name: "github rate limited", err: &github.Error{Status: 429}, want: http.StatusForbidden},
		{name: "github unauthorized", err: &github.Error{Status: 401}, want: http.StatusUnauthorized},
		{name: "github server error", err: &github.Error{Status: 502}, want: http.StatusInternalServerError},
		{name: "github transport", err: &github.Error{Cause: errors.New("timeout")}, want: http.StatusInternalServerError},
		{name: "wrapped github", err: fmt.Errorf("fetch: %w", &github.Error{Status: 404}), want: http.StatusNotFound},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUpstreamMessage(t *testing.T) {
	assert.Equal(t, "User not found", upstreamMessage(404, "fallback"))
	assert.Equal(t, "API rate limit exceeded", upstreamMessage(403, "fallback"))
	assert.Equal(t, "API rate limit exceeded", upstreamMessage(429, "fallback"))
	assert.Equal(t, "Invalid GitHub token", upstreamMessage(401, "fallback"))
	assert.Equal(t, "fallback", upstreamMessage(500, "fallback"))
	assert.Equal(t, "fallback", upstreamMessage(0, "fallback"))
}
