package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/github-resume/internal/compile"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/schemas"
	"github.com/jonathan/github-resume/internal/server/middleware"
	"github.com/jonathan/github-resume/internal/validation"
)

// HTTPStatus returns the status code an error is reported with. Compile
// and synthesis failures fall through to 500.
func HTTPStatus(err error) int {
	var (
		unauthenticated *middleware.UnauthenticatedError
		rateLimited     *middleware.RateLimitedError
		invalid         *validation.Error
		invalidSchema   *schemas.ValidationError
		upstream        *github.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &invalid), errors.As(err, &invalidSchema):
		return http.StatusBadRequest
	case errors.Is(err, compile.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return upstreamStatus(upstream.Status)
	default:
		return http.StatusInternalServerError
	}
}

// upstreamStatus maps a GitHub status onto the small set the API reports.
func upstreamStatus(status int) int {
	switch status {
	case http.StatusNotFound:
		return http.StatusNotFound
	case http.StatusForbidden, http.StatusTooManyRequests:
		return http.StatusForbidden
	case http.StatusUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// upstreamMessage is the client-facing message for a GitHub failure;
// fallback is used for statuses outside the mapped set.
func upstreamMessage(status int, fallback string) string {
	switch status {
	case http.StatusNotFound:
		return "User not found"
	case http.StatusForbidden, http.StatusTooManyRequests:
		return "API rate limit exceeded"
	case http.StatusUnauthorized:
		return "Invalid GitHub token"
	default:
		return fallback
	}
}
