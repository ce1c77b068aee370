package middleware

import (
	"fmt"
	"time"
)

// UnauthenticatedError is returned when a request lacks a valid credential.
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// RateLimitedError is returned when the caller exhausted its window.
type RateLimitedError struct {
	RetryAfter int // seconds
	Limit      int
	ResetAt    time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded: limit %d, retry after %ds", e.Limit, e.RetryAfter)
}

// GovernorError wraps an unexpected failure inside the governor itself.
type GovernorError struct {
	Message string
	Cause   error
}

func (e *GovernorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("governor error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("governor error: %s", e.Message)
}

func (e *GovernorError) Unwrap() error {
	return e.Cause
}

var (
	errNoAuthenticator = &GovernorError{Message: "policy requires auth but no authenticator is configured"}
	errNoLimiter       = &GovernorError{Message: "policy requires a rate limit but no store is configured"}
)
