package github

import (
	"errors"
	"fmt"
)

// Error represents a failed GitHub API call. Status is the HTTP status
// returned by GitHub, or 0 when no response was received.
type Error struct {
	URL     string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("github error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("github error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusOf returns the GitHub HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ghErr *Error
	if errors.As(err, &ghErr) {
		return ghErr.Status
	}
	return 0
}
