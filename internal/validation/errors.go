package validation

import "strings"

// Error reports every schema violation found in a request.
type Error struct {
	Source string // "body" or "params"
	Errors []string
}

func (e *Error) Error() string {
	prefix := "validation failed"
	if e.Source != "" {
		prefix = "invalid request " + e.Source
	}
	if len(e.Errors) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(e.Errors, "; ")
}
