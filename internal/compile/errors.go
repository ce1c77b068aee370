package compile

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when no engine needed by a compiler is installed.
var ErrUnavailable = errors.New("compiler unavailable")

// Error represents a failed compilation. LogOutput holds the tail of the
// engine output when there is one.
type Error struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("compilation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
