package advisor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidate signals a model response with no candidate content.
	ErrNoCandidate = errors.New("advisor: model response has no candidate")
	// ErrEmptyPrompt rejects a request without a prompt.
	ErrEmptyPrompt = errors.New("advisor: prompt is required")
	// ErrNoProvider rejects orchestration without a model provider.
	ErrNoProvider = errors.New("advisor: model provider is required")
)

// StatusError is an orchestration-level failure carried to the caller with an
// HTTP-style status. Tool-level failures never become StatusErrors; they are
// absorbed into shaped results instead.
type StatusError struct {
	Status  int
	Message string
	Cause   error
}

func (e *StatusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *StatusError) Unwrap() error { return e.Cause }

// NewStatusError builds a StatusError without a cause.
func NewStatusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}
