package backend

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse marks responses that could not be decoded into the
// standard envelope.
var ErrInvalidResponse = errors.New("invalid backend response")

// NetworkError wraps a transport-level failure reaching the backend. These
// are recoverable by retrying the whole workflow.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// EnvelopeError is a well-formed envelope reporting failure
// (success:false or a missing data payload). The backend's message is
// preserved verbatim so callers can classify it.
type EnvelopeError struct {
	StatusCode int
	Message    string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("backend reported failure (%d): %s", e.StatusCode, e.Message)
}
