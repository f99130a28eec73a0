package api

import (
	"errors"
	"fmt"
)

// ErrAuthRequired reports that the backend rejected the call with HTTP 401.
// Callers route it to the sign-in gate instead of showing a generic error.
var ErrAuthRequired = errors.New("sign in required")

// BackendError is a failure the backend reported inside a well-formed
// envelope. The message is surfaced to the user verbatim.
type BackendError struct {
	Op      string // e.g. "generate_questions"
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error [%s]", e.Op)
	}
	return e.Message
}

// IsBackendError reports whether err carries a backend-reported failure.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
