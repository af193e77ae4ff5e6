package github

import (
	"errors"
	"fmt"
)

// ErrAuth matches any AuthError.
var ErrAuth = errors.New("github authentication failed")

// AuthError is a 401/403 response. It is terminal: callers must not retry.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github auth error %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// TransientSearchError is a single failed page or request.
type TransientSearchError struct {
	StatusCode int
	Query      string
	Err        error
}

func (e *TransientSearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github request for %q failed: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("github request for %q failed with status %d", e.Query, e.StatusCode)
}

func (e *TransientSearchError) Unwrap() error { return e.Err }

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("github resource not found")
