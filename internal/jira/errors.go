package jira

import (
	"errors"
	"fmt"
)

var (
	// ErrMisconfigured means one of the four credential fields is empty.
	ErrMisconfigured = errors.New("jira credentials incomplete")
	// ErrRemoteCallFailed covers network errors, timeouts and non-2xx replies.
	ErrRemoteCallFailed = errors.New("jira remote call failed")
	// ErrInvalidResponse means Jira answered 2xx with a body of the wrong shape.
	ErrInvalidResponse = errors.New("invalid jira response")
)

// RemoteCallError carries the cause of a failed round trip. StatusCode is
// zero when no HTTP response was received.
type RemoteCallError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: jira returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

func (e *RemoteCallError) Is(target error) bool { return target == ErrRemoteCallFailed }

func invalidResponse(op, reason string) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidResponse, reason)
}
