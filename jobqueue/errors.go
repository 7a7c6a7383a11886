package jobqueue

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStoreUnavailable wraps any failure of the job store seen by the
	// enqueue and query API.
	ErrStoreUnavailable = errors.New("pgjobq: store unavailable")

	// ErrInvalidJob means Enqueue was given an empty name, args that are not
	// a JSON object, or a non-positive retry budget.
	ErrInvalidJob = errors.New("pgjobq: invalid job")

	ErrDuplicateHandler = errors.New("pgjobq: handler already registered")

	ErrAlreadyStarted = errors.New("pgjobq: worker already started")

	// ErrNotDead is returned by Requeue for a job that is not dead.
	ErrNotDead = errors.New("pgjobq: job is not dead")
)

type RetryError struct {
	After time.Duration
	Err   error
}

func (e RetryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("retry after %s", e.After)
	}
	return fmt.Sprintf("retry after %s: %v", e.After, e.Err)
}
func (e RetryError) Unwrap() error { return e.Err }

// RetryAfter wraps an error as retryable after the given delay, overriding the
// worker's backoff. If err is nil, it still schedules a retry (useful for
// "not ready yet"). The job's retry budget still applies.
func RetryAfter(err error, after time.Duration) error {
	return RetryError{After: after, Err: err}
}

type PermanentError struct{ Err error }

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}
func (e PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as non-retryable (job goes to dead).
func Permanent(err error) error { return PermanentError{Err: err} }
