package jobqueue

import (
	"context"

	"github.com/theleeeo/pgjobq/model"
)

// Handler executes one attempt of a job. A nil return completes the job; any
// error is recorded on the row and fed to the retry policy.
type Handler func(ctx context.Context, job model.Job) error

// Middleware wraps a Handler with cross-cutting behaviour.
type Middleware func(next Handler) Handler

// Chain composes middleware so that the first one is the outermost wrapper.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
