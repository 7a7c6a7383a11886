package jobqueue

import (
	"errors"
	"time"

	"github.com/theleeeo/pgjobq/backoff"
	"github.com/theleeeo/pgjobq/model"
)

type Action int

const (
	ActionComplete Action = iota
	ActionRetry
	ActionBury
)

func (a Action) String() string {
	switch a {
	case ActionComplete:
		return "complete"
	case ActionRetry:
		return "retry"
	case ActionBury:
		return "bury"
	default:
		return "unknown"
	}
}

type Decision struct {
	Action Action
	Delay  time.Duration // only meaningful for ActionRetry
}

// RetryPolicy decides what happens to a claimed job once its handler returns.
type RetryPolicy struct {
	Backoff backoff.Strategy
}

// Decide maps the outcome of one attempt to a finalize action. job must be the
// row as returned by the claim, so job.Attempts already counts this attempt.
// shutdown reports that the handler was cancelled because the worker was
// forced to stop.
func (p RetryPolicy) Decide(job model.Job, runErr error, shutdown bool) Decision {
	if runErr == nil {
		return Decision{Action: ActionComplete}
	}

	var pe PermanentError
	if errors.As(runErr, &pe) {
		return Decision{Action: ActionBury}
	}

	if job.Attempts >= job.Retries {
		return Decision{Action: ActionBury}
	}

	// The job did nothing wrong; hand it straight to another worker.
	if shutdown {
		return Decision{Action: ActionRetry}
	}

	var re RetryError
	if errors.As(runErr, &re) {
		return Decision{Action: ActionRetry, Delay: max(re.After, 0)}
	}

	strategy := p.Backoff
	if strategy == nil {
		strategy = backoff.Default()
	}
	return Decision{Action: ActionRetry, Delay: strategy.Delay(job.Attempts)}
}
