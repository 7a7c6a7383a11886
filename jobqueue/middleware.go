package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/theleeeo/pgjobq/model"
)

// Recover turns a handler panic into an ordinary failure carrying the panic
// value. The stack goes to the log, not the job row.
func Recover(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, job model.Job) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("job handler panicked",
						slog.Int64("job_id", job.ID),
						slog.String("job_name", job.Name),
						slog.Int("attempt", job.Attempts),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					retErr = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, job)
		}
	}
}

// Timeout bounds each attempt to d. An attempt that outlives its deadline is
// a failure even if the handler ignores ctx and returns nil.
func Timeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, job model.Job) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			err := next(ctx, job)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				if err == nil || errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("job exceeded timeout of %s: %w", d, context.DeadlineExceeded)
				}
			}
			return err
		}
	}
}
