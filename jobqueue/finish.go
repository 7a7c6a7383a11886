package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theleeeo/pgjobq/backoff"
	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

var finalizeBackoff = backoff.NewExponential(50*time.Millisecond, time.Second)

// finish writes the outcome of one attempt back to the job row.
func (w *Worker) finish(ctx context.Context, job model.Job, runErr error, shutdown bool, took time.Duration) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	log := w.jobLogger(job)
	d := w.policy.Decide(job, runErr, shutdown)

	var (
		err     error
		outcome string
	)
	switch d.Action {
	case ActionComplete:
		outcome = metrics.OutcomeCompleted
		err = w.persist(ctx, log, func(ctx context.Context) error {
			return w.store.Complete(ctx, job.ID, job.Attempts)
		})
		if err == nil {
			log.Info("job completed", slog.Duration("took", took))
		}

	case ActionRetry:
		outcome = metrics.OutcomeRetried
		err = w.persist(ctx, log, func(ctx context.Context) error {
			return w.store.Retry(ctx, job.ID, job.Attempts, runErr.Error(), d.Delay)
		})
		if err == nil {
			log.Warn("job failed, will retry",
				slog.String("error", runErr.Error()),
				slog.Duration("delay", d.Delay),
				slog.Bool("shutdown", shutdown),
			)
		}

	case ActionBury:
		outcome = metrics.OutcomeDead
		err = w.persist(ctx, log, func(ctx context.Context) error {
			return w.store.Bury(ctx, job.ID, job.Attempts, runErr.Error())
		})
		if err == nil {
			log.Error("job is dead",
				slog.String("error", runErr.Error()),
				slog.Int("retries", job.Retries),
			)
		}
	}

	if errors.Is(err, store.ErrClaimLost) {
		// The stale sweep handed the job to someone else; their attempt owns
		// the row now.
		log.Warn("claim lost before finalize", slog.String("action", d.Action.String()))
		outcome, err = metrics.OutcomeLost, nil
	}

	w.cfg.Metrics.Finished(job.Name, outcome, took)
	if err != nil {
		return fmt.Errorf("%s job %d: %w", d.Action, job.ID, err)
	}
	return nil
}

// buryUnknown finalizes a job whose name has no registered handler. Nothing
// could ever run it, so it is dead on the first attempt.
func (w *Worker) buryUnknown(ctx context.Context, job model.Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	log := w.jobLogger(job)
	log.Error("no handler registered", slog.Any("registered", w.registry.Names()))

	outcome := metrics.OutcomeUnknown
	msg := fmt.Sprintf("no handler registered for %q", job.Name)
	err := w.persist(ctx, log, func(ctx context.Context) error {
		return w.store.Bury(ctx, job.ID, job.Attempts, msg)
	})
	if errors.Is(err, store.ErrClaimLost) {
		outcome, err = metrics.OutcomeLost, nil
	}
	if err != nil {
		log.Error("finalize failed", slog.String("error", err.Error()))
	}
	w.cfg.Metrics.Finished(job.Name, outcome, 0)
}

// persist retries a finalize write until it lands, the claim is lost or ctx
// expires. A write that never lands leaves the job running until the stale
// sweep picks it up.
func (w *Worker) persist(ctx context.Context, log *slog.Logger, write func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := write(ctx)
		if err == nil || errors.Is(err, store.ErrClaimLost) {
			return err
		}

		delay := finalizeBackoff.Delay(attempt)
		if dl, ok := ctx.Deadline(); ok && time.Until(dl) < delay {
			return err
		}
		log.Warn("finalize failed, retrying",
			slog.String("error", err.Error()),
			slog.Int("try", attempt),
			slog.Duration("delay", delay),
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}
