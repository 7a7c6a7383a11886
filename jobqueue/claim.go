package jobqueue

import (
	"context"
	"log/slog"

	"github.com/theleeeo/pgjobq/model"
)

// claim asks the store for the next job. A nil job with a nil error means the
// queue had nothing claimable for this worker.
func (w *Worker) claim(ctx context.Context) (*model.Job, error) {
	job, err := w.store.Claim(ctx, w.cfg.Names)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.cfg.Metrics.ClaimError()
		w.log.Error("claim failed", slog.String("error", err.Error()))
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	w.cfg.Metrics.Claimed(job.Name)
	w.jobLogger(*job).Debug("job claimed")
	return job, nil
}
