package jobqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/store"
)

// ReaperTask periodically releases claims older than staleAfter, returning
// the job to pending if it has attempts left. It assumes no handler
// legitimately runs that long: a job reaped while its worker is still alive
// will be executed twice, and the slower finalize is rejected with
// store.ErrClaimLost.
func ReaperTask(st store.Store, interval, staleAfter time.Duration, log *slog.Logger, m *metrics.Metrics) LeaderTask {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context) error {
		if staleAfter <= 0 {
			log.Info("reaper: disabled")
			<-ctx.Done()
			return ctx.Err()
		}

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			n, err := st.ReapStale(ctx, staleAfter)
			switch {
			case err != nil && ctx.Err() == nil:
				log.Error("reaper: sweep failed", slog.String("error", err.Error()))
			case n > 0:
				m.Reaped(n)
				log.Warn("reaper: released stale claims",
					slog.Int64("count", n),
					slog.Duration("stale_after", staleAfter),
				)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
}

// ClockTask runs the periodic schedules for as long as this process leads.
func ClockTask(c *Clock) LeaderTask {
	return c.Run
}
