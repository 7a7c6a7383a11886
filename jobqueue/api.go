package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// Get fetches a single job by id. A missing job is reported as
// store.ErrNotFound.
func (q *Queue) Get(ctx context.Context, id int64) (model.Job, error) {
	j, err := q.store.Get(ctx, id)
	if err != nil {
		return model.Job{}, storeErr(err)
	}
	return j, nil
}

// List returns a page of jobs matching f.
func (q *Queue) List(ctx context.Context, f store.Filter) ([]model.Job, error) {
	jobs, err := q.store.List(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	return jobs, nil
}

// Counts returns total and per-state counts, optionally for one job name.
func (q *Queue) Counts(ctx context.Context, name string) (store.Counts, error) {
	c, err := q.store.Counts(ctx, name)
	if err != nil {
		return store.Counts{}, storeErr(err)
	}
	return c, nil
}

// Dead lists the most recent dead jobs.
func (q *Queue) Dead(ctx context.Context, name string, limit int) ([]model.Job, error) {
	return q.List(ctx, store.Filter{
		State:       model.StateDead,
		Name:        name,
		Limit:       limit,
		IncludeArgs: true,
		Sort:        store.SortIDDesc,
	})
}

// Requeue enqueues a fresh copy of a dead job with the same name, args and
// retry budget. The dead row is left as it is.
func (q *Queue) Requeue(ctx context.Context, id int64) (int64, error) {
	j, err := q.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if j.State() != model.StateDead {
		return 0, fmt.Errorf("%w: job %d is %s", ErrNotDead, id, j.State())
	}
	if j.InFlight() {
		return 0, fmt.Errorf("%w: job %d is still running its final attempt", ErrNotDead, id)
	}

	retries := j.Retries
	return q.Enqueue(ctx, j.Name, j.Args, &EnqueueOptions{Retries: &retries})
}

// Prune deletes completed jobs that finished more than olderThan ago. It is
// meant for offline retention and never touches pending, running or dead jobs.
func (q *Queue) Prune(ctx context.Context, olderThan time.Duration, batchSize, maxBatches int) (int64, error) {
	if olderThan < 0 {
		return 0, fmt.Errorf("pgjobq: prune threshold must not be negative, got %s", olderThan)
	}
	n, err := q.store.Prune(ctx, olderThan, batchSize, maxBatches)
	if err != nil {
		return n, storeErr(err)
	}
	return n, nil
}

// Ping reports whether the store is reachable.
func (q *Queue) Ping(ctx context.Context) error {
	if err := q.store.Ping(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// storeErr marks store failures, leaving lookups of missing rows alone.
func storeErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
