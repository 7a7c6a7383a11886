package jobqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// DefaultRetries is the attempt budget of a job enqueued without one.
const DefaultRetries = 25

// Queue is the producer side of the job queue plus the operational queries.
type Queue struct {
	store   store.Store
	metrics *metrics.Metrics
}

// NewQueue returns a Queue over st. m may be nil.
func NewQueue(st store.Store, m *metrics.Metrics) *Queue {
	return &Queue{store: st, metrics: m}
}

type EnqueueOptions struct {
	StartAfter *time.Time
	Retries    *int
}

// Enqueue persists a new pending job and returns its id. args is encoded to
// JSON and must encode to an object; nil becomes {}. No deduplication is
// performed: identical calls create distinct jobs.
func (q *Queue) Enqueue(ctx context.Context, name string, args any, opts *EnqueueOptions) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: name must not be empty", ErrInvalidJob)
	}

	b, err := encodeArgs(args)
	if err != nil {
		return 0, err
	}

	nj := model.NewJob{Name: name, Args: b, Retries: DefaultRetries}
	if opts != nil && opts.StartAfter != nil {
		nj.StartAfter = *opts.StartAfter
	}
	if opts != nil && opts.Retries != nil {
		if *opts.Retries < 1 {
			return 0, fmt.Errorf("%w: retries must be at least 1, got %d", ErrInvalidJob, *opts.Retries)
		}
		nj.Retries = *opts.Retries
	}

	id, err := q.store.Insert(ctx, nj)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	q.metrics.Enqueued(name)
	return id, nil
}

func encodeArgs(args any) (json.RawMessage, error) {
	var b []byte
	switch v := args.(type) {
	case nil:
		return json.RawMessage(`{}`), nil
	case json.RawMessage:
		b = v
	case []byte:
		b = v
	default:
		var err error
		if b, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("%w: encode args: %w", ErrInvalidJob, err)
		}
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return json.RawMessage(`{}`), nil
	}
	if b[0] != '{' || !json.Valid(b) {
		return nil, fmt.Errorf("%w: args must be a JSON object", ErrInvalidJob)
	}
	return b, nil
}
