package jobqueue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/theleeeo/pgjobq/backoff"
	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// errWorkerShutdown is the cancellation cause of handlers interrupted by a
// forced Stop.
var errWorkerShutdown = errors.New("pgjobq: worker shutting down")

const (
	// finalizeTimeout bounds the write-back of a job's outcome, which runs
	// even after the worker has been asked to stop.
	finalizeTimeout = 10 * time.Second

	// forceGrace is how long Stop waits for handlers to return after their
	// contexts were cancelled.
	forceGrace = 2 * time.Second
)

type WorkerConfig struct {
	WorkerID string

	// Concurrency is the number of jobs executed at once by this process.
	Concurrency int

	// PollInterval is how long an idle slot sleeps before claiming again.
	PollInterval time.Duration

	// Names restricts the worker to these job names. Empty means every job,
	// including ones with no registered handler, which are buried.
	Names []string

	// JobTimeout bounds each attempt. Zero means no limit.
	JobTimeout time.Duration

	// ShutdownTimeout is the drain budget Run gives Stop.
	ShutdownTimeout time.Duration

	Backoff backoff.Strategy

	// Middleware wraps every handler, inside panic recovery and the timeout.
	Middleware []Middleware

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (c *WorkerConfig) setDefaults() {
	if c.WorkerID == "" {
		c.WorkerID = uuid.NewString()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 250 * time.Millisecond
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.Backoff == nil {
		c.Backoff = backoff.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type Worker struct {
	store    store.Store
	registry *Registry
	cfg      WorkerConfig
	policy   RetryPolicy
	mws      []Middleware
	log      *slog.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}

	loopsWG sync.WaitGroup

	// Track in-flight job cancels so Stop(ctx) can force-cancel if deadline hits.
	inFlightMu sync.Mutex
	inFlight   map[claimKey]context.CancelCauseFunc
}

// claimKey identifies one attempt. A job reaped and re-claimed by the same
// worker is in flight twice under different attempts.
type claimKey struct {
	id      int64
	attempt int
}

func NewWorker(st store.Store, registry *Registry, cfg WorkerConfig) *Worker {
	cfg.setDefaults()
	log := cfg.Logger.With(slog.String("worker_id", cfg.WorkerID))

	mws := append([]Middleware{Recover(log), Timeout(cfg.JobTimeout)}, cfg.Middleware...)

	return &Worker{
		store:    st,
		registry: registry,
		cfg:      cfg,
		policy:   RetryPolicy{Backoff: cfg.Backoff},
		mws:      mws,
		log:      log,
		stopCh:   make(chan struct{}),
		inFlight: make(map[claimKey]context.CancelCauseFunc),
	}
}

func (w *Worker) ID() string { return w.cfg.WorkerID }

// Start launches the worker slots and returns immediately. Cancelling ctx asks
// the worker to stop claiming; jobs already running are allowed to finish.
// Use Stop to wait for that, with a deadline.
func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	// Handlers must outlive ctx so that a cancelled parent drains instead of
	// aborting in-flight work.
	base := context.WithoutCancel(ctx)
	for range w.cfg.Concurrency {
		w.loopsWG.Go(func() {
			w.loop(base)
		})
	}

	w.loopsWG.Go(func() {
		select {
		case <-ctx.Done():
			w.requestStop()
		case <-w.stopCh:
		}
	})

	w.log.Info("worker started",
		slog.Int("concurrency", w.cfg.Concurrency),
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Any("names", w.cfg.Names),
	)
	return nil
}

// Stop gracefully stops fetching new jobs and waits until all loops exit.
// If stopCtx expires, it force-cancels in-flight jobs (so handlers can stop),
// and those jobs are put back to pending if they have attempts left.
func (w *Worker) Stop(stopCtx context.Context) error {
	w.requestStop()

	done := make(chan struct{})
	go func() {
		w.loopsWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.log.Info("worker stopped")
		return nil
	case <-stopCtx.Done():
		n := w.cancelInFlight()
		w.log.Warn("shutdown deadline reached, cancelling in-flight jobs", slog.Int("in_flight", n))

		select {
		case <-done:
			w.log.Info("worker stopped")
			return nil
		case <-time.After(forceGrace):
			return stopCtx.Err()
		}
	}
}

// Run starts the worker and blocks until ctx is cancelled, then stops it with
// ShutdownTimeout as the drain budget.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-w.stopCh:
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), w.cfg.ShutdownTimeout)
	defer cancel()
	return w.Stop(stopCtx)
}

// Wait blocks until all loops exit (useful if you drive shutdown via ctx cancel).
func (w *Worker) Wait() {
	w.loopsWG.Wait()
}

// Drain works the queue on the calling goroutine until nothing is claimable
// and returns the number of attempts it executed. Jobs retried with a delay
// are not waited for.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		job, err := w.claim(ctx)
		if err != nil {
			return n, err
		}
		if job == nil {
			return n, nil
		}

		w.runOne(ctx, *job)
		n++
	}
}

func (w *Worker) requestStop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Worker) stopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

// sleep waits d and reports false if the worker was asked to stop meanwhile.
func (w *Worker) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-w.stopCh:
		return false
	case <-t.C:
		return true
	}
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if w.stopping() {
			return
		}

		job, err := w.claim(ctx)
		if err != nil || job == nil {
			if !w.sleep(w.cfg.PollInterval) {
				return
			}
			continue
		}

		w.runOne(ctx, *job)
	}
}

func (w *Worker) runOne(ctx context.Context, job model.Job) {
	log := w.jobLogger(job)

	h, ok := w.registry.Lookup(job.Name)
	if !ok {
		w.buryUnknown(ctx, job)
		return
	}

	jobCtx, cancel := context.WithCancelCause(ctx)
	key := claimKey{id: job.ID, attempt: job.Attempts}

	w.inFlightMu.Lock()
	w.inFlight[key] = cancel
	w.inFlightMu.Unlock()

	start := time.Now()
	runErr := Chain(h, w.mws...)(jobCtx, job)
	took := time.Since(start)
	shutdown := errors.Is(context.Cause(jobCtx), errWorkerShutdown)

	cancel(nil)
	w.inFlightMu.Lock()
	delete(w.inFlight, key)
	w.inFlightMu.Unlock()

	if err := w.finish(ctx, job, runErr, shutdown, took); err != nil {
		log.Error("finalize failed", slog.String("error", err.Error()))
	}
}

func (w *Worker) cancelInFlight() int {
	w.inFlightMu.Lock()
	defer w.inFlightMu.Unlock()
	for _, cancel := range w.inFlight {
		cancel(errWorkerShutdown)
	}
	return len(w.inFlight)
}

func (w *Worker) jobLogger(job model.Job) *slog.Logger {
	return w.log.With(
		slog.Int64("job_id", job.ID),
		slog.String("job_name", job.Name),
		slog.Int("attempt", job.Attempts),
	)
}
