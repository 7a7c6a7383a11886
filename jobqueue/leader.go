package jobqueue

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/store"
)

// DefaultLeaderLock is the lock name shared by every pgjobq process running
// maintenance against the same database.
const DefaultLeaderLock = "pgjobq.leader"

// LeaderTask runs for as long as this process leads. A task that fails is
// started again after TaskRestartDelay; one that returns nil is not.
type LeaderTask func(ctx context.Context) error

type LeaderElectorConfig struct {
	ID       string
	LockName string

	// AcquireInterval is how often a follower retries the lock (±20%).
	AcquireInterval time.Duration
	// CheckInterval is how often the leader verifies it still holds the lock.
	CheckInterval time.Duration
	// TaskRestartDelay is the pause before a failed task runs again.
	TaskRestartDelay time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (c *LeaderElectorConfig) setDefaults() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LockName == "" {
		c.LockName = DefaultLeaderLock
	}
	if c.AcquireInterval <= 0 {
		c.AcquireInterval = 2 * time.Second
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Second
	}
	if c.TaskRestartDelay <= 0 {
		c.TaskRestartDelay = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LeaderElector makes sure cluster-wide maintenance (the stale sweep and the
// periodic schedules) runs in one process at a time.
type LeaderElector struct {
	locker store.Locker
	cfg    LeaderElectorConfig
	log    *slog.Logger

	leading atomic.Bool

	mu    sync.Mutex
	tasks []leaderTask
}

type leaderTask struct {
	name string
	run  LeaderTask
}

func NewLeaderElector(locker store.Locker, cfg LeaderElectorConfig) (*LeaderElector, error) {
	if locker == nil {
		return nil, errors.New("pgjobq: leader elector needs a locker")
	}
	cfg.setDefaults()
	return &LeaderElector{
		locker: locker,
		cfg:    cfg,
		log:    cfg.Logger.With(slog.String("node_id", cfg.ID), slog.String("lock", cfg.LockName)),
	}, nil
}

// AddTask registers a task for the next leadership term.
func (le *LeaderElector) AddTask(name string, fn LeaderTask) {
	if fn == nil {
		return
	}
	le.mu.Lock()
	defer le.mu.Unlock()
	le.tasks = append(le.tasks, leaderTask{name: name, run: fn})
}

func (le *LeaderElector) IsLeader() bool {
	return le.leading.Load()
}

// Run campaigns for the lock until ctx is done and returns ctx.Err(). A term
// ends when ctx ends or the lock check fails; the tasks are then cancelled and
// awaited before the lock is given up.
func (le *LeaderElector) Run(ctx context.Context) error {
	for {
		lock, err := le.locker.TryLock(ctx, le.cfg.LockName)
		switch {
		case err != nil && ctx.Err() == nil:
			le.log.Warn("leader: lock attempt failed", slog.String("error", err.Error()))
		case lock != nil:
			le.term(ctx, lock)
		}

		if !sleepJitter(ctx, le.cfg.AcquireInterval) {
			return ctx.Err()
		}
	}
}

func (le *LeaderElector) term(ctx context.Context, lock store.Lock) {
	le.setLeading(true)
	le.log.Info("leader: acquired")

	termCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, t := range le.snapshot() {
		wg.Go(func() { le.supervise(termCtx, t) })
	}

	reason := le.hold(termCtx, lock)
	cancel()
	wg.Wait()

	unlockCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	if err := lock.Unlock(unlockCtx); err != nil {
		le.log.Warn("leader: unlock failed", slog.String("error", err.Error()))
	}
	done()

	le.setLeading(false)
	le.log.Info("leader: stepped down", slog.Any("reason", reason))
}

// hold returns when ctx ends or the lock can no longer be confirmed.
func (le *LeaderElector) hold(ctx context.Context, lock store.Lock) error {
	t := time.NewTicker(le.cfg.CheckInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := lock.Check(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}
	}
}

func (le *LeaderElector) supervise(ctx context.Context, t leaderTask) {
	log := le.log.With(slog.String("task", t.name))
	for {
		err := t.run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			log.Info("leader: task finished")
			return
		}

		log.Error("leader: task failed, restarting",
			slog.String("error", err.Error()),
			slog.Duration("delay", le.cfg.TaskRestartDelay),
		)
		if !sleepJitter(ctx, le.cfg.TaskRestartDelay) {
			return
		}
	}
}

func (le *LeaderElector) snapshot() []leaderTask {
	le.mu.Lock()
	defer le.mu.Unlock()
	return append([]leaderTask(nil), le.tasks...)
}

func (le *LeaderElector) setLeading(v bool) {
	le.cfg.Metrics.Leading(v)
	le.leading.Store(v)
}

// sleepJitter waits d ±20% and reports false if ctx ended first.
func sleepJitter(ctx context.Context, d time.Duration) bool {
	d = time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
