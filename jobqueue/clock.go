package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule validates a cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	return cronParser.Parse(expr)
}

// Schedule enqueues a job every time its cron expression fires.
type Schedule struct {
	Name    string
	Cron    string
	Job     string
	Args    json.RawMessage
	Retries int // zero means DefaultRetries
}

type clockEntry struct {
	Schedule
	sched cron.Schedule
	next  time.Time
}

// Clock enqueues jobs for a fixed set of schedules. It has no memory of past
// fires: when it starts (or a new leader takes over) every schedule is
// counted from the current time, so fires missed while nobody led are
// skipped, not replayed.
type Clock struct {
	queue   *Queue
	entries []*clockEntry
	log     *slog.Logger
	now     func() time.Time
}

func NewClock(q *Queue, schedules []Schedule, log *slog.Logger) (*Clock, error) {
	if log == nil {
		log = slog.Default()
	}

	seen := make(map[string]bool, len(schedules))
	entries := make([]*clockEntry, 0, len(schedules))
	for _, s := range schedules {
		if s.Name == "" {
			return nil, fmt.Errorf("pgjobq: schedule for job %q has no name", s.Job)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("pgjobq: duplicate schedule %q", s.Name)
		}
		seen[s.Name] = true

		if s.Job == "" {
			return nil, fmt.Errorf("pgjobq: schedule %q has no job", s.Name)
		}
		sched, err := ParseSchedule(s.Cron)
		if err != nil {
			return nil, fmt.Errorf("pgjobq: schedule %q: %w", s.Name, err)
		}
		entries = append(entries, &clockEntry{Schedule: s, sched: sched})
	}

	return &Clock{queue: q, entries: entries, log: log, now: time.Now}, nil
}

// Run fires schedules until ctx is done.
func (c *Clock) Run(ctx context.Context) error {
	if len(c.entries) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	c.reset(c.now())
	c.log.Info("clock: started", slog.Int("schedules", len(c.entries)))

	for {
		wait := time.Until(c.nextFire())
		t := time.NewTimer(max(wait, 0))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		c.fire(ctx, c.now())
	}
}

func (c *Clock) reset(now time.Time) {
	for _, e := range c.entries {
		e.next = e.sched.Next(now)
	}
}

func (c *Clock) nextFire() time.Time {
	next := c.entries[0].next
	for _, e := range c.entries[1:] {
		if e.next.Before(next) {
			next = e.next
		}
	}
	return next
}

// fire enqueues every schedule due at now and returns how many were enqueued.
// A schedule whose enqueue fails is not retried until its next fire time.
func (c *Clock) fire(ctx context.Context, now time.Time) int {
	n := 0
	for _, e := range c.entries {
		if e.next.After(now) {
			continue
		}
		e.next = e.sched.Next(now)

		var opts *EnqueueOptions
		if e.Retries > 0 {
			retries := e.Retries
			opts = &EnqueueOptions{Retries: &retries}
		}

		id, err := c.queue.Enqueue(ctx, e.Job, e.Args, opts)
		if err != nil {
			c.log.Error("clock: enqueue failed",
				slog.String("schedule", e.Name),
				slog.String("job_name", e.Job),
				slog.String("error", err.Error()),
			)
			continue
		}
		n++
		c.log.Info("clock: fired",
			slog.String("schedule", e.Name),
			slog.String("job_name", e.Job),
			slog.Int64("job_id", id),
			slog.Time("next", e.next),
		)
	}
	return n
}
