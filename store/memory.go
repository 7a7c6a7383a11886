package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/theleeeo/pgjobq/model"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store with the same semantics as
// PostgresStore. It backs unit tests and single-process embedding, and does
// not survive a restart.
type MemoryStore struct {
	mu sync.RWMutex

	nextID int64
	jobs   map[int64]*model.Job
	// locks maps a held lock name to its holder's token.
	locks   map[string]uint64
	lockSeq uint64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:  map[int64]*model.Job{},
		locks: map[string]uint64{},
		now:   time.Now,
	}
}

// SetClock replaces the store's notion of now.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Insert(_ context.Context, j model.NewJob) (int64, error) {
	if j.Name == "" {
		return 0, fmt.Errorf("insert job: empty name")
	}
	if j.Retries < 1 {
		return 0, fmt.Errorf("insert job: retries must be positive, got %d", j.Retries)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	startAfter := j.StartAfter
	if startAfter.IsZero() {
		startAfter = now
	}
	args := j.Args
	if len(args) == 0 {
		args = []byte(`{}`)
	}

	s.nextID++
	s.jobs[s.nextID] = &model.Job{
		ID:         s.nextID,
		Name:       j.Name,
		Args:       slices.Clone(args),
		CreatedAt:  now,
		StartAfter: startAfter,
		Retries:    j.Retries,
	}
	return s.nextID, nil
}

func (s *MemoryStore) Claim(_ context.Context, names []string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var best *model.Job
	for _, j := range s.jobs {
		if !j.Claimable(now) {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, j.Name) {
			continue
		}
		if best == nil || claimsBefore(j, best) {
			best = j
		}
	}
	if best == nil {
		return nil, nil
	}

	best.StartedAt = &now
	best.Attempts++
	out := cloneJob(best)
	return &out, nil
}

func claimsBefore(a, b *model.Job) bool {
	if !a.StartAfter.Equal(b.StartAfter) {
		return a.StartAfter.Before(b.StartAfter)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// held returns the row if it is still held by the claim for attempt.
func (s *MemoryStore) held(op string, id int64, attempt int) (*model.Job, error) {
	j, ok := s.jobs[id]
	if !ok || j.Attempts != attempt || j.StartedAt == nil || j.CompletedAt != nil {
		return nil, fmt.Errorf("%s job %d (attempt %d): %w", op, id, attempt, ErrClaimLost)
	}
	return j, nil
}

func (s *MemoryStore) Complete(_ context.Context, id int64, attempt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.held("complete", id, attempt)
	if err != nil {
		return err
	}
	now := s.now()
	j.CompletedAt = &now
	return nil
}

func (s *MemoryStore) Retry(_ context.Context, id int64, attempt int, errMsg string, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.held("retry", id, attempt)
	if err != nil {
		return err
	}
	if j.Attempts >= j.Retries {
		return fmt.Errorf("retry job %d (attempt %d): %w", id, attempt, ErrClaimLost)
	}

	if delay < 0 {
		delay = 0
	}
	msg := TruncateError(errMsg)
	j.StartedAt = nil
	j.Error = &msg
	j.StartAfter = s.now().Add(delay.Truncate(time.Microsecond))
	return nil
}

func (s *MemoryStore) Bury(_ context.Context, id int64, attempt int, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.held("bury", id, attempt)
	if err != nil {
		return err
	}
	msg := TruncateError(errMsg)
	j.Error = &msg
	j.Attempts = max(j.Attempts, j.Retries)
	j.StartedAt = nil
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return cloneJob(j), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]model.Job, error) {
	f.normalize()
	if f.State != "" {
		if _, ok := statePredicates[f.State]; !ok {
			return nil, fmt.Errorf("pgjobq: unknown state %q", f.State)
		}
	}
	less, err := memorySort(f.Sort)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(f.ErrorContains))
	var matched []model.Job
	for _, j := range s.jobs {
		if f.State != "" && j.State() != f.State {
			continue
		}
		if f.Name != "" && j.Name != f.Name {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(j.LastError()), needle) {
			continue
		}
		c := cloneJob(j)
		if !f.IncludeArgs {
			c.Args = []byte(`{}`)
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(a, b int) bool { return less(matched[a], matched[b]) })

	if f.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[f.Offset:]
	if len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func memorySort(s Sort) (func(a, b model.Job) bool, error) {
	// nil timestamps sort last, as NULLS LAST does.
	descNullsLast := func(x, y *time.Time, a, b model.Job) bool {
		switch {
		case x == nil && y == nil:
			return a.ID > b.ID
		case x == nil:
			return false
		case y == nil:
			return true
		case !x.Equal(*y):
			return x.After(*y)
		default:
			return a.ID > b.ID
		}
	}

	switch s {
	case SortIDAsc:
		return func(a, b model.Job) bool { return a.ID < b.ID }, nil
	case SortIDDesc:
		return func(a, b model.Job) bool { return a.ID > b.ID }, nil
	case SortStartedDesc:
		return func(a, b model.Job) bool { return descNullsLast(a.StartedAt, b.StartedAt, a, b) }, nil
	case SortCompletedDesc:
		return func(a, b model.Job) bool { return descNullsLast(a.CompletedAt, b.CompletedAt, a, b) }, nil
	case SortStartAfterAsc:
		return func(a, b model.Job) bool { return claimsBefore(&a, &b) }, nil
	default:
		return nil, fmt.Errorf("pgjobq: unknown sort %q", s)
	}
}

func (s *MemoryStore) Counts(_ context.Context, name string) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := Counts{ByState: make(map[model.State]int64, len(model.States))}
	for _, st := range model.States {
		out.ByState[st] = 0
	}
	for _, j := range s.jobs {
		if name != "" && j.Name != name {
			continue
		}
		out.Total++
		st := j.State()
		out.ByState[st]++
		if st == model.StatePending && j.StartAfter.After(now) {
			out.Delayed++
		}
	}
	return out, nil
}

func (s *MemoryStore) ReapStale(_ context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("reap stale: threshold must be positive, got %s", olderThan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-olderThan)
	requeued := fmt.Sprintf("requeued: claim not finalized within %s", olderThan)
	abandoned := fmt.Sprintf("abandoned: claim not finalized within %s", olderThan)

	var n int64
	for _, j := range s.jobs {
		if !j.InFlight() || !j.StartedAt.Before(cutoff) {
			continue
		}
		m := abandoned
		if j.Attempts < j.Retries {
			m = requeued
			j.StartAfter = now
		}
		j.StartedAt = nil
		j.Error = &m
		n++
	}
	return n, nil
}

func (s *MemoryStore) Prune(_ context.Context, olderThan time.Duration, batchSize, maxBatches int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultPruneBatch
	}
	if maxBatches <= 0 {
		maxBatches = defaultPruneMaxBatches
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	var victims []*model.Job
	for _, j := range s.jobs {
		if j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			victims = append(victims, j)
		}
	}
	sort.Slice(victims, func(a, b int) bool { return victims[a].CompletedAt.Before(*victims[b].CompletedAt) })

	limit := batchSize * maxBatches
	if len(victims) > limit {
		victims = victims[:limit]
	}
	for _, j := range victims {
		delete(s.jobs, j.ID)
	}
	return int64(len(victims)), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func cloneJob(j *model.Job) model.Job {
	c := *j
	c.Args = slices.Clone(j.Args)
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	return c
}
