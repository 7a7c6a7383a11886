// Package store persists job rows. It is the single source of truth for all
// scheduling state: a job's state is always derived from its row.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/theleeeo/pgjobq/model"
)

var (
	// ErrNotFound means no job row exists with the requested id.
	ErrNotFound = errors.New("pgjobq: job not found")

	// ErrClaimLost means a finalize found the row no longer held by the claim
	// it was given, usually because the stale sweep requeued it.
	ErrClaimLost = errors.New("pgjobq: claim lost")
)

// Store is the job record store.
//
// Claim must select and mark a job in a single atomic step: two concurrent
// callers can never both receive the same claim. The finalize methods
// (Complete, Retry, Bury) are fenced by the attempt number the claim returned
// and report ErrClaimLost if the row has moved on since.
type Store interface {
	Insert(ctx context.Context, j model.NewJob) (int64, error)

	// Claim marks the oldest claimable job as running and returns it.
	// It returns (nil, nil) when nothing is claimable. An empty names slice
	// matches every job.
	Claim(ctx context.Context, names []string) (*model.Job, error)

	Complete(ctx context.Context, id int64, attempt int) error
	// Retry returns a running job to pending, eligible again after delay.
	Retry(ctx context.Context, id int64, attempt int, errMsg string, delay time.Duration) error
	// Bury records the failure, exhausts the job's attempts and releases the
	// claim.
	Bury(ctx context.Context, id int64, attempt int, errMsg string) error

	Get(ctx context.Context, id int64) (model.Job, error)
	List(ctx context.Context, f Filter) ([]model.Job, error)
	Counts(ctx context.Context, name string) (Counts, error)

	// ReapStale releases claims older than olderThan. A job with attempts
	// left returns to pending; one abandoned on its final attempt stays dead
	// with the claim cleared. The consumed attempt is kept either way.
	ReapStale(ctx context.Context, olderThan time.Duration) (int64, error)
	// Prune deletes completed jobs that finished more than olderThan ago, in
	// at most maxBatches statements of batchSize rows.
	Prune(ctx context.Context, olderThan time.Duration, batchSize, maxBatches int) (int64, error)

	Ping(ctx context.Context) error
}

type Sort string

const (
	SortIDAsc         Sort = "id_asc"
	SortIDDesc        Sort = "id_desc"
	SortStartedDesc   Sort = "started_desc"
	SortCompletedDesc Sort = "completed_desc"
	SortStartAfterAsc Sort = "start_after_asc"
)

var sorts = []Sort{SortIDAsc, SortIDDesc, SortStartedDesc, SortCompletedDesc, SortStartAfterAsc}

// ParseSort validates a sort name. The empty string selects the default.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return SortIDDesc, nil
	}
	for _, so := range sorts {
		if string(so) == s {
			return so, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

const (
	defaultListLimit       = 50
	maxListLimit           = 500
	defaultPruneBatch      = 1000
	defaultPruneMaxBatches = 10
)

type Filter struct {
	State         model.State // empty matches every state
	Name          string
	ErrorContains string

	Limit  int
	Offset int

	IncludeArgs bool
	Sort        Sort
}

func (f *Filter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Sort == "" {
		f.Sort = SortIDDesc
	}
}

type Counts struct {
	Total   int64
	ByState map[model.State]int64
	// Delayed is the subset of pending jobs whose start_after is still in
	// the future.
	Delayed int64
}

const maxErrorLen = 2000

// TruncateError bounds a failure message before it is persisted.
func TruncateError(msg string) string {
	if len(msg) <= maxErrorLen {
		return msg
	}
	cut := maxErrorLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "…"
}
