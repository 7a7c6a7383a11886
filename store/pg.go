package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theleeeo/pgjobq/model"
)

var _ Store = (*PostgresStore)(nil)

// Derived-state predicates. These must stay in sync with model.Job.State and
// with the partial indexes in the migrations.
const (
	pendingPredicate   = `completed_at IS NULL AND started_at IS NULL AND attempts < retries`
	runningPredicate   = `completed_at IS NULL AND started_at IS NOT NULL AND attempts < retries`
	completedPredicate = `completed_at IS NOT NULL`
	deadPredicate      = `completed_at IS NULL AND attempts >= retries`

	// heldPredicate matches a row still held by the claim that produced
	// attempt $2.
	heldPredicate = `id = $1 AND attempts = $2 AND started_at IS NOT NULL AND completed_at IS NULL`
)

var statePredicates = map[model.State]string{
	model.StatePending:   pendingPredicate,
	model.StateRunning:   runningPredicate,
	model.StateCompleted: completedPredicate,
	model.StateDead:      deadPredicate,
}

const jobColumns = `id, name, args, created_at, start_after, started_at, attempts, retries, completed_at, error`

type executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool exposes the underlying pool, e.g. for advisory locks.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PostgresStore) Insert(ctx context.Context, j model.NewJob) (int64, error) {
	// A zero StartAfter defers to the database clock.
	var startAfter *time.Time
	if !j.StartAfter.IsZero() {
		startAfter = &j.StartAfter
	}

	args := j.Args
	if len(args) == 0 {
		args = []byte(`{}`)
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO jobs (name, args, start_after, retries)
		VALUES ($1, $2::jsonb, COALESCE($3::timestamptz, now()), $4)
		RETURNING id
	`, j.Name, args, startAfter, j.Retries).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// Claim finds the oldest pending row and marks it running in one statement.
// The row lock taken by the subquery is held until the UPDATE commits, and
// SKIP LOCKED makes concurrent claimers move on to the next row instead of
// waiting on (and then re-checking) a row someone else is taking.
func (s *PostgresStore) Claim(ctx context.Context, names []string) (*model.Job, error) {
	var nameFilter []string
	if len(names) > 0 {
		nameFilter = names
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE jobs
		SET started_at = now(),
		    attempts = attempts + 1
		WHERE id = (
			SELECT id
			FROM jobs
			WHERE `+pendingPredicate+`
			  AND start_after <= now()
			  AND ($1::text[] IS NULL OR name = ANY($1::text[]))
			ORDER BY start_after, created_at, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns,
		nameFilter,
	)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) Complete(ctx context.Context, id int64, attempt int) error {
	return finalize(ctx, s.pool, "complete", `
		UPDATE jobs
		SET completed_at = now()
		WHERE `+heldPredicate,
		id, attempt)
}

func (s *PostgresStore) Retry(ctx context.Context, id int64, attempt int, errMsg string, delay time.Duration) error {
	return finalize(ctx, s.pool, "retry", `
		UPDATE jobs
		SET started_at = NULL,
		    error = $3,
		    start_after = now() + ($4::bigint * interval '1 microsecond')
		WHERE `+heldPredicate+` AND attempts < retries`,
		id, attempt, TruncateError(errMsg), micros(delay))
}

func (s *PostgresStore) Bury(ctx context.Context, id int64, attempt int, errMsg string) error {
	return finalize(ctx, s.pool, "bury", `
		UPDATE jobs
		SET error = $3,
		    attempts = GREATEST(attempts, retries),
		    started_at = NULL
		WHERE `+heldPredicate,
		id, attempt, TruncateError(errMsg))
}

func finalize(ctx context.Context, ex executor, op string, sql string, args ...any) error {
	ct, err := ex.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s job %v: %w", op, args[0], err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s job %v (attempt %v): %w", op, args[0], args[1], ErrClaimLost)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (model.Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return model.Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return j, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]model.Job, error) {
	f.normalize()

	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}

	orderBy, err := sortClause(f.Sort)
	if err != nil {
		return nil, err
	}

	cols := jobColumns
	if !f.IncludeArgs {
		cols = strings.Replace(cols, "args,", "'{}'::jsonb AS args,", 1)
	}

	args = append(args, f.Limit, f.Offset)
	sql := `SELECT ` + cols + ` FROM jobs ` + where + ` ` + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) Counts(ctx context.Context, name string) (Counts, error) {
	out := Counts{ByState: make(map[model.State]int64, len(model.States))}
	var pending, running, completed, dead int64

	err := s.pool.QueryRow(ctx, `
		SELECT
		  count(*),
		  count(*) FILTER (WHERE `+pendingPredicate+`),
		  count(*) FILTER (WHERE `+pendingPredicate+` AND start_after > now()),
		  count(*) FILTER (WHERE `+runningPredicate+`),
		  count(*) FILTER (WHERE `+completedPredicate+`),
		  count(*) FILTER (WHERE `+deadPredicate+`)
		FROM jobs
		WHERE ($1 = '' OR name = $1)
	`, name).Scan(&out.Total, &pending, &out.Delayed, &running, &completed, &dead)
	if err != nil {
		return Counts{}, fmt.Errorf("count jobs: %w", err)
	}

	out.ByState[model.StatePending] = pending
	out.ByState[model.StateRunning] = running
	out.ByState[model.StateCompleted] = completed
	out.ByState[model.StateDead] = dead
	return out, nil
}

func (s *PostgresStore) ReapStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("reap stale: threshold must be positive, got %s", olderThan)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET started_at = NULL,
		    start_after = CASE WHEN attempts < retries THEN now() ELSE start_after END,
		    error = CASE WHEN attempts < retries THEN $2 ELSE $3 END
		WHERE completed_at IS NULL AND started_at IS NOT NULL
		  AND started_at < now() - ($1::bigint * interval '1 microsecond')
	`, micros(olderThan),
		fmt.Sprintf("requeued: claim not finalized within %s", olderThan),
		fmt.Sprintf("abandoned: claim not finalized within %s", olderThan))
	if err != nil {
		return 0, fmt.Errorf("reap stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Prune(ctx context.Context, olderThan time.Duration, batchSize, maxBatches int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultPruneBatch
	}
	if maxBatches <= 0 {
		maxBatches = defaultPruneMaxBatches
	}

	var total int64
	for range maxBatches {
		tag, err := s.pool.Exec(ctx, `
			DELETE FROM jobs
			WHERE id IN (
			  SELECT id
			  FROM jobs
			  WHERE completed_at IS NOT NULL
			    AND completed_at < now() - ($1::bigint * interval '1 microsecond')
			  ORDER BY completed_at
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED
			)
		`, micros(olderThan), batchSize)
		if err != nil {
			return total, fmt.Errorf("prune jobs: %w", err)
		}

		total += tag.RowsAffected()
		if tag.RowsAffected() < int64(batchSize) {
			return total, nil
		}
	}
	return total, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- helpers ---

func buildWhere(f Filter) (string, []any, error) {
	where := "WHERE 1=1"
	args := []any{}

	if f.State != "" {
		pred, ok := statePredicates[f.State]
		if !ok {
			return "", nil, fmt.Errorf("pgjobq: unknown state %q", f.State)
		}
		where += " AND " + pred
	}

	if f.Name != "" {
		args = append(args, f.Name)
		where += fmt.Sprintf(" AND name = $%d", len(args))
	}

	if f.ErrorContains != "" {
		// Plain substring match; LIKE would treat % and _ in the needle as
		// wildcards.
		args = append(args, strings.TrimSpace(f.ErrorContains))
		where += fmt.Sprintf(" AND strpos(lower(COALESCE(error,'')), lower($%d)) > 0", len(args))
	}

	return where, args, nil
}

func sortClause(s Sort) (string, error) {
	switch s {
	case SortIDAsc:
		return "ORDER BY id ASC", nil
	case SortIDDesc:
		return "ORDER BY id DESC", nil
	case SortStartedDesc:
		return "ORDER BY started_at DESC NULLS LAST, id DESC", nil
	case SortCompletedDesc:
		return "ORDER BY completed_at DESC NULLS LAST, id DESC", nil
	case SortStartAfterAsc:
		return "ORDER BY start_after ASC, created_at ASC, id ASC", nil
	default:
		return "", fmt.Errorf("pgjobq: unknown sort %q", s)
	}
}

func micros(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / time.Microsecond)
}
