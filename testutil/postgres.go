// Package testutil starts throwaway Postgres databases for integration tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/theleeeo/pgjobq/migrations"
)

const (
	pgDB   = "pgjobq_test"
	pgUser = "pgjobq"
	pgPass = "pass"
)

type TestDB struct {
	Pool    *pgxpool.Pool
	ConnStr string
}

// NewTestDB starts a Postgres container, applies the migrations and returns a
// pool connected to it. Everything is torn down via t.Cleanup. Tests calling
// it are skipped under -short.
func NewTestDB(t testing.TB) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	ctx := context.Background()

	pgCtr, err := tcpostgres.Run(ctx,
		"postgres:17",
		tcpostgres.WithDatabase(pgDB),
		tcpostgres.WithUsername(pgUser),
		tcpostgres.WithPassword(pgPass),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgCtr); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	connStr, err := pgCtr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	if _, err := migrations.Up(connStr); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool, ConnStr: connStr}
}

// Reset empties the jobs table and restarts its id sequence.
func (db *TestDB) Reset(t testing.TB) {
	t.Helper()
	if _, err := db.Pool.Exec(context.Background(), `TRUNCATE TABLE jobs RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate jobs: %v", err)
	}
}
