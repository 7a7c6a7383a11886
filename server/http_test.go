package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/pgjobq/jobqueue"
	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

var errDown = errors.New("connection refused")

type downStore struct{ store.Store }

func (downStore) Ping(context.Context) error { return errDown }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type httpFixture struct {
	st    *store.MemoryStore
	queue *jobqueue.Queue
	srv   *httptest.Server
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	st := store.NewMemoryStore()
	q := jobqueue.NewQueue(st, metrics.New(reg))
	srv := httptest.NewServer(NewHTTPServer(q, reg, discardLogger()).Handler())
	t.Cleanup(srv.Close)
	return &httpFixture{st: st, queue: q, srv: srv}
}

func (f *httpFixture) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	f := newHTTPFixture(t)
	var body healthResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Nil(t, body.Leader)

	down := httptest.NewServer(NewHTTPServer(jobqueue.NewQueue(downStore{}, nil), nil, discardLogger()).Handler())
	defer down.Close()
	resp, err := http.Get(down.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

type fixedLeader bool

func (l fixedLeader) IsLeader() bool { return bool(l) }

func TestHealthzReportsLeadership(t *testing.T) {
	q := jobqueue.NewQueue(store.NewMemoryStore(), nil)
	for _, leading := range []bool{true, false} {
		srv := httptest.NewServer(NewHTTPServer(q, nil, discardLogger()).WithLeader(fixedLeader(leading)).Handler())
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)

		var body healthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		srv.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, body.Leader)
		assert.Equal(t, leading, *body.Leader)
	}
}

func TestEnqueueAndGet(t *testing.T) {
	f := newHTTPFixture(t)

	var created idResponse
	code := f.do(t, http.MethodPost, "/jobs", `{"name":"email","args":{"to":"a@b.c"},"retries":3}`, &created)
	require.Equal(t, http.StatusCreated, code)
	require.Positive(t, created.ID)

	var view jobqueue.JobView
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/jobs/1", "", &view))
	assert.Equal(t, created.ID, view.ID)
	assert.Equal(t, "email", view.Name)
	assert.Equal(t, model.StatePending, view.State)
	assert.Equal(t, 3, view.Retries)
	assert.JSONEq(t, `{"to":"a@b.c"}`, string(view.Args))
}

func TestEnqueueRejectsBadInput(t *testing.T) {
	f := newHTTPFixture(t)

	var e errorResponse
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/jobs", `{"args":{}}`, &e))
	assert.Contains(t, e.Error, "name")
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/jobs", `{"name":"x","args":[1]}`, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/jobs", `not json`, nil))
}

func TestGetJobErrors(t *testing.T) {
	f := newHTTPFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/jobs/42", "", nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/jobs/abc", "", nil))
}

func TestListJobs(t *testing.T) {
	f := newHTTPFixture(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "a"} {
		_, err := f.queue.Enqueue(ctx, name, map[string]any{"n": 1}, nil)
		require.NoError(t, err)
	}

	var views []jobqueue.JobView
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/jobs?name=a&sort=id_asc", "", &views))
	require.Len(t, views, 2)
	assert.Equal(t, int64(1), views[0].ID)
	assert.Equal(t, int64(3), views[1].ID)
	assert.JSONEq(t, `{}`, string(views[0].Args))

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/jobs?args=true&limit=1", "", &views))
	require.Len(t, views, 1)
	assert.Equal(t, int64(3), views[0].ID)
	assert.JSONEq(t, `{"n":1}`, string(views[0].Args))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/jobs?state=zombie", "", nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/jobs?sort=random", "", nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/jobs?limit=-1", "", nil))
}

func TestStatsAndRequeue(t *testing.T) {
	f := newHTTPFixture(t)
	ctx := context.Background()

	one := 1
	id, err := f.queue.Enqueue(ctx, "flaky", nil, &jobqueue.EnqueueOptions{Retries: &one})
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/jobs/1/requeue", "", nil))

	j, err := f.st.Claim(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, id, j.ID)
	require.NoError(t, f.st.Bury(ctx, j.ID, j.Attempts, "boom"))

	var stats jobqueue.StatsView
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/stats", "", &stats))
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ByState[model.StateDead])

	var created idResponse
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/jobs/1/requeue", "", &created))
	assert.Equal(t, int64(2), created.ID)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/stats?name=flaky", "", &stats))
	assert.Equal(t, "flaky", stats.Name)
	assert.Equal(t, int64(1), stats.ByState[model.StatePending])
	assert.Equal(t, int64(1), stats.ByState[model.StateDead])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newHTTPFixture(t)
	_, err := f.queue.Enqueue(context.Background(), "email", nil, nil)
	require.NoError(t, err)

	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `pgjobq_jobs_enqueued_total{name="email"} 1`)
}
