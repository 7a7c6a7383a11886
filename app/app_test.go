package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/pgjobq/jobqueue"
	"github.com/theleeeo/pgjobq/model"
)

func newApp(t *testing.T, logs *bytes.Buffer) (*App, *jobqueue.Registry) {
	t.Helper()
	a := New(Config{Logger: slog.New(slog.NewJSONHandler(logs, nil))})
	reg := jobqueue.NewRegistry()
	require.NoError(t, a.Register(reg))
	return a, reg
}

func run(t *testing.T, reg *jobqueue.Registry, name string, args any) error {
	t.Helper()
	h, ok := reg.Lookup(name)
	require.True(t, ok, "handler %q not registered", name)
	b, err := json.Marshal(args)
	require.NoError(t, err)
	return h(context.Background(), model.Job{ID: 1, Name: name, Args: b})
}

func TestRegister(t *testing.T) {
	_, reg := newApp(t, &bytes.Buffer{})
	assert.Equal(t, []string{JobLog, JobWebhook}, reg.Names())

	err := New(Config{}).Register(reg)
	assert.ErrorIs(t, err, jobqueue.ErrDuplicateHandler)
}

func TestLogHandler(t *testing.T) {
	logs := &bytes.Buffer{}
	_, reg := newApp(t, logs)

	require.NoError(t, run(t, reg, JobLog, LogArgs{Message: "hello", Level: "warn", Fields: map[string]any{"user": "ann"}}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "ann", line["user"])
}

func TestLogHandlerRequiresMessage(t *testing.T) {
	_, reg := newApp(t, &bytes.Buffer{})

	err := run(t, reg, JobLog, LogArgs{})
	var perm jobqueue.PermanentError
	assert.ErrorAs(t, err, &perm)
	var inv *InvalidArgumentError
	assert.ErrorAs(t, err, &inv)
}

func TestWebhookDelivers(t *testing.T) {
	var (
		gotMethod string
		gotHeader string
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Token")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, reg := newApp(t, &bytes.Buffer{})
	err := run(t, reg, JobWebhook, WebhookArgs{
		URL:     srv.URL,
		Method:  http.MethodPut,
		Headers: map[string]string{"X-Token": "secret"},
		Body:    json.RawMessage(`{"order":7}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "secret", gotHeader)
	assert.JSONEq(t, `{"order":7}`, string(gotBody))
}

func TestWebhookStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		permanent  bool
		after      time.Duration
	}{
		{name: "server error retries", status: http.StatusBadGateway},
		{name: "rate limited honors retry-after", status: http.StatusTooManyRequests, retryAfter: "30", after: 30 * time.Second},
		{name: "client error is permanent", status: http.StatusNotFound, permanent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			_, reg := newApp(t, &bytes.Buffer{})
			err := run(t, reg, JobWebhook, WebhookArgs{URL: srv.URL})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "nope")

			var perm jobqueue.PermanentError
			assert.Equal(t, tt.permanent, errors.As(err, &perm))

			var re jobqueue.RetryError
			if tt.after > 0 {
				require.ErrorAs(t, err, &re)
				assert.Equal(t, tt.after, re.After)
			} else {
				assert.False(t, errors.As(err, &re))
			}
		})
	}
}

func TestWebhookInvalidArgs(t *testing.T) {
	_, reg := newApp(t, &bytes.Buffer{})

	for _, args := range []WebhookArgs{
		{},
		{URL: "ftp://example.com"},
		{URL: "/relative"},
		{URL: "http://example.com", Method: http.MethodDelete},
	} {
		err := run(t, reg, JobWebhook, args)
		var inv *InvalidArgumentError
		assert.ErrorAs(t, err, &inv, "args %+v", args)
		var perm jobqueue.PermanentError
		assert.ErrorAs(t, err, &perm)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	d, ok := retryAfter("12", now)
	assert.True(t, ok)
	assert.Equal(t, 12*time.Second, d)

	d, ok = retryAfter(now.Add(time.Minute).Format(http.TimeFormat), now)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, d)

	d, ok = retryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now)
	assert.True(t, ok)
	assert.Zero(t, d)

	for _, v := range []string{"", "-1", "soon"} {
		_, ok := retryAfter(v, now)
		assert.False(t, ok, v)
	}
}
