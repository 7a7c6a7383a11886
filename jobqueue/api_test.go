package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// kill claims the job and buries it as a worker would after its last attempt.
func kill(t *testing.T, st store.Store, msg string) model.Job {
	t.Helper()
	j, err := st.Claim(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, j)
	require.NoError(t, st.Bury(context.Background(), j.ID, j.Attempts, msg))
	return *j
}

func TestGetNotFound(t *testing.T) {
	q := NewQueue(store.NewMemoryStore(), nil)
	_, err := q.Get(context.Background(), 99)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, errors.Is(err, ErrStoreUnavailable))
}

func TestDeadAndRequeue(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	q := NewQueue(st, nil)
	retries := 4

	id, err := q.Enqueue(ctx, "email", map[string]int{"n": 1}, &EnqueueOptions{Retries: &retries})
	require.NoError(t, err)
	kill(t, st, "smtp down")

	dead, err := q.Dead(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, id, dead[0].ID)
	assert.Equal(t, "smtp down", dead[0].LastError())

	newID, err := q.Requeue(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)

	fresh, err := q.Get(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, model.StatePending, fresh.State())
	assert.Equal(t, "email", fresh.Name)
	assert.JSONEq(t, `{"n":1}`, string(fresh.Args))
	assert.Equal(t, 4, fresh.Retries)

	old, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StateDead, old.State())

	_, err = q.Requeue(ctx, newID)
	require.ErrorIs(t, err, ErrNotDead)
}

func TestRequeueRefusesFinalAttemptInFlight(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	q := NewQueue(st, nil)
	retries := 1

	id, err := q.Enqueue(ctx, "email", nil, &EnqueueOptions{Retries: &retries})
	require.NoError(t, err)
	claimed, err := st.Claim(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, id, claimed.ID)

	// The final attempt is running, so the row already reads as dead.
	j, err := q.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.StateDead, j.State())

	_, err = q.Requeue(ctx, id)
	require.ErrorIs(t, err, ErrNotDead)
	assert.Contains(t, err.Error(), "final attempt")

	c, err := st.Counts(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.Total, "nothing may be enqueued")

	require.NoError(t, st.Bury(ctx, id, claimed.Attempts, "smtp down"))
	newID, err := q.Requeue(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	q := NewQueue(st, nil)

	now := time.Now()
	st.SetClock(func() time.Time { return now })

	_, err := q.Enqueue(ctx, "a", nil, nil)
	require.NoError(t, err)
	j, err := st.Claim(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, st.Complete(ctx, j.ID, j.Attempts))

	_, err = q.Enqueue(ctx, "b", nil, nil)
	require.NoError(t, err)
	kill(t, st, "boom")

	now = now.Add(48 * time.Hour)

	n, err := q.Prune(ctx, 24*time.Hour, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	c, err := q.Counts(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.Total)
	assert.EqualValues(t, 1, c.ByState[model.StateDead])

	_, err = q.Prune(ctx, -time.Hour, 0, 0)
	require.Error(t, err)
}

func TestJobView(t *testing.T) {
	msg := "boom"
	v := NewJobView(model.Job{ID: 1, Name: "a", Attempts: 2, Retries: 2, Error: &msg})
	assert.Equal(t, model.StateDead, v.State)
	assert.Equal(t, &msg, v.Error)
	assert.False(t, v.InFlight)

	now := time.Now()
	v = NewJobView(model.Job{ID: 2, Name: "a", Attempts: 2, Retries: 2, StartedAt: &now})
	assert.Equal(t, model.StateDead, v.State)
	assert.True(t, v.InFlight)
}
