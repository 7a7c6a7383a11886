package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestJobState(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		job  Job
		want State
	}{
		{"fresh", Job{Retries: 3}, StatePending},
		{"claimed", Job{Retries: 3, Attempts: 1, StartedAt: ptr(now)}, StateRunning},
		{"returned for retry", Job{Retries: 3, Attempts: 2}, StatePending},
		{"completed", Job{Retries: 3, Attempts: 1, StartedAt: ptr(now), CompletedAt: ptr(now)}, StateCompleted},
		{"completed on last attempt", Job{Retries: 3, Attempts: 3, StartedAt: ptr(now), CompletedAt: ptr(now)}, StateCompleted},
		{"exhausted", Job{Retries: 3, Attempts: 3, StartedAt: ptr(now), Error: ptr("boom")}, StateDead},
		{"exhausted without start", Job{Retries: 1, Attempts: 1}, StateDead},
		{"zero retries", Job{Retries: 0}, StateDead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.State())
		})
	}
}

func TestJobStateExhaustive(t *testing.T) {
	now := time.Now()
	// Walk every combination of the inputs the derivation looks at.
	for _, started := range []*time.Time{nil, ptr(now)} {
		for _, completed := range []*time.Time{nil, ptr(now)} {
			for attempts := 0; attempts <= 4; attempts++ {
				j := Job{Retries: 3, Attempts: attempts, StartedAt: started, CompletedAt: completed}

				matches := 0
				if j.CompletedAt == nil && j.StartedAt == nil && j.Attempts < j.Retries {
					matches++ // pending
				}
				if j.CompletedAt == nil && j.StartedAt != nil && j.Attempts < j.Retries {
					matches++ // running
				}
				if j.CompletedAt != nil {
					matches++ // completed
				}
				if j.CompletedAt == nil && j.Attempts >= j.Retries {
					matches++ // dead
				}
				require.Equal(t, 1, matches, "job %+v", j)
				require.Contains(t, States, j.State())
			}
		}
	}
}

func TestJobClaimable(t *testing.T) {
	now := time.Now()

	assert.True(t, Job{Retries: 1, StartAfter: now}.Claimable(now))
	assert.True(t, Job{Retries: 1, StartAfter: now.Add(-time.Minute)}.Claimable(now))
	assert.False(t, Job{Retries: 1, StartAfter: now.Add(time.Hour)}.Claimable(now))
	assert.False(t, Job{Retries: 1, StartedAt: ptr(now)}.Claimable(now))
	assert.False(t, Job{Retries: 1, Attempts: 1}.Claimable(now))
}

func TestJobInFlight(t *testing.T) {
	now := time.Now()

	assert.False(t, Job{Retries: 3}.InFlight())
	assert.True(t, Job{Retries: 3, Attempts: 1, StartedAt: ptr(now)}.InFlight())
	assert.False(t, Job{Retries: 3, Attempts: 1, StartedAt: ptr(now), CompletedAt: ptr(now)}.InFlight())

	final := Job{Retries: 1, Attempts: 1, StartedAt: ptr(now)}
	assert.Equal(t, StateDead, final.State())
	assert.True(t, final.InFlight())
}

func TestDecodeArgs(t *testing.T) {
	j := Job{ID: 7, Name: "send_email", Args: []byte(`{"to":"a@b.com"}`)}

	var args struct {
		To string `json:"to"`
	}
	require.NoError(t, j.DecodeArgs(&args))
	assert.Equal(t, "a@b.com", args.To)

	var wrong struct {
		To int `json:"to"`
	}
	err := j.DecodeArgs(&wrong)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send_email")
}

func TestParseState(t *testing.T) {
	s, err := ParseState("dead")
	require.NoError(t, err)
	assert.Equal(t, StateDead, s)

	_, err = ParseState("zombie")
	require.Error(t, err)
}
