// Package model holds the persisted job row and the state derived from it.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// State is the derived lifecycle state of a job. It is never stored; it is
// computed from the nullable timestamps and the attempt counters.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateDead      State = "dead"
)

// States lists every state in lifecycle order.
var States = []State{StatePending, StateRunning, StateCompleted, StateDead}

func ParseState(s string) (State, error) {
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown job state %q", s)
}

type Job struct {
	ID   int64
	Name string
	Args json.RawMessage

	CreatedAt  time.Time
	StartAfter time.Time
	StartedAt  *time.Time

	Attempts int
	Retries  int

	CompletedAt *time.Time
	Error       *string
}

// State derives the job's state. Completion wins over everything else, and an
// exhausted attempt budget wins over started_at, so exactly one state holds.
//
// A row that is being worked on its final attempt has attempts == retries and
// therefore reports StateDead until it is finalized.
func (j Job) State() State {
	switch {
	case j.CompletedAt != nil:
		return StateCompleted
	case j.Attempts >= j.Retries:
		return StateDead
	case j.StartedAt != nil:
		return StateRunning
	default:
		return StatePending
	}
}

// InFlight reports whether a worker holds a claim on the job. A job on its
// final attempt is in flight while it already reads as dead.
func (j Job) InFlight() bool {
	return j.StartedAt != nil && j.CompletedAt == nil
}

// Claimable reports whether a worker may claim the job at now.
func (j Job) Claimable(now time.Time) bool {
	return j.State() == StatePending && !j.StartAfter.After(now)
}

// DecodeArgs unmarshals the job's args document into v.
func (j Job) DecodeArgs(v any) error {
	if len(j.Args) == 0 {
		return nil
	}
	if err := json.Unmarshal(j.Args, v); err != nil {
		return fmt.Errorf("decode args for job %d (%s): %w", j.ID, j.Name, err)
	}
	return nil
}

// LastError returns the recorded failure message, or "" if none.
func (j Job) LastError() string {
	if j.Error == nil {
		return ""
	}
	return *j.Error
}

// NewJob is the insert shape for a job row.
type NewJob struct {
	Name       string
	Args       json.RawMessage
	StartAfter time.Time
	Retries    int
}
