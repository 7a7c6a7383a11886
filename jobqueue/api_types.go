package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// JobView is the JSON shape of a job used by the CLI and the ops server.
type JobView struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	State model.State `json:"state"`
	// InFlight is set while a worker holds the job, including a final
	// attempt that already reads as dead.
	InFlight bool            `json:"in_flight,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	StartAfter time.Time `json:"start_after"`

	Attempts int `json:"attempts"`
	Retries  int `json:"retries"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

func NewJobView(j model.Job) JobView {
	return JobView{
		ID:          j.ID,
		Name:        j.Name,
		State:       j.State(),
		InFlight:    j.InFlight(),
		Args:        j.Args,
		CreatedAt:   j.CreatedAt,
		StartAfter:  j.StartAfter,
		Attempts:    j.Attempts,
		Retries:     j.Retries,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Error:       j.Error,
	}
}

func NewJobViews(jobs []model.Job) []JobView {
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobView(j))
	}
	return out
}

// StatsView is the JSON shape of store.Counts.
type StatsView struct {
	Name    string                `json:"name,omitempty"`
	Total   int64                 `json:"total"`
	ByState map[model.State]int64 `json:"by_state"`
	Delayed int64                 `json:"delayed"`
}

func NewStatsView(name string, c store.Counts) StatsView {
	return StatsView{Name: name, Total: c.Total, ByState: c.ByState, Delayed: c.Delayed}
}
