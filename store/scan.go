package store

import (
	"github.com/jackc/pgx/v5"

	"github.com/theleeeo/pgjobq/model"
)

// scanJob reads a row selected with jobColumns.
func scanJob(row pgx.Row) (model.Job, error) {
	var j model.Job

	err := row.Scan(
		&j.ID,
		&j.Name,
		&j.Args,
		&j.CreatedAt,
		&j.StartAfter,
		&j.StartedAt,
		&j.Attempts,
		&j.Retries,
		&j.CompletedAt,
		&j.Error,
	)
	if err != nil {
		return model.Job{}, err
	}
	return j, nil
}
