package sqlite

import (
	"database/sql"

	"tasksvc/internal/models"
)

// taskRow mirrors one row of the tasks table. It is kept separate from the
// wire-level models.Task so the JSON contract and the schema can evolve
// independently.
type taskRow struct {
	ID              int64
	TaskName        string
	TaskDescription sql.NullString
}

func (r taskRow) toModel() models.Task {
	t := models.Task{
		ID:       r.ID,
		TaskName: r.TaskName,
	}
	if r.TaskDescription.Valid {
		desc := r.TaskDescription.String
		t.TaskDescription = &desc
	}
	return t
}

func nullableDescription(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
