package models

// Task is the wire representation of a persisted task.
type Task struct {
	ID              int64   `json:"id"`
	TaskName        string  `json:"task_name"`
	TaskDescription *string `json:"task_description"`
}

// TaskCreate carries the fields a client may supply when creating a task.
// The id is always system-generated. TaskName is a pointer so that an
// absent field fails the required rule while an empty string passes; the
// name has no length constraint.
type TaskCreate struct {
	TaskName        *string `json:"task_name" binding:"required"`
	TaskDescription *string `json:"task_description"`
}
