package repositories

import (
	"context"
	"errors"

	"planner-board/backend/planner-service/models"
)

// ErrNotFound is returned when the addressed item does not exist.
var ErrNotFound = errors.New("item not found")

// TaskRepository is the task list of the remote list store.
type TaskRepository interface {
	ListTasks(ctx context.Context) ([]models.TaskRecord, error)
	GetTask(ctx context.Context, id int) (models.TaskRecord, error)
	GetTaskBucket(ctx context.Context, id int) (string, error)
	AddTask(ctx context.Context, fields models.TaskFields) (int, error)
	UpdateTask(ctx context.Context, id int, fields models.TaskFields) error
	DeleteTask(ctx context.Context, id int) error
}

// ActivityRepository is the append-only activity list.
type ActivityRepository interface {
	// AppendActivity stores rec and returns it with its generated ID.
	AppendActivity(ctx context.Context, rec models.ActivityRecord) (models.ActivityRecord, error)
	// ListActivity returns the records of one task, newest first.
	ListActivity(ctx context.Context, taskID int) ([]models.ActivityRecord, error)
}

// Directory resolves and searches site users.
type Directory interface {
	EnsureUser(ctx context.Context, email string) (models.DirectoryUser, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error)
}

type Mailer interface {
	SendEmail(ctx context.Context, email models.Email) error
}
