package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestNormalizeTask_Defaults(t *testing.T) {
	is := is.New(t)

	task := NormalizeTask(TaskRecord{
		ID:        7,
		Title:     "Draft roadmap",
		Bucket:    "Somewhere else",
		Priority:  "",
		Checklist: "{broken",
	})
	is.Equal(task.ID, 7)
	is.Equal(task.Status, StatusNew)
	is.Equal(task.Bucket, BucketBacklog)
	is.Equal(task.Priority, PriorityMedium)
	is.Equal(len(task.Checklist), 0)
	is.Equal(task.AssignedTo, "")
}

func TestNormalizeTask_KeepsKnownValues(t *testing.T) {
	is := is.New(t)

	task := NormalizeTask(TaskRecord{
		Title:         "Ship",
		Status:        "Completed",
		Bucket:        "In Progress",
		Priority:      "High",
		Checklist:     `[{"text":"a","done":true}]`,
		AssigneeName:  "Ana",
		AssigneeEmail: "ana@example.com",
	})
	is.Equal(task.Status, StatusCompleted)
	is.Equal(task.Bucket, BucketInProgress)
	is.Equal(task.Priority, PriorityHigh)
	is.Equal(task.Checklist, []ChecklistItem{{Text: "a", Done: true}})
	is.Equal(task.AssignedTo, "ana@example.com")
	is.Equal(task.AssigneeName, "Ana")
}

func TestTaskDraft_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		is := is.New(t)
		d := TaskDraft{Title: "Draft roadmap"}
		d.ApplyDefaults()
		is.NoErr(d.Validate())
		is.Equal(d.Bucket, BucketBacklog)
		is.Equal(d.Priority, PriorityMedium)
		is.Equal(d.Status, StatusNew)
		is.True(d.Checklist != nil)
	})

	t.Run("empty title", func(t *testing.T) {
		is := is.New(t)
		d := TaskDraft{Title: "   "}
		d.ApplyDefaults()
		is.True(errors.Is(d.Validate(), ErrEmptyTitle))
	})

	t.Run("long title", func(t *testing.T) {
		is := is.New(t)
		d := TaskDraft{Title: strings.Repeat("x", MaxTitleLength+1)}
		d.ApplyDefaults()
		is.True(errors.Is(d.Validate(), ErrTitleTooLong))
	})

	t.Run("unknown bucket", func(t *testing.T) {
		is := is.New(t)
		d := TaskDraft{Title: "x", Bucket: "Icebox"}
		d.ApplyDefaults()
		is.True(errors.Is(d.Validate(), ErrInvalidBucket))
	})

	t.Run("unknown priority", func(t *testing.T) {
		is := is.New(t)
		d := TaskDraft{Title: "x", Priority: "Urgent"}
		d.ApplyDefaults()
		is.True(errors.Is(d.Validate(), ErrInvalidPriority))
	})
}

func TestTaskUpdate_Validate(t *testing.T) {
	is := is.New(t)

	empty := ""
	is.True(errors.Is(TaskUpdate{Title: &empty}.Validate(), ErrEmptyTitle))

	status := TaskStatus("Archived")
	is.True(errors.Is(TaskUpdate{Status: &status}.Validate(), ErrInvalidStatus))

	is.NoErr(TaskUpdate{AssignedTo: "nobody"}.Validate())
}

func TestParseBucket(t *testing.T) {
	is := is.New(t)

	b, err := ParseBucket("in progress")
	is.NoErr(err)
	is.Equal(b, BucketInProgress)

	_, err = ParseBucket("later")
	is.True(errors.Is(err, ErrInvalidBucket))
}

func TestActivityTitles(t *testing.T) {
	is := is.New(t)
	is.Equal(ActionChecklist.Title(), "Checklist Updated")
	is.Equal(ActionMove.Title(), "Task Moved")
	is.Equal(ActionDelete.Title(), "Task Deleted")
}
