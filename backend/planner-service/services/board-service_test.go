package services

import (
	"context"
	"testing"
	"time"

	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"

	"github.com/matryer/is"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestGroupByBucketKeepsBoardOrder(t *testing.T) {
	is := is.New(t)
	columns := GroupByBucket([]models.Task{
		{ID: 1, Bucket: models.BucketDone},
		{ID: 2, Bucket: models.BucketBacklog},
		{ID: 3, Bucket: models.BucketDone},
		{ID: 4, Bucket: "Someday"},
	})

	is.Equal(len(columns), 4)
	is.Equal(columns[0].Bucket, models.BucketBacklog)
	is.Equal(columns[1].Bucket, models.BucketToDo)
	is.Equal(columns[2].Bucket, models.BucketInProgress)
	is.Equal(columns[3].Bucket, models.BucketDone)
	is.Equal(len(columns[0].Tasks), 2)
	is.Equal(columns[0].Tasks[1].ID, 4)
	is.Equal(columns[1].Tasks, []models.Task{})
	is.Equal(columns[3].Tasks[0].ID, 1)
	is.Equal(columns[3].Tasks[1].ID, 3)
}

func TestFilterDueHalfOpenRange(t *testing.T) {
	is := is.New(t)
	day := func(d int) *time.Time {
		t := time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	tasks := []models.Task{
		{ID: 5, DueDate: day(3)},
		{ID: 1, DueDate: day(10)},
		{ID: 2},
		{ID: 3, DueDate: day(1)},
		{ID: 4, DueDate: day(3)},
	}

	due := FilterDue(tasks, *day(1), *day(10))
	is.Equal(len(due), 3)
	is.Equal(due[0].ID, 3)
	is.Equal(due[1].ID, 4)
	is.Equal(due[2].ID, 5)
}

func TestBoardServiceReadsStore(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	store := repositories.NewMemoryStore()
	tasks := NewTaskService(store, store, logger)
	board := NewBoardService(tasks)

	due := time.Date(2024, 4, 2, 15, 0, 0, 0, time.UTC)
	_, err := tasks.Create(ctx, models.TaskDraft{Title: "a", Bucket: models.BucketInProgress, DueDate: &due})
	is.NoErr(err)
	_, err = tasks.Create(ctx, models.TaskDraft{Title: "b"})
	is.NoErr(err)

	columns, err := board.Columns(ctx)
	is.NoErr(err)
	is.Equal(len(columns[0].Tasks), 1)
	is.Equal(columns[2].Tasks[0].Title, "a")

	inApril, err := board.DueBetween(ctx, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	is.NoErr(err)
	is.Equal(len(inApril), 1)
	is.Equal(inApril[0].Title, "a")
}
