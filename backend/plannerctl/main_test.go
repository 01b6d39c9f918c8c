package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"planner-board/backend/planner-service/bootstrap"
	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"
	"planner-board/backend/planner-service/services"

	"github.com/matryer/is"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func withApp(t *testing.T) (*bootstrap.App, *repositories.MemoryStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := repositories.NewMemoryStore()
	activity := services.NewActivityService(store, logger)
	tasks := services.NewTaskService(store, store, logger, activity)
	app := &bootstrap.App{
		Tasks:     tasks,
		Activity:  activity,
		Users:     services.NewUserService(store, 10, logger),
		Board:     services.NewBoardService(tasks),
		Directory: store,
	}

	prev := openApp
	openApp = func(context.Context) (*bootstrap.App, *config.Config, logrus.FieldLogger, error) {
		return app, &config.Config{StoreDriver: config.DriverMemory}, logger, nil
	}
	t.Cleanup(func() {
		openApp = prev
		jsonOutput = false
		tasksListBucket = ""
	})
	return app, store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTasksListTable(t *testing.T) {
	is := is.New(t)
	app, _ := withApp(t)
	ctx := context.Background()
	_, err := app.Tasks.Create(ctx, models.TaskDraft{Title: "Draft roadmap", Bucket: models.BucketToDo, Checklist: []models.ChecklistItem{{Text: "a", Done: true}, {Text: "b"}}})
	is.NoErr(err)
	_, err = app.Tasks.Create(ctx, models.TaskDraft{Title: "Ship it", Bucket: models.BucketDone})
	is.NoErr(err)

	out, err := run(t, "tasks", "list")
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	is.Equal(len(lines), 3)
	is.True(strings.HasPrefix(lines[0], "ID"))
	is.True(strings.Contains(lines[1], "Draft roadmap"))
	is.True(strings.Contains(lines[1], "1/2"))
	is.True(strings.Contains(lines[2], "Ship it"))

	out, err = run(t, "tasks", "list", "--bucket", "done", "--json")
	is.NoErr(err)
	var tasks []models.Task
	is.NoErr(json.Unmarshal([]byte(out), &tasks))
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].Title, "Ship it")
}

func TestTasksMoveAndActivity(t *testing.T) {
	is := is.New(t)
	app, _ := withApp(t)
	created, err := app.Tasks.Create(context.Background(), models.TaskDraft{Title: "Move me"})
	is.NoErr(err)

	out, err := run(t, "tasks", "move", "1", "in progress")
	is.NoErr(err)
	is.Equal(out, "Moved task 1 to In Progress\n")

	out, err = run(t, "activity", "1")
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	is.Equal(len(lines), 3)
	is.True(strings.Contains(lines[1], "Task Moved"))
	is.True(strings.Contains(lines[1], "Backlog"))
	is.True(strings.Contains(lines[2], "Task Created"))

	stored, err := app.Tasks.Get(context.Background(), created.ID)
	is.NoErr(err)
	is.Equal(stored.Bucket, models.BucketInProgress)
}

func TestTasksMoveRejectsBadInput(t *testing.T) {
	is := is.New(t)
	withApp(t)

	_, err := run(t, "tasks", "move", "x", "Done")
	is.True(errors.Is(err, models.ErrInvalidTaskID))

	_, err = run(t, "tasks", "move", "1", "Someday")
	is.True(errors.Is(err, models.ErrInvalidBucket))

	_, err = run(t, "tasks", "move", "1", "Done")
	is.True(errors.Is(err, models.ErrTaskNotFound))
}

func TestUsersSearch(t *testing.T) {
	is := is.New(t)
	_, store := withApp(t)
	store.AddUser("Ana Lee", "ana@contoso.com")

	out, err := run(t, "users", "search", "a")
	is.NoErr(err)
	is.Equal(out, "No matching users.\n")

	out, err = run(t, "users", "search", "lee")
	is.NoErr(err)
	is.True(strings.Contains(out, "ana@contoso.com"))
}

type registeringDirectory struct {
	*repositories.MemoryStore
}

func (d registeringDirectory) AddUser(_ context.Context, name, email string) (models.DirectoryUser, error) {
	return d.MemoryStore.AddUser(name, email), nil
}

func TestUsersAdd(t *testing.T) {
	is := is.New(t)
	app, store := withApp(t)

	_, err := run(t, "users", "add", "Ana", "ana@contoso.com")
	is.True(err != nil) // memory directory does not register users

	app.Directory = registeringDirectory{store}
	out, err := run(t, "users", "add", "Ana", "ana@contoso.com")
	is.NoErr(err)
	is.Equal(out, "Added user 1: Ana <ana@contoso.com>\n")

	_, err = run(t, "users", "add", "Bo", "bo")
	is.True(err != nil)
}
