package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner-board/backend/planner-service/models"

	"github.com/matryer/is"
)

func TestMemoryStoreTaskLifecycle(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	ana := store.AddUser("Ana", "ana@contoso.com")

	id, err := store.AddTask(ctx, models.TaskFields{
		Title:      models.StringPtr("First"),
		Bucket:     models.StringPtr("To Do"),
		AssigneeID: &ana.ID,
	})
	is.NoErr(err)

	rec, err := store.GetTask(ctx, id)
	is.NoErr(err)
	is.Equal(rec.Title, "First")
	is.Equal(rec.AssigneeEmail, "ana@contoso.com")

	is.NoErr(store.UpdateTask(ctx, id, models.TaskFields{Bucket: models.StringPtr("Done"), ClearAssignee: true}))
	bucket, err := store.GetTaskBucket(ctx, id)
	is.NoErr(err)
	is.Equal(bucket, "Done")
	rec, _ = store.GetTask(ctx, id)
	is.Equal(rec.AssigneeEmail, "")
	is.Equal(rec.Title, "First")

	is.NoErr(store.DeleteTask(ctx, id))
	_, err = store.GetTask(ctx, id)
	is.True(errors.Is(err, ErrNotFound))
	is.True(errors.Is(store.DeleteTask(ctx, id), ErrNotFound))

	records, err := store.ListTasks(ctx)
	is.NoErr(err)
	is.Equal(len(records), 0)
}

func TestMemoryStoreActivityNewestFirst(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []models.ActivityAction{models.ActionCreate, models.ActionMove, models.ActionUpdate} {
		_, err := store.AppendActivity(ctx, models.ActivityRecord{TaskID: 1, Action: action, Timestamp: base.Add(time.Duration(i) * time.Minute)})
		is.NoErr(err)
	}
	// same timestamp as the last one: insertion order breaks the tie
	_, err := store.AppendActivity(ctx, models.ActivityRecord{TaskID: 1, Action: models.ActionDelete, Timestamp: base.Add(2 * time.Minute)})
	is.NoErr(err)
	_, err = store.AppendActivity(ctx, models.ActivityRecord{TaskID: 2, Action: models.ActionCreate, Timestamp: base})
	is.NoErr(err)

	records, err := store.ListActivity(ctx, 1)
	is.NoErr(err)
	is.Equal(len(records), 4)
	is.Equal(records[0].Action, models.ActionDelete)
	is.Equal(records[1].Action, models.ActionUpdate)
	is.Equal(records[3].Action, models.ActionCreate)

	none, err := store.ListActivity(ctx, 99)
	is.NoErr(err)
	is.Equal(len(none), 0)
}

func TestMemoryStoreUsers(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	store.AddUser("Ana Lee", "ana@contoso.com")
	store.AddUser("Bo Anders", "bo@contoso.com")
	store.AddUser("Cy", "cy@fabrikam.com")

	u, err := store.EnsureUser(ctx, "ANA@contoso.com")
	is.NoErr(err)
	is.Equal(u.Name, "Ana Lee")

	_, err = store.EnsureUser(ctx, "nobody@contoso.com")
	is.True(errors.Is(err, ErrNotFound))

	users, err := store.SearchUsers(ctx, "an", 10)
	is.NoErr(err)
	is.Equal(len(users), 2)

	users, err = store.SearchUsers(ctx, "contoso", 1)
	is.NoErr(err)
	is.Equal(len(users), 1)
}

func TestMemoryStoreRecordsMail(t *testing.T) {
	is := is.New(t)
	store := NewMemoryStore()
	to := []string{"ana@contoso.com"}
	is.NoErr(store.SendEmail(context.Background(), models.Email{To: to, Subject: "s"}))
	to[0] = "changed"
	sent := store.SentEmails()
	is.Equal(len(sent), 1)
	is.Equal(sent[0].To[0], "ana@contoso.com")
}
