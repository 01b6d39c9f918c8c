package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/models"
	"planner-board/backend/utils"

	"github.com/matryer/is"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SharePointClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	breaker := utils.NewCircuitBreaker(utils.BreakerSettings{
		Name:        "sharepoint-test",
		MaxFailures: 3,
		OpenTimeout: time.Minute,
	}, logger)
	return NewSharePointClient(config.SharePointConfig{
		SiteURL:      srv.URL + "/",
		AccessToken:  "token",
		TaskList:     "TaskManager",
		ActivityList: "TaskActivity",
	}, srv.Client(), breaker, logger)
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode body %q: %v", data, err)
	}
	return body
}

func TestListTasksSendsSelectAndExpand(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Method, http.MethodGet)
		is.Equal(r.URL.Path, "/_api/web/lists/getbytitle('TaskManager')/items")
		is.Equal(r.URL.Query().Get("$expand"), "AssignedTo")
		is.Equal(r.URL.Query().Get("$select"), "Id,Title,Description,DueDate,Status,Bucket,Priority,Checklist,AssignedTo/Title,AssignedTo/EMail")
		is.Equal(r.Header.Get("Accept"), "application/json;odata=nometadata")
		is.Equal(r.Header.Get("Authorization"), "Bearer token")
		w.Write([]byte(`{"value":[
			{"Id":1,"Title":"Write docs","DueDate":"2024-03-01T00:00:00Z","Bucket":"To Do","Checklist":"[{\"text\":\"a\",\"done\":true}]",
			 "AssignedTo":{"Title":"Ana","EMail":"ana@contoso.com"}},
			{"Id":2,"Title":"Bare"}
		]}`))
	})

	records, err := client.ListTasks(context.Background())
	is.NoErr(err)
	is.Equal(len(records), 2)
	is.Equal(records[0].ID, 1)
	is.Equal(records[0].Bucket, "To Do")
	is.Equal(records[0].AssigneeEmail, "ana@contoso.com")
	is.Equal(records[0].AssigneeName, "Ana")
	is.True(records[0].DueDate != nil)
	is.Equal(records[0].DueDate.Year(), 2024)
	is.Equal(records[1].AssigneeEmail, "")
	is.True(records[1].DueDate == nil)
}

func TestGetTaskNotFound(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/_api/web/lists/getbytitle('TaskManager')/items(42)")
		http.Error(w, `{"error":"Item does not exist"}`, http.StatusNotFound)
	})

	_, err := client.GetTask(context.Background(), 42)
	is.True(errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	is.True(errors.As(err, &statusErr))
	is.Equal(statusErr.StatusCode, http.StatusNotFound)
}

func TestAddTaskPayload(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Method, http.MethodPost)
		is.Equal(r.Header.Get("Content-Type"), "application/json;odata=nometadata")
		body := decodeBody(t, r)
		is.Equal(body["Title"], "Plan sprint")
		is.Equal(body["Bucket"], "Backlog")
		is.Equal(body["AssignedToId"], float64(7))
		is.Equal(body["DueDate"], "2024-05-01T09:30:00.000Z")
		_, hasDescription := body["Description"]
		is.True(!hasDescription)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"Id":11}`))
	})

	due := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	assignee := 7
	id, err := client.AddTask(context.Background(), models.TaskFields{
		Title:      models.StringPtr("Plan sprint"),
		Bucket:     models.StringPtr("Backlog"),
		DueDate:    &due,
		AssigneeID: &assignee,
	})
	is.NoErr(err)
	is.Equal(id, 11)
}

func TestUpdateTaskUsesMergeAndClearsAssignee(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Method, http.MethodPost)
		is.Equal(r.URL.Path, "/_api/web/lists/getbytitle('TaskManager')/items(3)")
		is.Equal(r.Header.Get("X-HTTP-Method"), "MERGE")
		is.Equal(r.Header.Get("IF-MATCH"), "*")
		body := decodeBody(t, r)
		value, ok := body["AssignedToId"]
		is.True(ok)
		is.Equal(value, nil)
		is.Equal(len(body), 1)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UpdateTask(context.Background(), 3, models.TaskFields{ClearAssignee: true})
	is.NoErr(err)
}

func TestDeleteTaskUsesDeleteOverride(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Method, http.MethodPost)
		is.Equal(r.Header.Get("X-HTTP-Method"), "DELETE")
		w.WriteHeader(http.StatusOK)
	})
	is.NoErr(client.DeleteTask(context.Background(), 5))
}

func TestListActivityFiltersAndOrders(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/_api/web/lists/getbytitle('TaskActivity')/items")
		is.Equal(r.URL.Query().Get("$filter"), "TaskId eq 9")
		is.Equal(r.URL.Query().Get("$orderby"), "Timestamp desc")
		w.Write([]byte(`{"value":[
			{"Id":2,"Title":"Task Moved","TaskId":9,"Action":"Move","OldBucket":"Backlog","NewBucket":"Done","Timestamp":"2024-01-02T10:00:00.000Z"},
			{"Id":1,"Title":"Task Created","TaskId":9,"Action":"Create","Timestamp":"2024-01-01T10:00:00.000Z"}
		]}`))
	})

	records, err := client.ListActivity(context.Background(), 9)
	is.NoErr(err)
	is.Equal(len(records), 2)
	is.Equal(records[0].ID, "2")
	is.Equal(records[0].Action, models.ActionMove)
	is.Equal(records[0].OldBucket, models.BucketBacklog)
	is.Equal(records[0].NewBucket, models.BucketDone)
	is.True(records[0].Timestamp.After(records[1].Timestamp))
}

func TestAppendActivityOmitsEmptyBuckets(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		is.Equal(body["Title"], "Task Created")
		is.Equal(body["TaskId"], float64(4))
		is.Equal(body["Action"], "Create")
		is.Equal(body["Timestamp"], "2024-02-03T04:05:06.000Z")
		_, hasOld := body["OldBucket"]
		is.True(!hasOld)
		w.Write([]byte(`{"Id":77}`))
	})

	rec, err := client.AppendActivity(context.Background(), models.ActivityRecord{
		Title:     models.ActionCreate.Title(),
		TaskID:    4,
		Action:    models.ActionCreate,
		Timestamp: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	})
	is.NoErr(err)
	is.Equal(rec.ID, "77")
}

func TestSearchUsersEscapesQuotes(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/_api/web/siteusers")
		is.Equal(r.URL.Query().Get("$filter"), "substringof('o''b',Email) or substringof('o''b',Title)")
		is.Equal(r.URL.Query().Get("$top"), "5")
		w.Write([]byte(`{"value":[{"Id":3,"Title":"Pat O'Brien","Email":"pat@contoso.com"}]}`))
	})

	users, err := client.SearchUsers(context.Background(), "o'b", 5)
	is.NoErr(err)
	is.Equal(users, []models.DirectoryUser{{ID: 3, Name: "Pat O'Brien", Email: "pat@contoso.com"}})
}

func TestEnsureUserPostsLogonName(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/_api/web/ensureuser")
		is.Equal(decodeBody(t, r)["logonName"], "ana@contoso.com")
		w.Write([]byte(`{"Id":12,"Title":"Ana","Email":"ana@contoso.com"}`))
	})

	user, err := client.EnsureUser(context.Background(), "ana@contoso.com")
	is.NoErr(err)
	is.Equal(user.ID, 12)
}

func TestSendEmailUsesVerbosePayload(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/_api/SP.Utilities.Utility.SendEmail")
		is.Equal(r.Header.Get("Content-Type"), "application/json;odata=verbose")
		props := decodeBody(t, r)["properties"].(map[string]interface{})
		is.Equal(props["Subject"], "New Task Assigned: Docs")
		is.Equal(props["__metadata"].(map[string]interface{})["type"], "SP.Utilities.EmailProperties")
		is.Equal(props["To"].(map[string]interface{})["results"], []interface{}{"ana@contoso.com"})
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendEmail(context.Background(), models.Email{
		To:      []string{"ana@contoso.com"},
		Subject: "New Task Assigned: Docs",
		Body:    "<p>hi</p>",
	})
	is.NoErr(err)
}

func TestBreakerOpensOnServerErrorsOnly(t *testing.T) {
	is := is.New(t)
	var calls, status atomic.Int32
	status.Store(http.StatusNotFound)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(int(status.Load()))
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.GetTaskBucket(ctx, 1)
		is.True(errors.Is(err, ErrNotFound))
	}
	is.Equal(calls.Load(), int32(5))

	status.Store(http.StatusServiceUnavailable)
	for i := 0; i < 3; i++ {
		_, err := client.GetTaskBucket(ctx, 1)
		is.True(err != nil)
	}
	is.Equal(calls.Load(), int32(8))

	_, err := client.GetTaskBucket(ctx, 1)
	is.True(err != nil)
	is.Equal(calls.Load(), int32(8))
}

func TestRequestLogsAtDebug(t *testing.T) {
	is := is.New(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Bucket":"Done"}`))
	})
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	client.logger = logger

	bucket, err := client.GetTaskBucket(context.Background(), 1)
	is.NoErr(err)
	is.Equal(bucket, "Done")
	is.Equal(hook.LastEntry().Data["status"], http.StatusOK)
}
