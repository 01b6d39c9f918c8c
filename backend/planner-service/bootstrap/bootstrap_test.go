package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"

	"github.com/matryer/is"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewMemoryApp(t *testing.T) {
	is := is.New(t)
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		StoreDriver:    config.DriverMemory,
		ActivityDriver: config.DriverMemory,
		MailDriver:     config.DriverNone,
		SearchLimit:    10,
	}

	app, err := New(context.Background(), cfg, logger)
	is.NoErr(err)
	defer app.Close()

	task, err := app.Tasks.Create(context.Background(), models.TaskDraft{Title: "Boot"})
	is.NoErr(err)
	records, err := app.Activity.ForTask(context.Background(), task.ID)
	is.NoErr(err)
	is.Equal(len(records), 1)

	rec := httptest.NewRecorder()
	app.Router(cfg, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	is.Equal(rec.Code, http.StatusOK)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	is := is.New(t)
	logger, _ := test.NewNullLogger()
	_, err := New(context.Background(), &config.Config{StoreDriver: "postgres", SearchLimit: 10}, logger)
	is.True(err != nil)
}

func TestSharePointAppSharesOneClient(t *testing.T) {
	is := is.New(t)
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		StoreDriver:    config.DriverSharePoint,
		ActivityDriver: config.DriverSharePoint,
		MailDriver:     config.DriverSharePoint,
		SearchLimit:    10,
		SharePoint:     config.SharePointConfig{SiteURL: "https://contoso.sharepoint.com/sites/pm", TaskList: "TaskManager"},
	}

	app := &App{}
	s, err := app.openStores(context.Background(), cfg, logger)
	is.NoErr(err)
	client, ok := s.tasks.(*repositories.SharePointClient)
	is.True(ok)
	is.Equal(s.mailer, repositories.Mailer(client))
}
