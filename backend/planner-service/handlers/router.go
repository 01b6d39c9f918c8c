package handlers

import (
	"net/http"

	"planner-board/backend/planner-service/middleware"
	"planner-board/backend/planner-service/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RouterDeps carries everything NewRouter wires into the API.
type RouterDeps struct {
	Tasks      *services.TaskService
	Activity   *services.ActivityService
	Users      *services.UserService
	Board      *services.BoardService
	Logger     logrus.FieldLogger
	JWTSecret  string
	CORSOrigin string
}

// NewRouter builds the HTTP API. /api routes require a bearer token when a
// JWT secret is configured.
func NewRouter(d RouterDeps) http.Handler {
	tasks := NewTaskHandler(d.Tasks, d.Logger)
	activity := NewActivityHandler(d.Activity, d.Logger)
	users := NewUserHandler(d.Users)
	board := NewBoardHandler(d.Board, d.Logger)

	router := mux.NewRouter()
	router.Use(middleware.Metrics, middleware.RequestLogger(d.Logger))

	router.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Planner service is running"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if d.JWTSecret != "" {
		api.Use(middleware.JWTAuth([]byte(d.JWTSecret), d.Logger))
	}
	api.HandleFunc("/tasks", tasks.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", tasks.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", tasks.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", tasks.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", tasks.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/checklist", tasks.UpdateChecklist).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}/bucket", tasks.MoveTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}/activity", activity.GetTaskActivity).Methods(http.MethodGet)
	api.HandleFunc("/users/search", users.SearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/board", board.GetBoard).Methods(http.MethodGet)
	api.HandleFunc("/calendar", board.GetCalendar).Methods(http.MethodGet)

	return middleware.EnableCORS(d.CORSOrigin)(router)
}
