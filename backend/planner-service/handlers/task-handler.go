package handlers

import (
	"net/http"

	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/services"

	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	service *services.TaskService
	logger  logrus.FieldLogger
}

func NewTaskHandler(service *services.TaskService, logger logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

type createTaskRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	DueDate     string                 `json:"dueDate"`
	Status      string                 `json:"status"`
	Bucket      string                 `json:"bucket"`
	Priority    string                 `json:"priority"`
	AssignedTo  string                 `json:"assignedTo"`
	Checklist   []models.ChecklistItem `json:"checklist"`
}

func (req createTaskRequest) draft() (models.TaskDraft, error) {
	draft := models.TaskDraft{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Bucket:      models.Bucket(req.Bucket),
		Priority:    models.Priority(req.Priority),
		AssignedTo:  req.AssignedTo,
		Checklist:   req.Checklist,
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			return models.TaskDraft{}, err
		}
		draft.DueDate = &due
	}
	return draft, nil
}

type updateTaskRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	DueDate     *string                `json:"dueDate"`
	Status      *models.TaskStatus     `json:"status"`
	Bucket      *models.Bucket         `json:"bucket"`
	Priority    *models.Priority       `json:"priority"`
	AssignedTo  string                 `json:"assignedTo"`
	Checklist   []models.ChecklistItem `json:"checklist"`
}

func (req updateTaskRequest) update() (models.TaskUpdate, error) {
	update := models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Bucket:      req.Bucket,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		Checklist:   req.Checklist,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return models.TaskUpdate{}, err
		}
		update.DueDate = &due
	}
	return update, nil
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Could not load tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Could not load task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.Warnf("Event ID: INVALID_PAYLOAD, Description: CreateTask: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Create(r.Context(), draft)
	if err != nil {
		writeServiceError(w, h.logger, err, "Could not save task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.Warnf("Event ID: INVALID_PAYLOAD, Description: UpdateTask: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	update, err := req.update()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Update(r.Context(), id, update); err != nil {
		writeServiceError(w, h.logger, err, "Could not save task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var items []models.ChecklistItem
	if err := decodeBody(r, &items); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.UpdateChecklist(r.Context(), id, items); err != nil {
		writeServiceError(w, h.logger, err, "Could not save checklist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Bucket string `json:"bucket"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	bucket, err := models.ParseBucket(req.Bucket)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.MoveBucket(r.Context(), id, bucket); err != nil {
		writeServiceError(w, h.logger, err, "Could not move task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "Could not delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
