package handlers

import (
	"net/http"

	"planner-board/backend/planner-service/services"

	"github.com/sirupsen/logrus"
)

type ActivityHandler struct {
	service *services.ActivityService
	logger  logrus.FieldLogger
}

func NewActivityHandler(service *services.ActivityService, logger logrus.FieldLogger) *ActivityHandler {
	return &ActivityHandler{service: service, logger: logger}
}

func (h *ActivityHandler) GetTaskActivity(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.service.ForTask(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Could not load activity")
		return
	}
	writeJSON(w, http.StatusOK, records)
}
