package handlers

import (
	"net/http"

	"planner-board/backend/planner-service/services"

	"github.com/sirupsen/logrus"
)

type BoardHandler struct {
	service *services.BoardService
	logger  logrus.FieldLogger
}

func NewBoardHandler(service *services.BoardService, logger logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{service: service, logger: logger}
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	columns, err := h.service.Columns(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Could not load tasks")
		return
	}
	writeJSON(w, http.StatusOK, columns)
}

// GetCalendar returns the tasks due in [from, to).
func (h *BoardHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}

	tasks, err := h.service.DueBetween(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, h.logger, err, "Could not load tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
