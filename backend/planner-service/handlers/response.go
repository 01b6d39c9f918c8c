package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"planner-board/backend/planner-service/models"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func isValidationError(err error) bool {
	for _, target := range []error{
		models.ErrEmptyTitle,
		models.ErrTitleTooLong,
		models.ErrInvalidBucket,
		models.ErrInvalidPriority,
		models.ErrInvalidStatus,
		models.ErrInvalidTaskID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeServiceError maps service errors onto status codes. Store failures
// get a generic message; the cause only goes to the log.
func writeServiceError(w http.ResponseWriter, logger logrus.FieldLogger, err error, failure string) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	default:
		logger.Errorf("Event ID: STORE_REQUEST_FAILED, Description: %s: %v", failure, err)
		writeError(w, http.StatusInternalServerError, failure)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}

func taskID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidTaskID, mux.Vars(r)["id"])
	}
	return id, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func parseDate(s string) (time.Time, error) {
	if t, err := models.ParseTimestamp(s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
