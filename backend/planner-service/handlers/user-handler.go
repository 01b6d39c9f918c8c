package handlers

import (
	"net/http"

	"planner-board/backend/planner-service/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// SearchUsers always answers 200; short queries and lookup failures
// produce an empty list.
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Search(r.Context(), r.URL.Query().Get("q")))
}
