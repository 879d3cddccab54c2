package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskloom/taskloom/internal/auth"
	"github.com/taskloom/taskloom/internal/handler/dto"
	"github.com/taskloom/taskloom/internal/middleware"
	"github.com/taskloom/taskloom/internal/model"
	"github.com/taskloom/taskloom/internal/service"
)

// TaskHandler handles task CRUD endpoints. Every operation is scoped to
// the authenticated user.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{svc: svc, logger: logger}
}

// List returns the caller's tasks, newest first, optionally filtered by
// ?status= and ?search=.
// GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	tasks, err := h.svc.List(r.Context(), service.ListTasksInput{
		OwnerID: userID,
		Status:  r.URL.Query().Get("status"),
		Search:  r.URL.Query().Get("search"),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if tasks == nil {
		tasks = []*model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create inserts a new task owned by the caller.
// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.svc.Create(r.Context(), service.CreateTaskInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// Update applies a partial update to a task the caller owns.
// PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.svc.Update(r.Context(), service.UpdateTaskInput{
		OwnerID:     userID,
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string      `json:"message"`
		Task    *model.Task `json:"task"`
	}{
		Message: "Task updated successfully",
		Task:    task,
	})
}

// Delete removes a task the caller owns.
// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, taskID); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

// parseTaskID extracts the {id} route parameter. A non-numeric id maps
// to not-found, same as an id that matches no row.
func parseTaskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *TaskHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Invalid task status")
	case errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	default:
		h.logger.Error("task request failed",
			"error", err,
			"endpoint", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
