package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
	"github.com/atinyakov/TaskKeeper/internal/middleware"
	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/go-chi/chi/v5"
)

// TaskService defines the task operations required by TaskHandler. Every
// call is scoped to ownerID.
type TaskService interface {
	ListTasks(ctx context.Context, ownerID string, status models.TaskStatus, search string) ([]models.Task, error)
	GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	CreateTask(ctx context.Context, ownerID, title, description string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, ownerID, taskID string, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

// TaskHandler handles the /api/tasks endpoints. It expects BearerAuth to
// have placed the caller in the request context.
type TaskHandler struct {
	TaskService TaskService
}

// CreateTaskRequest is the JSON payload of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateStatusRequest is the JSON payload of PATCH /api/tasks/{id}/status.
type UpdateStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// List handles GET /api/tasks with optional status and search query filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := models.TaskStatus(q.Get("status"))
	if q.Has("status") && !status.Valid() {
		writeError(w, r, apperrors.Validation("invalid status: "+string(status)))
		return
	}
	search := q.Get("search")
	if q.Has("search") && search == "" {
		writeError(w, r, apperrors.Validation("search must not be empty"))
		return
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), middleware.GetUserIDFromContext(r.Context()), status, search)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.TaskService.GetTask(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Create handles POST /api/tasks and answers 201 with the new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, r, apperrors.Validation("title must not be empty"))
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, r, apperrors.Validation("description must not be empty"))
		return
	}

	task, err := h.TaskService.CreateTask(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Title, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateStatus handles PATCH /api/tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperrors.Validation("invalid request body"))
		return
	}

	task, err := h.TaskService.UpdateTaskStatus(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id} and answers 204.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.DeleteTask(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
