package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/haneulsoft/caseledger/internal/service"
)

// TaskService defines the methods that the task handler requires from the
// service layer.
type TaskService interface {
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	CompleteTask(ctx context.Context, id string) error
	ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.Task, error)
	Deadlines(ctx context.Context) ([]service.Deadline, error)
}

// TaskHandler serves task and deadline HTTP endpoints.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler with the given service and logger.
func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// ListTasks returns tasks for a case.
// GET /api/tasks?case_id=...&limit=50&offset=0
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "case_id query parameter required")
		return
	}

	tasks, err := h.tasks.ListByCase(r.Context(), caseID, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list tasks failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// CreateTask registers a workflow task from a JSON body.
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var t domain.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if t.CaseID == "" || t.Title == "" {
		writeError(w, http.StatusBadRequest, "case_id and title are required")
		return
	}

	created, err := h.tasks.CreateTask(r.Context(), t)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create task failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateTask replaces an existing task's fields.
// PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing task id")
		return
	}

	var t domain.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	t.ID = id

	updated, err := h.tasks.UpdateTask(r.Context(), t)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update task failed",
			slog.String("task_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// CompleteTask marks a task done.
// POST /api/tasks/{id}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing task id")
		return
	}

	if err := h.tasks.CompleteTask(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: complete task failed",
			slog.String("task_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "done",
		"task_id": id,
	})
}

// ListDeadlines returns every open task with a due date, annotated with its
// D-day countdown and urgency bucket, soonest first.
// GET /api/tasks/deadlines
func (h *TaskHandler) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := h.tasks.Deadlines(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list deadlines failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list deadlines")
		return
	}

	if deadlines == nil {
		deadlines = []service.Deadline{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"deadlines": deadlines})
}
