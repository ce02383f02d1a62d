package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
)

// optionalString distinguishes an absent JSON field from an explicit
// null. UnmarshalJSON only runs when the field appears in the body, so
// Set marks presence and Value is nil for a JSON null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// CreateTaskRequest represents the request body for creating a new task.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
}

// Validate implements the shared request validation interface with the
// domain's aggregated violation messages. Empty status and priority are
// accepted because the service fills in the defaults.
func (r CreateTaskRequest) Validate() error {
	var messages []string
	if r.Title == "" {
		messages = append(messages, domain.MsgTitleRequired)
	}

	patch := domain.TaskPatch{
		Description:    r.Description,
		DescriptionSet: r.Description != nil,
	}
	if r.Title != "" {
		patch.Title = &r.Title
	}
	if r.Status != "" {
		patch.Status = &r.Status
	}
	if r.Priority != "" {
		patch.Priority = &r.Priority
	}

	if err := patch.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			messages = append(messages, ve.Messages...)
		}
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages)
	}
	return nil
}

// UpdateTaskRequest represents the request body for updating a task.
// All fields are optional; absent fields leave the task unchanged.
// Description uses optionalString so an explicit null clears the
// stored description instead of being mistaken for an absent field.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description optionalString `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
}

// Validate implements the shared request validation interface.
func (r UpdateTaskRequest) Validate() error {
	return r.toPatch().Validate()
}

// toPatch converts the request to the domain's sparse update form.
func (r UpdateTaskRequest) toPatch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:          r.Title,
		Description:    r.Description.Value,
		DescriptionSet: r.Description.Set,
		Status:         r.Status,
		Priority:       r.Priority,
	}
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	CreatedAt   string  `json:"created_at"`
}

// TaskListResponse represents the response for a task listing,
// including the number of tasks returned.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// DeleteTaskResponse confirms a successful deletion.
type DeleteTaskResponse struct {
	Message string `json:"message"`
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskManager service.TaskManager
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskManager service.TaskManager) *TaskHandler {
	return &TaskHandler{
		taskManager: taskManager,
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			shared.RespondWithValidationDetails(w, r, http.StatusBadRequest, "Validation failed", ve.Messages)
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed")
		return
	}

	task, err := h.taskManager.Create(r.Context(), req.Title, req.Description, req.Status, req.Priority)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			shared.RespondWithValidationDetails(w, r, http.StatusBadRequest, "Validation failed", ve.Messages)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /api/tasks requests. The optional status and
// priority query parameters filter the result.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	priorityFilter := r.URL.Query().Get("priority")

	tasks, err := h.taskManager.List(r.Context(), statusFilter, priorityFilter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: responses,
		Count: len(responses),
	})
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskManager.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if task == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			shared.RespondWithValidationDetails(w, r, http.StatusBadRequest, "Validation failed", ve.Messages)
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed")
		return
	}

	task, err := h.taskManager.Update(r.Context(), id, req.toPatch())
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			shared.RespondWithValidationDetails(w, r, http.StatusBadRequest, "Validation failed", ve.Messages)
			return
		}
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	deleted, err := h.taskManager.Delete(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{
		Message: "Task deleted successfully",
	})
}

// HealthResponse represents the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// HealthCheck handles GET /health requests.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "task-api",
	})
}

// parseTaskID extracts and parses the id URL parameter. On failure it
// writes a 400 response and returns ok=false.
func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	rec := task.ToRecord()
	return TaskResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      rec.Status,
		Priority:    rec.Priority,
		CreatedAt:   rec.CreatedAt,
	}
}
