package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/store"
)

// TaskHandler serves /tasks.
type TaskHandler struct {
	taskService service.TaskService
	userService service.UserService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler. It panics on a nil logger.
func NewTaskHandler(taskService service.TaskService, userService service.UserService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		taskService: taskService,
		userService: userService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks with optional assignment_id, project_id,
// parent_id and status filters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter
	var err error
	if filter.AssignmentID, err = queryUUID(r, "assignment_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.ProjectID, err = queryUUID(r, "project_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.ParentID, err = queryUUID(r, "parent_id"); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if filter.Status, err = queryStatus(r); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskToResponse(&tasks[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r, h.userService)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), actor, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id}. The body replaces every writable field.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), actor, id, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}. Subtasks are removed with it.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndPathUUID(w, r, h.userService, "id")
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted"})
}

func (req *TaskRequest) toInput() (service.TaskInput, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		StartDate:      start,
		DueDate:        due,
		LinkIssue:      req.LinkIssue,
		Priority:       domain.TaskPriority(req.Priority),
		Status:         domain.TaskStatus(req.Status),
		CompletedAt:    req.CompletedAt,
		EstimatedHours: req.EstimatedHours,
		AssignmentID:   req.AssignmentID,
		ProjectID:      req.ProjectID,
		ModuleID:       req.ModuleID,
		ParentID:       req.ParentID,
	}, nil
}
