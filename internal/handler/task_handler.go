package handler

import (
	"log/slog"
	"net/http"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/middleware"
	"github.com/onboarding-api/internal/repository"
	"github.com/onboarding-api/internal/service"
)

const (
	tasksPageSize    = 50
	tasksMaxPageSize = 200
)

type TaskHandler struct {
	base
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		base:        newBase(logger),
		taskService: taskService,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), middleware.ActorFrom(r.Context()), employeeID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, nonNil(tasks))
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	filter := repository.TaskFilter{
		State:       domain.TaskState(q.str("state")),
		Responsible: domain.Responsible(q.str("responsible")),
		EmployeeID:  q.int64Ptr("employee_id"),
		DueFrom:     q.date("due_from"),
		DueTo:       q.date("due_to"),
	}
	page := q.page(tasksPageSize, tasksMaxPageSize)
	if q.err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query", q.err.Error())
		return
	}
	if filter.State != "" && !filter.State.Valid() {
		h.respondError(w, http.StatusBadRequest, "invalid query", "unknown state")
		return
	}
	if filter.Responsible != "" && !filter.Responsible.Valid() {
		h.respondError(w, http.StatusBadRequest, "invalid query", "unknown responsible")
		return
	}

	tasks, total, err := h.taskService.List(r.Context(), filter, page)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, listResponse(tasks, total, page))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.taskService.Update(r.Context(), middleware.ActorFrom(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) BulkSetState(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkTaskStateRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.taskService.BulkSetState(r.Context(), middleware.ActorFrom(r.Context()), req.IDs, domain.TaskState(req.State))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BulkResponse{Updated: updated})
}

func (h *TaskHandler) BulkEscalate(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkIDsRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.taskService.BulkEscalate(r.Context(), middleware.ActorFrom(r.Context()), req.IDs)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BulkResponse{Updated: updated})
}
