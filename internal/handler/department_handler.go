package handler

import (
	"log/slog"
	"net/http"

	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/middleware"
	"github.com/onboarding-api/internal/repository"
	"github.com/onboarding-api/internal/service"
)

type DepartmentHandler struct {
	base
	deptService service.DepartmentService
	posService  service.PositionService
}

func NewDepartmentHandler(
	deptService service.DepartmentService,
	posService service.PositionService,
	logger *slog.Logger,
) *DepartmentHandler {
	return &DepartmentHandler{
		base:        newBase(logger),
		deptService: deptService,
		posService:  posService,
	}
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	dept, err := h.deptService.Create(r.Context(), middleware.ActorFrom(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dept)
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.deptService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if departments == nil {
		departments = []repository.DepartmentSummary{}
	}

	h.respondJSON(w, http.StatusOK, departments)
}

func (h *DepartmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	dept, err := h.deptService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	dept, err := h.deptService.Update(r.Context(), middleware.ActorFrom(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deptService.Delete(r.Context(), middleware.ActorFrom(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DepartmentHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePositionRequest
	if !h.decode(w, r, &req) {
		return
	}

	pos, err := h.posService.Create(r.Context(), middleware.ActorFrom(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, pos)
}

func (h *DepartmentHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	filter := repository.PositionFilter{
		DepartmentID: q.int64Ptr("department_id"),
		Active:       q.boolPtr("active"),
	}
	if q.err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query", q.err.Error())
		return
	}

	positions, err := h.posService.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if positions == nil {
		positions = []repository.PositionSummary{}
	}

	h.respondJSON(w, http.StatusOK, positions)
}

func (h *DepartmentHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	pos, err := h.posService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, pos)
}

func (h *DepartmentHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdatePositionRequest
	if !h.decode(w, r, &req) {
		return
	}

	pos, err := h.posService.Update(r.Context(), middleware.ActorFrom(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, pos)
}

func (h *DepartmentHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.posService.Delete(r.Context(), middleware.ActorFrom(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
