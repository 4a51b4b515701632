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
	employeesPageSize    = 20
	employeesMaxPageSize = 100
)

type EmployeeHandler struct {
	base
	empService service.EmployeeService
}

func NewEmployeeHandler(empService service.EmployeeService, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		base:       newBase(logger),
		empService: empService,
	}
}

func (h *EmployeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	reg, err := h.empService.Register(r.Context(), middleware.ActorFrom(r.Context()), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.RegisterEmployeeResponse{
		Employee: toEmployeeResponse(reg.Employee),
		Warning:  reg.Warning,
	})
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	filter := repository.EmployeeFilter{
		Search:       q.str("search"),
		State:        domain.EmployeeState(q.str("state")),
		DepartmentID: q.int64Ptr("department_id"),
		SupervisorID: q.int64Ptr("supervisor_id"),
		HiredFrom:    q.date("hired_from"),
		HiredTo:      q.date("hired_to"),
	}
	page := q.page(employeesPageSize, employeesMaxPageSize)
	if q.err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query", q.err.Error())
		return
	}
	if filter.State != "" && !filter.State.Valid() {
		h.respondError(w, http.StatusBadRequest, "invalid query", "unknown state")
		return
	}

	employees, total, err := h.empService.List(r.Context(), filter, page)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	items := make([]dto.EmployeeResponse, len(employees))
	for i := range employees {
		items[i] = toEmployeeResponse(&employees[i])
	}
	h.respondJSON(w, http.StatusOK, listResponse(items, total, page))
}

func (h *EmployeeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.empService.GetDetail(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := dto.EmployeeDetailResponse{
		EmployeeResponse: toEmployeeResponse(detail.Employee),
		Tasks:            nonNil(detail.Tasks),
		Documents:        nonNil(detail.Documents),
		TasksByState:     make(map[string]int64, len(detail.TasksByState)),
		DocumentsByState: make(map[string]int64, len(detail.DocumentsByState)),
	}
	resp.Progress = detail.Progress
	for state, n := range detail.TasksByState {
		resp.TasksByState[string(state)] = n
	}
	for state, n := range detail.DocumentsByState {
		resp.DocumentsByState[string(state)] = n
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp, err := h.empService.Update(r.Context(), middleware.ActorFrom(r.Context()), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.empService.Delete(r.Context(), middleware.ActorFrom(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) BulkSetState(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkEmployeeStateRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.empService.BulkSetState(r.Context(), middleware.ActorFrom(r.Context()), req.IDs, domain.EmployeeState(req.State))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BulkResponse{Updated: updated})
}

func (h *EmployeeHandler) BulkRefreshProgress(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkIDsRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.empService.BulkRefreshProgress(r.Context(), middleware.ActorFrom(r.Context()), req.IDs)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BulkResponse{Updated: updated})
}

func toAccountResponse(acc *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        acc.ID,
		Username:  acc.Username,
		Email:     acc.Email,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		FullName:  acc.FullName(),
	}
}

func toEmployeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:             emp.ID,
		IdentityNumber: emp.IdentityNumber,
		Phone:          emp.Phone,
		EmergencyPhone: emp.EmergencyPhone,
		BirthDate:      emp.BirthDate.Format(dto.DateLayout),
		Address:        emp.Address,
		PositionID:     emp.PositionID,
		HireDate:       emp.HireDate.Format(dto.DateLayout),
		Salary:         emp.Salary,
		State:          string(emp.State),
		Progress:       emp.Progress,
		Notes:          emp.Notes,
		CreatedAt:      emp.CreatedAt,
		UpdatedAt:      emp.UpdatedAt,
	}

	if emp.Account != nil {
		resp.Account = toAccountResponse(emp.Account)
	} else {
		resp.Account = dto.AccountResponse{ID: emp.AccountID}
	}
	if emp.BloodType != nil {
		bt := string(*emp.BloodType)
		resp.BloodType = &bt
	}
	if emp.Position != nil {
		resp.PositionTitle = emp.Position.Title
		if emp.Position.Department != nil {
			resp.DepartmentName = emp.Position.Department.Name
		}
	}
	if emp.Supervisor != nil {
		sup := toAccountResponse(emp.Supervisor)
		resp.Supervisor = &sup
	}

	return resp
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
