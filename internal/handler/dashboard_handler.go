package handler

import (
	"log/slog"
	"net/http"

	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/middleware"
	"github.com/onboarding-api/internal/service"
)

type DashboardHandler struct {
	base
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		base:             newBase(logger),
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboardService.Dashboard(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, d)
}

func (h *DashboardHandler) Kanban(w http.ResponseWriter, r *http.Request) {
	columns, err := h.dashboardService.Kanban(r.Context(), middleware.ActorFrom(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make(map[string][]dto.EmployeeResponse, len(columns))
	for _, col := range columns {
		items := make([]dto.EmployeeResponse, len(col.Employees))
		for i := range col.Employees {
			items[i] = toEmployeeResponse(&col.Employees[i])
		}
		resp[string(col.State)] = items
	}
	h.respondJSON(w, http.StatusOK, resp)
}
