package handler

import (
	"log/slog"
	"net/http"

	"github.com/onboarding-api/internal/middleware"
)

// Handlers - набор обработчиков API
type Handlers struct {
	Department *DepartmentHandler
	Employee   *EmployeeHandler
	Task       *TaskHandler
	Document   *DocumentHandler
	Dashboard  *DashboardHandler
}

// Router настраивает маршруты API
type Router struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	handlers Handlers
}

// NewRouter создаёт новый роутер
func NewRouter(handlers Handlers, logger *slog.Logger) *Router {
	return &Router{
		mux:      http.NewServeMux(),
		logger:   logger,
		handlers: handlers,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	dept := r.handlers.Department
	r.mux.HandleFunc("GET /departments", dept.List)
	r.mux.HandleFunc("POST /departments", dept.Create)
	r.mux.HandleFunc("GET /departments/{id}", dept.GetByID)
	r.mux.HandleFunc("PATCH /departments/{id}", dept.Update)
	r.mux.HandleFunc("DELETE /departments/{id}", dept.Delete)

	r.mux.HandleFunc("GET /positions", dept.ListPositions)
	r.mux.HandleFunc("POST /positions", dept.CreatePosition)
	r.mux.HandleFunc("GET /positions/{id}", dept.GetPosition)
	r.mux.HandleFunc("PATCH /positions/{id}", dept.UpdatePosition)
	r.mux.HandleFunc("DELETE /positions/{id}", dept.DeletePosition)

	emp := r.handlers.Employee
	r.mux.HandleFunc("GET /employees", emp.List)
	r.mux.HandleFunc("POST /employees", emp.Register)
	r.mux.HandleFunc("GET /employees/{id}", emp.GetByID)
	r.mux.HandleFunc("PATCH /employees/{id}", emp.Update)
	r.mux.HandleFunc("DELETE /employees/{id}", emp.Delete)
	r.mux.HandleFunc("POST /employees/bulk/state", emp.BulkSetState)
	r.mux.HandleFunc("POST /employees/bulk/refresh-progress", emp.BulkRefreshProgress)

	task := r.handlers.Task
	r.mux.HandleFunc("GET /employees/{id}/tasks", task.ListByEmployee)
	r.mux.HandleFunc("POST /employees/{id}/tasks", task.Create)
	r.mux.HandleFunc("GET /tasks", task.List)
	r.mux.HandleFunc("PATCH /tasks/{id}", task.Update)
	r.mux.HandleFunc("POST /tasks/bulk/state", task.BulkSetState)
	r.mux.HandleFunc("POST /tasks/bulk/escalate", task.BulkEscalate)

	doc := r.handlers.Document
	r.mux.HandleFunc("GET /employees/{id}/documents", doc.ListByEmployee)
	r.mux.HandleFunc("POST /employees/{id}/documents", doc.Upload)
	r.mux.HandleFunc("GET /documents", doc.List)
	r.mux.HandleFunc("GET /documents/{id}/file", doc.Download)
	r.mux.HandleFunc("POST /documents/{id}/review", doc.Review)
	r.mux.HandleFunc("POST /documents/bulk/review", doc.BulkReview)

	r.mux.HandleFunc("GET /dashboard", r.handlers.Dashboard.Dashboard)
	r.mux.HandleFunc("GET /kanban", r.handlers.Dashboard.Kanban)

	// Health check
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.Actor(handler)
	handler = middleware.Recoverer(r.logger)(handler)

	return handler
}
