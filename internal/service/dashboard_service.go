package service

import (
	"context"
	"time"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/repository"
)

const (
	recentEmployeesLimit = 5
	dueSoonLimit         = 10
	dueSoonWindow        = 7 * 24 * time.Hour
	pendingDocsLimit     = 5
	monthlyHistory       = 6
)

// MonthlyCount - количество регистраций за месяц
type MonthlyCount struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

// Dashboard - сводка по онбордингу
type Dashboard struct {
	TotalEmployees     int64                   `json:"total_employees"`
	EmployeesThisMonth int64                   `json:"employees_this_month"`
	OpenTasks          int64                   `json:"open_tasks"`
	OpenDocuments      int64                   `json:"open_documents"`
	EmployeesByState   []repository.StateCount `json:"employees_by_state"`
	RecentEmployees    []domain.Employee       `json:"recent_employees"`
	TasksDueSoon       []domain.Task           `json:"tasks_due_soon"`
	PendingDocuments   []domain.Document       `json:"pending_documents"`
	MonthlyHires       []MonthlyCount          `json:"monthly_hires"`
}

// KanbanColumn - колонка доски онбординга
type KanbanColumn struct {
	State     domain.EmployeeState `json:"state"`
	Employees []domain.Employee    `json:"employees"`
}

// DashboardService собирает сводные данные для руководителей и отдела кадров
type DashboardService interface {
	Dashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error)
	Kanban(ctx context.Context, actor domain.Actor) ([]KanbanColumn, error)
}

type dashboardService struct {
	employees repository.EmployeeRepository
	tasks     repository.TaskRepository
	documents repository.DocumentRepository
	opts      options
}

// NewDashboardService создаёт новый экземпляр сервиса
func NewDashboardService(
	employees repository.EmployeeRepository,
	tasks repository.TaskRepository,
	documents repository.DocumentRepository,
	opts ...Option,
) DashboardService {
	return &dashboardService{
		employees: employees,
		tasks:     tasks,
		documents: documents,
		opts:      buildOptions(opts),
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	if err := actor.Require(domain.PermViewDashboard); err != nil {
		return nil, err
	}

	now := s.opts.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		d   Dashboard
		err error
	)
	if d.TotalEmployees, err = s.employees.Count(ctx); err != nil {
		return nil, err
	}
	if d.EmployeesThisMonth, err = s.employees.CountCreatedBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return nil, err
	}
	if d.OpenTasks, err = s.tasks.CountByStates(ctx, domain.TaskPending, domain.TaskInProgress); err != nil {
		return nil, err
	}
	if d.OpenDocuments, err = s.documents.CountByStates(ctx, domain.DocumentPending, domain.DocumentInReview); err != nil {
		return nil, err
	}
	if d.EmployeesByState, err = s.employees.CountByState(ctx); err != nil {
		return nil, err
	}
	if d.RecentEmployees, err = s.employees.Recent(ctx, recentEmployeesLimit); err != nil {
		return nil, err
	}
	if d.TasksDueSoon, err = s.tasks.DueSoon(ctx, now.Add(dueSoonWindow), dueSoonLimit); err != nil {
		return nil, err
	}
	if d.PendingDocuments, err = s.documents.RecentByState(ctx, domain.DocumentPending, pendingDocsLimit); err != nil {
		return nil, err
	}

	d.MonthlyHires = make([]MonthlyCount, 0, monthlyHistory)
	for i := monthlyHistory - 1; i >= 0; i-- {
		from := monthStart.AddDate(0, -i, 0)
		total, err := s.employees.CountCreatedBetween(ctx, from, from.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		d.MonthlyHires = append(d.MonthlyHires, MonthlyCount{Month: from.Format("2006-01"), Total: total})
	}

	return &d, nil
}

// Kanban группирует сотрудников по стадиям; отменённые на доску не попадают
func (s *dashboardService) Kanban(ctx context.Context, actor domain.Actor) ([]KanbanColumn, error) {
	if err := actor.Require(domain.PermViewDashboard); err != nil {
		return nil, err
	}

	states := []domain.EmployeeState{domain.EmployeePreEntry, domain.EmployeeInProgress, domain.EmployeeCompleted}
	columns := make([]KanbanColumn, 0, len(states))
	for _, state := range states {
		employees, err := s.employees.ListByState(ctx, state)
		if err != nil {
			return nil, err
		}
		if employees == nil {
			employees = []domain.Employee{}
		}
		columns = append(columns, KanbanColumn{State: state, Employees: employees})
	}
	return columns, nil
}
