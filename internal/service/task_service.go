package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/repository"
)

// TaskService определяет интерфейс бизнес-логики для задач онбординга
type TaskService interface {
	Create(ctx context.Context, actor domain.Actor, employeeID int64, req *dto.CreateTaskRequest) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter repository.TaskFilter, page repository.Page) ([]domain.Task, int64, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Task, error)
	Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdateTaskRequest) (*domain.Task, error)
	BulkSetState(ctx context.Context, actor domain.Actor, ids []int64, state domain.TaskState) (int64, error)
	BulkEscalate(ctx context.Context, actor domain.Actor, ids []int64) (int64, error)
}

type taskService struct {
	tx        repository.TxManager
	tasks     repository.TaskRepository
	employees repository.EmployeeRepository
	accounts  repository.AccountRepository
	progress  progressTracker
	opts      options
}

// NewTaskService создаёт новый экземпляр сервиса
func NewTaskService(
	tx repository.TxManager,
	tasks repository.TaskRepository,
	employees repository.EmployeeRepository,
	accounts repository.AccountRepository,
	opts ...Option,
) TaskService {
	return &taskService{
		tx:        tx,
		tasks:     tasks,
		employees: employees,
		accounts:  accounts,
		progress:  progressTracker{tasks: tasks, employees: employees},
		opts:      buildOptions(opts),
	}
}

// Create добавляет задачу вручную и пересчитывает прогресс сотрудника
func (s *taskService) Create(ctx context.Context, actor domain.Actor, employeeID int64, req *dto.CreateTaskRequest) (*domain.Task, error) {
	if err := actor.Require(domain.PermManageTasks); err != nil {
		return nil, err
	}

	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	task := &domain.Task{
		EmployeeID:           employeeID,
		Title:                strings.TrimSpace(req.Title),
		Description:          strings.TrimSpace(req.Description),
		Responsible:          domain.Responsible(req.Responsible),
		ResponsibleAccountID: req.ResponsibleAccountID,
		State:                domain.TaskState(req.State),
		Priority:             domain.Priority(req.Priority),
		OrderIndex:           req.OrderIndex,
		Notes:                strings.TrimSpace(req.Notes),
	}
	if task.State == "" {
		task.State = domain.TaskPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}

	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	task.DueDate = due

	if err := s.validate(ctx, task); err != nil {
		return nil, err
	}

	domain.ApplyTaskTransition(task, "", actor.AccountID, s.opts.now())

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tasks.Create(txCtx, task); err != nil {
			return err
		}
		_, err := s.progress.refresh(txCtx, employeeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) List(ctx context.Context, filter repository.TaskFilter, page repository.Page) ([]domain.Task, int64, error) {
	return s.tasks.List(ctx, filter, page)
}

func (s *taskService) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Task, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.tasks.ListByEmployee(ctx, employeeID)
}

// Update меняет задачу. Статус и заметки может менять любой исполнитель,
// остальные поля только отдел кадров.
func (s *taskService) Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdateTaskRequest) (*domain.Task, error) {
	if err := actor.Require(domain.PermChangeTasks); err != nil {
		return nil, err
	}
	if req.HasManagedFields() {
		if err := actor.Require(domain.PermManageTasks); err != nil {
			return nil, err
		}
	}

	var due *time.Time
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		due = &d
	}

	// предыдущий статус читается под блокировкой в той же транзакции, что и запись
	var task *domain.Task
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		task, err = s.tasks.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		previous := task.State
		applyTaskUpdate(task, req, due)

		if err := s.validate(txCtx, task); err != nil {
			return err
		}
		domain.ApplyTaskTransition(task, previous, actor.AccountID, s.opts.now())

		if err := s.tasks.Update(txCtx, task); err != nil {
			return err
		}
		_, err = s.progress.refresh(txCtx, task.EmployeeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func applyTaskUpdate(task *domain.Task, req *dto.UpdateTaskRequest, due *time.Time) {
	if req.State != nil {
		task.State = domain.TaskState(*req.State)
	}
	if req.Notes != nil {
		task.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Responsible != nil {
		task.Responsible = domain.Responsible(*req.Responsible)
	}
	if req.ResponsibleAccountID != nil {
		task.ResponsibleAccountID = req.ResponsibleAccountID
	}
	if due != nil {
		task.DueDate = *due
	}
	if req.Priority != nil {
		task.Priority = domain.Priority(*req.Priority)
	}
	if req.OrderIndex != nil {
		task.OrderIndex = *req.OrderIndex
	}
}

// BulkSetState меняет статус нескольких задач по тем же правилам, что и Update
func (s *taskService) BulkSetState(ctx context.Context, actor domain.Actor, ids []int64, state domain.TaskState) (int64, error) {
	if err := actor.Require(domain.PermChangeTasks); err != nil {
		return 0, err
	}
	if !state.Valid() {
		return 0, domain.ErrInvalidState
	}

	return s.bulkUpdate(ctx, ids, func(task *domain.Task) bool {
		if task.State == state {
			return false
		}
		previous := task.State
		task.State = state
		domain.ApplyTaskTransition(task, previous, actor.AccountID, s.opts.now())
		return true
	})
}

// BulkEscalate повышает приоритет задач на одну ступень; urgent не меняется
func (s *taskService) BulkEscalate(ctx context.Context, actor domain.Actor, ids []int64) (int64, error) {
	if err := actor.Require(domain.PermManageTasks); err != nil {
		return 0, err
	}

	return s.bulkUpdate(ctx, ids, func(task *domain.Task) bool {
		next, changed := domain.EscalatePriority(task.Priority)
		task.Priority = next
		return changed
	})
}

// bulkUpdate сохраняет изменённые задачи и пересчитывает прогресс затронутых сотрудников
func (s *taskService) bulkUpdate(ctx context.Context, ids []int64, change func(*domain.Task) bool) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}

	var updated int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		tasks, err := s.tasks.GetManyForUpdate(txCtx, ids)
		if err != nil {
			return err
		}

		touched := make(map[int64]struct{})
		for i := range tasks {
			if !change(&tasks[i]) {
				continue
			}
			if err := s.tasks.Update(txCtx, &tasks[i]); err != nil {
				return err
			}
			touched[tasks[i].EmployeeID] = struct{}{}
			updated++
		}
		for employeeID := range touched {
			if _, err := s.progress.refresh(txCtx, employeeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *taskService) validate(ctx context.Context, task *domain.Task) error {
	if err := domain.RequireLine("title", task.Title); err != nil {
		return err
	}
	if strings.TrimSpace(task.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if !task.State.Valid() {
		return domain.ErrInvalidState
	}
	if !task.Responsible.Valid() {
		return fmt.Errorf("%w: unknown responsible party %q", domain.ErrValidation, task.Responsible)
	}
	if !task.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, task.Priority)
	}
	if task.ResponsibleAccountID != nil {
		if _, err := s.accounts.GetByID(ctx, *task.ResponsibleAccountID); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return fmt.Errorf("%w: responsible account does not exist", domain.ErrValidation)
			}
			return err
		}
	}
	return nil
}
