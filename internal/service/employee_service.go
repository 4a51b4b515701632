package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/notification"
	"github.com/onboarding-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeNotSentWarning возвращается клиенту, если письмо не удалось отправить
const WelcomeNotSentWarning = "employee registered, but the welcome email could not be delivered"

// Registration - результат регистрации нового сотрудника
type Registration struct {
	Employee *domain.Employee
	Warning  string
}

// EmployeeDetail - карточка сотрудника
type EmployeeDetail struct {
	Employee         *domain.Employee
	Tasks            []domain.Task
	Documents        []domain.Document
	TasksByState     map[domain.TaskState]int64
	DocumentsByState map[domain.DocumentState]int64
	Progress         int
}

// EmployeeService определяет интерфейс бизнес-логики для сотрудников
type EmployeeService interface {
	Register(ctx context.Context, actor domain.Actor, req *dto.CreateEmployeeRequest) (*Registration, error)
	GetDetail(ctx context.Context, id int64) (*EmployeeDetail, error)
	List(ctx context.Context, filter repository.EmployeeFilter, page repository.Page) ([]domain.Employee, int64, error)
	Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdateEmployeeRequest) (*domain.Employee, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
	BulkSetState(ctx context.Context, actor domain.Actor, ids []int64, state domain.EmployeeState) (int64, error)
	BulkRefreshProgress(ctx context.Context, actor domain.Actor, ids []int64) (int64, error)
	RefreshProgress(ctx context.Context, id int64) (int, error)
}

type employeeService struct {
	tx        repository.TxManager
	accounts  repository.AccountRepository
	employees repository.EmployeeRepository
	positions repository.PositionRepository
	tasks     repository.TaskRepository
	documents repository.DocumentRepository
	notifier  notification.Notifier
	progress  progressTracker
	opts      options
}

// NewEmployeeService создаёт новый экземпляр сервиса
func NewEmployeeService(
	tx repository.TxManager,
	accounts repository.AccountRepository,
	employees repository.EmployeeRepository,
	positions repository.PositionRepository,
	tasks repository.TaskRepository,
	documents repository.DocumentRepository,
	notifier notification.Notifier,
	opts ...Option,
) EmployeeService {
	o := buildOptions(opts)
	if o.taskTemplate == nil {
		o.taskTemplate = domain.DefaultTaskTemplate()
	}
	return &employeeService{
		tx:        tx,
		accounts:  accounts,
		employees: employees,
		positions: positions,
		tasks:     tasks,
		documents: documents,
		notifier:  notifier,
		progress:  progressTracker{tasks: tasks, employees: employees},
		opts:      o,
	}
}

// Register создаёт учётную запись и сотрудника, заводит задачи по шаблону
// и отправляет приветственное письмо. Ошибка отправки не отменяет регистрацию.
func (s *employeeService) Register(ctx context.Context, actor domain.Actor, req *dto.CreateEmployeeRequest) (*Registration, error) {
	if err := actor.Require(domain.PermManageEmployees); err != nil {
		return nil, err
	}

	acc := &domain.Account{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      domain.RoleEmployee,
	}
	emp := &domain.Employee{
		IdentityNumber: strings.TrimSpace(req.IdentityNumber),
		Phone:          strings.TrimSpace(req.Phone),
		EmergencyPhone: strings.TrimSpace(req.EmergencyPhone),
		Address:        strings.TrimSpace(req.Address),
		PositionID:     req.PositionID,
		Salary:         req.Salary,
		SupervisorID:   req.SupervisorID,
		State:          domain.EmployeeState(req.State),
		Notes:          strings.TrimSpace(req.Notes),
	}
	if emp.State == "" {
		emp.State = domain.EmployeePreEntry
	}
	if req.BloodType != "" {
		bt := domain.BloodType(req.BloodType)
		emp.BloodType = &bt
	}
	if actor.AccountID > 0 {
		createdBy := actor.AccountID
		emp.CreatedByID = &createdBy
	}

	var err error
	if emp.BirthDate, err = parseDate(req.BirthDate); err != nil {
		return nil, err
	}
	if emp.HireDate, err = parseDate(req.HireDate); err != nil {
		return nil, err
	}

	if err := s.validateAccount(ctx, acc, nil); err != nil {
		return nil, err
	}
	if err := s.validateEmployee(ctx, emp, nil); err != nil {
		return nil, err
	}

	credential, err := newCredential(s.opts.credentialSize)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), s.opts.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}
	acc.PasswordHash = string(hash)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accounts.Create(txCtx, acc); err != nil {
			return err
		}
		emp.AccountID = acc.ID
		if err := s.employees.Create(txCtx, emp); err != nil {
			return err
		}
		if err := s.tasks.CreateBatch(txCtx, s.opts.taskTemplate.Expand(emp.ID, emp.HireDate)); err != nil {
			return err
		}
		_, err := s.progress.refresh(txCtx, emp.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	// регистрация уже зафиксирована; ошибка повторного чтения только логируется
	created, err := s.employees.GetByID(ctx, emp.ID)
	if err != nil {
		s.opts.logger.Warn("failed to reload registered employee",
			slog.Int64("employee_id", emp.ID),
			slog.String("error", err.Error()),
		)
		emp.Account = acc
		created = emp
	}

	s.opts.logger.Info("employee registered",
		slog.Int64("employee_id", created.ID),
		slog.String("username", acc.Username),
		slog.String("template_version", s.opts.taskTemplate.Version),
	)

	result := &Registration{Employee: created}
	if err := s.sendWelcome(ctx, acc, created, credential); err != nil {
		s.opts.logger.Warn("welcome email not delivered",
			slog.Int64("employee_id", created.ID),
			slog.String("to", acc.Email),
			slog.String("error", err.Error()),
		)
		result.Warning = WelcomeNotSentWarning
	}
	return result, nil
}

func (s *employeeService) sendWelcome(ctx context.Context, acc *domain.Account, emp *domain.Employee, credential string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.notifyTimeout)
	defer cancel()

	msg := notification.Welcome{
		To:                  acc.Email,
		Username:            acc.Username,
		TemporaryCredential: credential,
		FirstName:           acc.FirstName,
		EmployeeName:        acc.FullName(),
		HireDate:            emp.HireDate,
	}
	if emp.Position != nil {
		msg.PositionTitle = emp.Position.Title
	}
	return s.notifier.SendWelcome(ctx, msg)
}

func (s *employeeService) GetDetail(ctx context.Context, id int64) (*EmployeeDetail, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &EmployeeDetail{
		Employee:         emp,
		Tasks:            tasks,
		Documents:        docs,
		TasksByState:     make(map[domain.TaskState]int64),
		DocumentsByState: make(map[domain.DocumentState]int64),
		Progress:         domain.ProgressOf(tasks),
	}
	for _, t := range tasks {
		detail.TasksByState[t.State]++
	}
	for _, d := range docs {
		detail.DocumentsByState[d.State]++
	}
	return detail, nil
}

func (s *employeeService) List(ctx context.Context, filter repository.EmployeeFilter, page repository.Page) ([]domain.Employee, int64, error) {
	return s.employees.List(ctx, filter, page)
}

// Update меняет данные сотрудника. Задачи при этом не создаются повторно.
func (s *employeeService) Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdateEmployeeRequest) (*domain.Employee, error) {
	if err := actor.Require(domain.PermManageEmployees); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acc := emp.Account
	if acc == nil {
		return nil, domain.ErrAccountNotFound
	}

	if req.Username != nil {
		acc.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		acc.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		acc.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		acc.LastName = strings.TrimSpace(*req.LastName)
	}

	if req.IdentityNumber != nil {
		emp.IdentityNumber = strings.TrimSpace(*req.IdentityNumber)
	}
	if req.Phone != nil {
		emp.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.EmergencyPhone != nil {
		emp.EmergencyPhone = strings.TrimSpace(*req.EmergencyPhone)
	}
	if req.BirthDate != nil {
		if emp.BirthDate, err = parseDate(*req.BirthDate); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		emp.Address = strings.TrimSpace(*req.Address)
	}
	if req.BloodType != nil {
		if *req.BloodType == "" {
			emp.BloodType = nil
		} else {
			bt := domain.BloodType(*req.BloodType)
			emp.BloodType = &bt
		}
	}
	if req.ClearPosition {
		emp.PositionID = nil
		emp.Position = nil
	} else if req.PositionID != nil {
		emp.PositionID = req.PositionID
		emp.Position = nil
	}
	if req.HireDate != nil {
		if emp.HireDate, err = parseDate(*req.HireDate); err != nil {
			return nil, err
		}
	}
	if req.Salary != nil {
		emp.Salary = req.Salary
	}
	if req.SupervisorID != nil {
		emp.SupervisorID = req.SupervisorID
		emp.Supervisor = nil
	}
	if req.State != nil {
		emp.State = domain.EmployeeState(*req.State)
	}
	if req.Notes != nil {
		emp.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := s.validateAccount(ctx, acc, &acc.ID); err != nil {
		return nil, err
	}
	if err := s.validateEmployee(ctx, emp, &emp.ID); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accounts.Update(txCtx, acc); err != nil {
			return err
		}
		return s.employees.Update(txCtx, emp)
	})
	if err != nil {
		return nil, err
	}

	return s.employees.GetByID(ctx, id)
}

// Delete удаляет сотрудника вместе с задачами и документами; учётная запись остаётся
func (s *employeeService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := actor.Require(domain.PermManageEmployees); err != nil {
		return err
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}
	s.opts.logger.Info("employee deleted", slog.Int64("employee_id", id))
	return nil
}

func (s *employeeService) BulkSetState(ctx context.Context, actor domain.Actor, ids []int64, state domain.EmployeeState) (int64, error) {
	if err := actor.Require(domain.PermManageEmployees); err != nil {
		return 0, err
	}
	if !state.Valid() {
		return 0, domain.ErrInvalidState
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}
	return s.employees.UpdateState(ctx, ids, state)
}

// BulkRefreshProgress пересчитывает прогресс выбранных сотрудников.
// Отсутствующие идентификаторы пропускаются.
func (s *employeeService) BulkRefreshProgress(ctx context.Context, actor domain.Actor, ids []int64) (int64, error) {
	if err := actor.Require(domain.PermManageEmployees); err != nil {
		return 0, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}

	var refreshed int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			if _, err := s.progress.refresh(txCtx, id); err != nil {
				if errors.Is(err, domain.ErrEmployeeNotFound) {
					continue
				}
				return err
			}
			refreshed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refreshed, nil
}

func (s *employeeService) RefreshProgress(ctx context.Context, id int64) (int, error) {
	return s.progress.refresh(ctx, id)
}

func (s *employeeService) validateAccount(ctx context.Context, acc *domain.Account, excludeID *int64) error {
	if err := acc.Validate(); err != nil {
		return err
	}

	exists, err := s.accounts.ExistsByUsername(ctx, acc.Username, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateUsername
	}

	exists, err = s.accounts.ExistsByEmail(ctx, acc.Email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *employeeService) validateEmployee(ctx context.Context, emp *domain.Employee, excludeID *int64) error {
	if err := emp.Validate(); err != nil {
		return err
	}

	exists, err := s.employees.ExistsByIdentityNumber(ctx, emp.IdentityNumber, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateIdentityNumber
	}

	if emp.PositionID != nil {
		if _, err := s.positions.GetByID(ctx, *emp.PositionID); err != nil {
			return err
		}
	}
	if emp.SupervisorID != nil {
		if _, err := s.accounts.GetByID(ctx, *emp.SupervisorID); err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return domain.ErrSupervisorNotFound
			}
			return err
		}
	}
	return nil
}
