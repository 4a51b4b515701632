package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/onboarding-api/internal/domain"
	"gorm.io/gorm"
)

// EmployeeFilter - условия выборки сотрудников
type EmployeeFilter struct {
	Search       string
	State        domain.EmployeeState
	DepartmentID *int64
	SupervisorID *int64
	HiredFrom    *time.Time
	HiredTo      *time.Time
}

// StateCount - количество записей в одном статусе
type StateCount struct {
	State string `json:"state"`
	Total int64  `json:"total"`
}

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter, page Page) ([]domain.Employee, int64, error)
	ListByState(ctx context.Context, state domain.EmployeeState) ([]domain.Employee, error)
	Recent(ctx context.Context, limit int) ([]domain.Employee, error)
	Update(ctx context.Context, emp *domain.Employee) error
	UpdateProgress(ctx context.Context, id int64, progress int) error
	UpdateState(ctx context.Context, ids []int64, state domain.EmployeeState) (int64, error)
	Delete(ctx context.Context, id int64) error
	ExistsByIdentityNumber(ctx context.Context, number string, excludeID *int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByState(ctx context.Context) ([]StateCount, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository создаёт новый экземпляр репозитория
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// editableColumns - поля, которые меняет отдел кадров; progress сюда не входит
var editableColumns = []string{
	"identity_number", "phone", "emergency_phone", "birth_date", "address", "blood_type",
	"position_id", "hire_date", "salary", "supervisor_id", "state", "notes", "updated_at",
}

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	return dbFrom(ctx, r.db).Omit("Account", "Position", "Supervisor", "Tasks", "Documents").Create(emp).Error
}

func (r *employeeRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Account").
		Preload("Position").
		Preload("Position.Department").
		Preload("Supervisor")
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.withRelations(dbFrom(ctx, r.db)).First(&emp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter, page Page) ([]domain.Employee, int64, error) {
	query := dbFrom(ctx, r.db).
		Model(&domain.Employee{}).
		Joins("JOIN accounts ON accounts.id = employees.account_id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(accounts.first_name) LIKE ? OR LOWER(accounts.last_name) LIKE ? OR LOWER(accounts.email) LIKE ? OR LOWER(employees.identity_number) LIKE ?",
			like, like, like, like,
		)
	}
	if filter.State != "" {
		query = query.Where("employees.state = ?", filter.State)
	}
	if filter.DepartmentID != nil {
		query = query.
			Joins("JOIN positions ON positions.id = employees.position_id").
			Where("positions.department_id = ?", *filter.DepartmentID)
	}
	if filter.SupervisorID != nil {
		query = query.Where("employees.supervisor_id = ?", *filter.SupervisorID)
	}
	if filter.HiredFrom != nil {
		query = query.Where("employees.hire_date >= ?", domain.DateOf(*filter.HiredFrom))
	}
	if filter.HiredTo != nil {
		query = query.Where("employees.hire_date <= ?", domain.DateOf(*filter.HiredTo))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []domain.Employee
	err := page.apply(r.withRelations(query)).
		Order("employees.created_at DESC, employees.id DESC").
		Find(&employees).Error
	return employees, total, err
}

func (r *employeeRepository) ListByState(ctx context.Context, state domain.EmployeeState) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.withRelations(dbFrom(ctx, r.db)).
		Where("state = ?", state).
		Order("hire_date ASC, id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) Recent(ctx context.Context, limit int) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.withRelations(dbFrom(ctx, r.db)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	return dbFrom(ctx, r.db).
		Model(emp).
		Select(editableColumns).
		Updates(emp).Error
}

// UpdateProgress пишет только производное поле progress
func (r *employeeRepository) UpdateProgress(ctx context.Context, id int64, progress int) error {
	result := dbFrom(ctx, r.db).
		Model(&domain.Employee{}).
		Where("id = ?", id).
		UpdateColumn("progress", progress)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) UpdateState(ctx context.Context, ids []int64, state domain.EmployeeState) (int64, error) {
	result := dbFrom(ctx, r.db).
		Model(&domain.Employee{}).
		Where("id IN ?", ids).
		Update("state", state)
	return result.RowsAffected, result.Error
}

// Delete удаляет сотрудника вместе с его документами и задачами
func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", id).Delete(&domain.Document{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&domain.Employee{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrEmployeeNotFound
		}
		return nil
	})
}

func (r *employeeRepository) ExistsByIdentityNumber(ctx context.Context, number string, excludeID *int64) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).Model(&domain.Employee{}).Where("identity_number = ?", number)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *employeeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&domain.Employee{}).Count(&count).Error
	return count, err
}

func (r *employeeRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&domain.Employee{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *employeeRepository) CountByState(ctx context.Context) ([]StateCount, error) {
	var rows []StateCount
	err := dbFrom(ctx, r.db).
		Model(&domain.Employee{}).
		Select("state, COUNT(*) AS total").
		Group("state").
		Order("state ASC").
		Scan(&rows).Error
	return rows, err
}
