package repository

import (
	"context"
	"errors"
	"time"

	"github.com/onboarding-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter - условия выборки задач
type TaskFilter struct {
	State       domain.TaskState
	Responsible domain.Responsible
	EmployeeID  *int64
	DueFrom     *time.Time
	DueTo       *time.Time
}

// priorityRank сортирует приоритеты по важности, а не по алфавиту
const priorityRank = `CASE tasks.priority
	WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END`

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	CreateBatch(ctx context.Context, tasks []domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Task, error)
	GetManyForUpdate(ctx context.Context, ids []int64) ([]domain.Task, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Task, error)
	List(ctx context.Context, filter TaskFilter, page Page) ([]domain.Task, int64, error)
	DueSoon(ctx context.Context, until time.Time, limit int) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	CountForEmployee(ctx context.Context, employeeID int64) (total, completed int64, err error)
	CountByStates(ctx context.Context, states ...domain.TaskState) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository создаёт новый экземпляр репозитория
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return dbFrom(ctx, r.db).Omit(clause.Associations).Create(task).Error
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Omit(clause.Associations).Create(&tasks).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	err := dbFrom(ctx, r.db).First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetForUpdate читает задачу и блокирует её до конца транзакции
func (r *taskRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	err := lockedFrom(ctx, r.db).First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetManyForUpdate читает задачи и блокирует их до конца транзакции
func (r *taskRepository) GetManyForUpdate(ctx context.Context, ids []int64) ([]domain.Task, error) {
	var tasks []domain.Task
	err := lockedFrom(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	err := dbFrom(ctx, r.db).
		Where("employee_id = ?", employeeID).
		Order("order_index ASC, due_date ASC, id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter, page Page) ([]domain.Task, int64, error) {
	query := dbFrom(ctx, r.db).Model(&domain.Task{})

	if filter.State != "" {
		query = query.Where("tasks.state = ?", filter.State)
	}
	if filter.Responsible != "" {
		query = query.Where("tasks.responsible = ?", filter.Responsible)
	}
	if filter.EmployeeID != nil {
		query = query.Where("tasks.employee_id = ?", *filter.EmployeeID)
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", domain.DateOf(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date <= ?", domain.DateOf(*filter.DueTo))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []domain.Task
	err := page.apply(query).
		Preload("Employee.Account").
		Order("tasks.due_date ASC").
		Order(priorityRank + " DESC").
		Order("tasks.id ASC").
		Find(&tasks).Error
	return tasks, total, err
}

// DueSoon возвращает открытые задачи со сроком не позже until
func (r *taskRepository) DueSoon(ctx context.Context, until time.Time, limit int) ([]domain.Task, error) {
	var tasks []domain.Task
	err := dbFrom(ctx, r.db).
		Preload("Employee.Account").
		Where("due_date <= ? AND state IN ?", domain.DateOf(until),
			[]domain.TaskState{domain.TaskPending, domain.TaskInProgress}).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return dbFrom(ctx, r.db).Omit(clause.Associations, "created_at").Save(task).Error
}

func (r *taskRepository) CountForEmployee(ctx context.Context, employeeID int64) (total, completed int64, err error) {
	var row struct {
		Total     int64
		Completed int64
	}
	err = dbFrom(ctx, r.db).
		Model(&domain.Task{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN state = ? THEN 1 ELSE 0 END), 0) AS completed", domain.TaskCompleted).
		Where("employee_id = ?", employeeID).
		Scan(&row).Error
	return row.Total, row.Completed, err
}

func (r *taskRepository) CountByStates(ctx context.Context, states ...domain.TaskState) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&domain.Task{}).
		Where("state IN ?", states).
		Count(&count).Error
	return count, err
}
