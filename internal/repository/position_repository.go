package repository

import (
	"context"
	"errors"

	"github.com/onboarding-api/internal/domain"
	"gorm.io/gorm"
)

// PositionFilter - условия выборки должностей
type PositionFilter struct {
	DepartmentID *int64
	Active       *bool
}

// PositionSummary - должность с количеством сотрудников
type PositionSummary struct {
	domain.Position
	DepartmentName string `json:"department_name"`
	TotalEmployees int64  `json:"total_employees"`
}

// PositionRepository определяет интерфейс для работы с должностями
type PositionRepository interface {
	Create(ctx context.Context, pos *domain.Position) error
	GetByID(ctx context.Context, id int64) (*domain.Position, error)
	List(ctx context.Context, filter PositionFilter) ([]PositionSummary, error)
	Update(ctx context.Context, pos *domain.Position) error
	Delete(ctx context.Context, id int64) error
	ExistsByTitleAndDepartment(ctx context.Context, title string, departmentID int64, excludeID *int64) (bool, error)
}

type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository создаёт новый экземпляр репозитория
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, pos *domain.Position) error {
	return dbFrom(ctx, r.db).Omit("Department").Create(pos).Error
}

func (r *positionRepository) GetByID(ctx context.Context, id int64) (*domain.Position, error) {
	var pos domain.Position
	err := dbFrom(ctx, r.db).Preload("Department").First(&pos, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPositionNotFound
		}
		return nil, err
	}
	return &pos, nil
}

func (r *positionRepository) List(ctx context.Context, filter PositionFilter) ([]PositionSummary, error) {
	query := dbFrom(ctx, r.db).
		Table("positions").
		Select(`positions.*,
			departments.name AS department_name,
			COUNT(employees.id) AS total_employees`).
		Joins("JOIN departments ON departments.id = positions.department_id").
		Joins("LEFT JOIN employees ON employees.position_id = positions.id")

	if filter.DepartmentID != nil {
		query = query.Where("positions.department_id = ?", *filter.DepartmentID)
	}
	if filter.Active != nil {
		query = query.Where("positions.active = ?", *filter.Active)
	}

	var result []PositionSummary
	err := query.
		Group("positions.id, departments.name").
		Order("departments.name ASC, positions.title ASC").
		Scan(&result).Error
	return result, err
}

func (r *positionRepository) Update(ctx context.Context, pos *domain.Position) error {
	return dbFrom(ctx, r.db).
		Model(pos).
		Select("title", "department_id", "level", "description", "salary_min", "salary_max", "active").
		Updates(pos).Error
}

// Delete удаляет должность; сотрудники остаются без должности
func (r *positionRepository) Delete(ctx context.Context, id int64) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Employee{}).
			Where("position_id = ?", id).
			UpdateColumn("position_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&domain.Position{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrPositionNotFound
		}
		return nil
	})
}

func (r *positionRepository) ExistsByTitleAndDepartment(ctx context.Context, title string, departmentID int64, excludeID *int64) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).
		Model(&domain.Position{}).
		Where("title = ? AND department_id = ?", title, departmentID)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
