package repository

import (
	"context"
	"errors"

	"github.com/onboarding-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentSummary - отдел с количеством должностей и сотрудников
type DepartmentSummary struct {
	domain.Department
	TotalPositions int64 `json:"total_positions"`
	TotalEmployees int64 `json:"total_employees"`
}

// DepartmentRepository определяет интерфейс для работы с отделами
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]DepartmentSummary, error)
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string, excludeID *int64) (bool, error)
	CountPositions(ctx context.Context, id int64) (int64, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository создаёт новый экземпляр репозитория
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	return dbFrom(ctx, r.db).Create(dept).Error
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	err := dbFrom(ctx, r.db).
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("title ASC")
		}).
		First(&dept, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]DepartmentSummary, error) {
	var result []DepartmentSummary
	err := dbFrom(ctx, r.db).
		Table("departments").
		Select(`departments.*,
			COUNT(DISTINCT positions.id) AS total_positions,
			COUNT(DISTINCT employees.id) AS total_employees`).
		Joins("LEFT JOIN positions ON positions.department_id = departments.id").
		Joins("LEFT JOIN employees ON employees.position_id = positions.id").
		Group("departments.id").
		Order("departments.name ASC").
		Scan(&result).Error
	return result, err
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	return dbFrom(ctx, r.db).
		Model(dept).
		Select("name", "description").
		Updates(dept).Error
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	result := dbFrom(ctx, r.db).Delete(&domain.Department{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

func (r *departmentRepository) ExistsByName(ctx context.Context, name string, excludeID *int64) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).Model(&domain.Department{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *departmentRepository) CountPositions(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&domain.Position{}).
		Where("department_id = ?", id).
		Count(&count).Error
	return count, err
}
