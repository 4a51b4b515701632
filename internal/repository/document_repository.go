package repository

import (
	"context"
	"errors"

	"github.com/onboarding-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentFilter - условия выборки документов
type DocumentFilter struct {
	State      domain.DocumentState
	EmployeeID *int64
}

// DocumentRepository определяет интерфейс для работы с документами
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Document, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Document, error)
	List(ctx context.Context, filter DocumentFilter, page Page) ([]domain.Document, int64, error)
	RecentByState(ctx context.Context, state domain.DocumentState, limit int) ([]domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	CountByStates(ctx context.Context, states ...domain.DocumentState) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository создаёт новый экземпляр репозитория
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return dbFrom(ctx, r.db).Omit(clause.Associations).Create(doc).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var doc domain.Document
	err := dbFrom(ctx, r.db).First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Document, error) {
	var docs []domain.Document
	err := dbFrom(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&docs).Error
	return docs, err
}

func (r *documentRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.Document, error) {
	var docs []domain.Document
	err := dbFrom(ctx, r.db).
		Where("employee_id = ?", employeeID).
		Order("uploaded_at DESC, id DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter, page Page) ([]domain.Document, int64, error) {
	query := dbFrom(ctx, r.db).Model(&domain.Document{})
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []domain.Document
	err := page.apply(query).
		Preload("Employee.Account").
		Order("uploaded_at DESC, id DESC").
		Find(&docs).Error
	return docs, total, err
}

func (r *documentRepository) RecentByState(ctx context.Context, state domain.DocumentState, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := dbFrom(ctx, r.db).
		Preload("Employee.Account").
		Where("state = ?", state).
		Order("uploaded_at DESC, id DESC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return dbFrom(ctx, r.db).Omit(clause.Associations, "uploaded_at").Save(doc).Error
}

func (r *documentRepository) CountByStates(ctx context.Context, states ...domain.DocumentState) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&domain.Document{}).
		Where("state IN ?", states).
		Count(&count).Error
	return count, err
}
