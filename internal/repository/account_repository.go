package repository

import (
	"context"
	"errors"

	"github.com/onboarding-api/internal/domain"
	"gorm.io/gorm"
)

// AccountRepository определяет интерфейс для работы с учётными записями
type AccountRepository interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Update(ctx context.Context, acc *domain.Account) error
	ExistsByUsername(ctx context.Context, username string, excludeID *int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *int64) (bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository создаёт новый экземпляр репозитория
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, acc *domain.Account) error {
	return dbFrom(ctx, r.db).Create(acc).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var acc domain.Account
	err := dbFrom(ctx, r.db).First(&acc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepository) Update(ctx context.Context, acc *domain.Account) error {
	return dbFrom(ctx, r.db).
		Model(acc).
		Select("username", "email", "first_name", "last_name").
		Updates(acc).Error
}

func (r *accountRepository) ExistsByUsername(ctx context.Context, username string, excludeID *int64) (bool, error) {
	return r.exists(ctx, "username = ?", username, excludeID)
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string, excludeID *int64) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER(?)", email, excludeID)
}

func (r *accountRepository) exists(ctx context.Context, cond string, value string, excludeID *int64) (bool, error) {
	var count int64
	query := dbFrom(ctx, r.db).Model(&domain.Account{}).Where(cond, value)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
