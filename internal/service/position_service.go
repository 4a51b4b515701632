package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/repository"
)

// PositionService определяет интерфейс бизнес-логики для должностей
type PositionService interface {
	Create(ctx context.Context, actor domain.Actor, req *dto.CreatePositionRequest) (*domain.Position, error)
	GetByID(ctx context.Context, id int64) (*domain.Position, error)
	List(ctx context.Context, filter repository.PositionFilter) ([]repository.PositionSummary, error)
	Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdatePositionRequest) (*domain.Position, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
}

type positionService struct {
	posRepo  repository.PositionRepository
	deptRepo repository.DepartmentRepository
}

// NewPositionService создаёт новый экземпляр сервиса
func NewPositionService(posRepo repository.PositionRepository, deptRepo repository.DepartmentRepository) PositionService {
	return &positionService{
		posRepo:  posRepo,
		deptRepo: deptRepo,
	}
}

func (s *positionService) Create(ctx context.Context, actor domain.Actor, req *dto.CreatePositionRequest) (*domain.Position, error) {
	if err := actor.Require(domain.PermManageOrg); err != nil {
		return nil, err
	}

	pos := &domain.Position{
		Title:        strings.TrimSpace(req.Title),
		DepartmentID: req.DepartmentID,
		Level:        domain.Level(req.Level),
		Description:  strings.TrimSpace(req.Description),
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		Active:       true,
	}
	if pos.Level == "" {
		pos.Level = domain.LevelJunior
	}
	if req.Active != nil {
		pos.Active = *req.Active
	}

	if err := s.validate(ctx, pos, nil); err != nil {
		return nil, err
	}

	if err := s.posRepo.Create(ctx, pos); err != nil {
		return nil, err
	}
	return s.posRepo.GetByID(ctx, pos.ID)
}

func (s *positionService) GetByID(ctx context.Context, id int64) (*domain.Position, error) {
	return s.posRepo.GetByID(ctx, id)
}

func (s *positionService) List(ctx context.Context, filter repository.PositionFilter) ([]repository.PositionSummary, error) {
	return s.posRepo.List(ctx, filter)
}

func (s *positionService) Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdatePositionRequest) (*domain.Position, error) {
	if err := actor.Require(domain.PermManageOrg); err != nil {
		return nil, err
	}

	pos, err := s.posRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		pos.Title = strings.TrimSpace(*req.Title)
	}
	if req.DepartmentID != nil {
		pos.DepartmentID = *req.DepartmentID
		pos.Department = nil
	}
	if req.Level != nil {
		pos.Level = domain.Level(*req.Level)
	}
	if req.Description != nil {
		pos.Description = strings.TrimSpace(*req.Description)
	}
	if req.SalaryMin != nil {
		pos.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		pos.SalaryMax = req.SalaryMax
	}
	if req.Active != nil {
		pos.Active = *req.Active
	}

	if err := s.validate(ctx, pos, &id); err != nil {
		return nil, err
	}

	if err := s.posRepo.Update(ctx, pos); err != nil {
		return nil, err
	}
	return s.posRepo.GetByID(ctx, id)
}

// Delete удаляет должность; сотрудники на ней остаются без должности
func (s *positionService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := actor.Require(domain.PermManageOrg); err != nil {
		return err
	}
	return s.posRepo.Delete(ctx, id)
}

// validate проверяет должность до записи в базу
func (s *positionService) validate(ctx context.Context, pos *domain.Position, excludeID *int64) error {
	if err := pos.Validate(); err != nil {
		return err
	}
	if !pos.Level.Valid() {
		return fmt.Errorf("%w: unknown level %q", domain.ErrValidation, pos.Level)
	}

	if _, err := s.deptRepo.GetByID(ctx, pos.DepartmentID); err != nil {
		return err
	}

	exists, err := s.posRepo.ExistsByTitleAndDepartment(ctx, pos.Title, pos.DepartmentID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicatePosition
	}
	return nil
}
