package service

import (
	"context"
	"strings"

	"github.com/onboarding-api/internal/domain"
	"github.com/onboarding-api/internal/dto"
	"github.com/onboarding-api/internal/repository"
)

// DepartmentService определяет интерфейс бизнес-логики для отделов
type DepartmentService interface {
	Create(ctx context.Context, actor domain.Actor, req *dto.CreateDepartmentRequest) (*domain.Department, error)
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]repository.DepartmentSummary, error)
	Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdateDepartmentRequest) (*domain.Department, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
}

type departmentService struct {
	deptRepo repository.DepartmentRepository
}

// NewDepartmentService создаёт новый экземпляр сервиса
func NewDepartmentService(deptRepo repository.DepartmentRepository) DepartmentService {
	return &departmentService{deptRepo: deptRepo}
}

func (s *departmentService) Create(ctx context.Context, actor domain.Actor, req *dto.CreateDepartmentRequest) (*domain.Department, error) {
	if err := actor.Require(domain.PermManageOrg); err != nil {
		return nil, err
	}

	dept := &domain.Department{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := dept.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.deptRepo.ExistsByName(ctx, dept.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateDepartmentName
	}

	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	return s.deptRepo.GetByID(ctx, id)
}

func (s *departmentService) List(ctx context.Context) ([]repository.DepartmentSummary, error) {
	return s.deptRepo.List(ctx)
}

func (s *departmentService) Update(ctx context.Context, actor domain.Actor, id int64, req *dto.UpdateDepartmentRequest) (*domain.Department, error) {
	if err := actor.Require(domain.PermManageOrg); err != nil {
		return nil, err
	}

	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dept.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		dept.Description = strings.TrimSpace(*req.Description)
	}
	if err := dept.Validate(); err != nil {
		return nil, err
	}

	if req.Name != nil {
		exists, err := s.deptRepo.ExistsByName(ctx, dept.Name, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateDepartmentName
		}
	}

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete удаляет отдел, только если в нём не осталось должностей
func (s *departmentService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := actor.Require(domain.PermManageOrg); err != nil {
		return err
	}

	if _, err := s.deptRepo.GetByID(ctx, id); err != nil {
		return err
	}

	positions, err := s.deptRepo.CountPositions(ctx, id)
	if err != nil {
		return err
	}
	if positions > 0 {
		return domain.ErrDepartmentHasPositions
	}

	return s.deptRepo.Delete(ctx, id)
}
