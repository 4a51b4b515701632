package domain

import (
	"errors"
	"fmt"
)

// Категории ошибок; конкретные ошибки оборачивают одну из них
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("already exists")
	ErrForbidden   = errors.New("forbidden")
	ErrReferential = errors.New("still referenced")
)

// Определение бизнес-ошибок
var (
	ErrDepartmentNotFound = fmt.Errorf("department %w", ErrNotFound)
	ErrPositionNotFound   = fmt.Errorf("position %w", ErrNotFound)
	ErrEmployeeNotFound   = fmt.Errorf("employee %w", ErrNotFound)
	ErrAccountNotFound    = fmt.Errorf("account %w", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("task %w", ErrNotFound)
	ErrDocumentNotFound   = fmt.Errorf("document %w", ErrNotFound)
	ErrSupervisorNotFound = fmt.Errorf("supervisor account %w", ErrNotFound)

	ErrDuplicateDepartmentName = fmt.Errorf("department name %w", ErrConflict)
	ErrDuplicatePosition       = fmt.Errorf("position with this title in the department %w", ErrConflict)
	ErrDuplicateIdentityNumber = fmt.Errorf("identity number %w", ErrConflict)
	ErrDuplicateUsername       = fmt.Errorf("username %w", ErrConflict)
	ErrDuplicateEmail          = fmt.Errorf("email %w", ErrConflict)

	ErrSalaryRange         = fmt.Errorf("%w: salary_min cannot be greater than salary_max", ErrValidation)
	ErrInvalidState        = fmt.Errorf("%w: unknown state", ErrValidation)
	ErrInvalidReviewResult = fmt.Errorf("%w: review outcome must be approved, rejected or in_review", ErrValidation)
	ErrEmptySelection      = fmt.Errorf("%w: no ids given", ErrValidation)
	ErrInvalidTemplate     = fmt.Errorf("%w: invalid task template", ErrValidation)

	ErrMandatoryRequiresHR = fmt.Errorf("%w: only HR can mark a document as mandatory", ErrForbidden)

	ErrDepartmentHasPositions = fmt.Errorf("department has positions and is %w", ErrReferential)
)
