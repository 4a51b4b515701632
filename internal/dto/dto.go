package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout - формат дат в запросах и ответах
const DateLayout = "2006-01-02"

// CreateDepartmentRequest - запрос на создание отдела
type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,notblank,singleline,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateDepartmentRequest - запрос на обновление отдела
type UpdateDepartmentRequest struct {
	Name        *string `json:"name" validate:"omitnil,notblank,singleline,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CreatePositionRequest - запрос на создание должности
type CreatePositionRequest struct {
	Title        string           `json:"title" validate:"required,notblank,singleline,max=150"`
	DepartmentID int64            `json:"department_id" validate:"required,min=1"`
	Level        string           `json:"level" validate:"omitempty,oneof=junior semi_senior senior manager director executive"`
	Description  string           `json:"description" validate:"max=2000"`
	SalaryMin    *decimal.Decimal `json:"salary_min"`
	SalaryMax    *decimal.Decimal `json:"salary_max"`
	Active       *bool            `json:"active"`
}

// UpdatePositionRequest - запрос на обновление должности
type UpdatePositionRequest struct {
	Title        *string          `json:"title" validate:"omitnil,notblank,singleline,max=150"`
	DepartmentID *int64           `json:"department_id" validate:"omitempty,min=1"`
	Level        *string          `json:"level" validate:"omitempty,oneof=junior semi_senior senior manager director executive"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	SalaryMin    *decimal.Decimal `json:"salary_min"`
	SalaryMax    *decimal.Decimal `json:"salary_max"`
	Active       *bool            `json:"active"`
}

// CreateEmployeeRequest - запрос на регистрацию нового сотрудника
type CreateEmployeeRequest struct {
	Username       string           `json:"username" validate:"required,notblank,singleline,max=150"`
	Email          string           `json:"email" validate:"required,email,max=254"`
	FirstName      string           `json:"first_name" validate:"required,notblank,singleline,max=150"`
	LastName       string           `json:"last_name" validate:"required,notblank,singleline,max=150"`
	IdentityNumber string           `json:"identity_number" validate:"required,notblank,singleline,max=20"`
	Phone          string           `json:"phone" validate:"required,notblank,singleline,max=20"`
	EmergencyPhone string           `json:"emergency_phone" validate:"omitempty,max=20"`
	BirthDate      string           `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Address        string           `json:"address" validate:"max=2000"`
	BloodType      string           `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PositionID     *int64           `json:"position_id" validate:"omitempty,min=1"`
	HireDate       string           `json:"hire_date" validate:"required,datetime=2006-01-02"`
	Salary         *decimal.Decimal `json:"salary"`
	SupervisorID   *int64           `json:"supervisor_id" validate:"omitempty,min=1"`
	State          string           `json:"state" validate:"omitempty,oneof=pre_entry in_progress completed cancelled"`
	Notes          string           `json:"notes" validate:"max=5000"`
}

// UpdateEmployeeRequest - запрос на изменение данных сотрудника.
// Прогресс не редактируется: он всегда вычисляется по задачам.
type UpdateEmployeeRequest struct {
	Username       *string          `json:"username" validate:"omitnil,notblank,singleline,max=150"`
	Email          *string          `json:"email" validate:"omitempty,email,max=254"`
	FirstName      *string          `json:"first_name" validate:"omitnil,notblank,singleline,max=150"`
	LastName       *string          `json:"last_name" validate:"omitnil,notblank,singleline,max=150"`
	IdentityNumber *string          `json:"identity_number" validate:"omitnil,notblank,singleline,max=20"`
	Phone          *string          `json:"phone" validate:"omitnil,notblank,singleline,max=20"`
	EmergencyPhone *string          `json:"emergency_phone" validate:"omitempty,max=20"`
	BirthDate      *string          `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address        *string          `json:"address" validate:"omitempty,max=2000"`
	BloodType      *string          `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PositionID     *int64           `json:"position_id" validate:"omitempty,min=1"`
	ClearPosition  bool             `json:"clear_position"`
	HireDate       *string          `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Salary         *decimal.Decimal `json:"salary"`
	SupervisorID   *int64           `json:"supervisor_id" validate:"omitempty,min=1"`
	State          *string          `json:"state" validate:"omitempty,oneof=pre_entry in_progress completed cancelled"`
	Notes          *string          `json:"notes" validate:"omitempty,max=5000"`
}

// BulkEmployeeStateRequest - массовая смена стадии сотрудников
type BulkEmployeeStateRequest struct {
	IDs   []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
	State string  `json:"state" validate:"required,oneof=pre_entry in_progress completed cancelled"`
}

// BulkIDsRequest - список идентификаторов для массового действия
type BulkIDsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
}

// CreateTaskRequest - запрос на создание задачи вручную
type CreateTaskRequest struct {
	Title                string `json:"title" validate:"required,notblank,singleline,max=200"`
	Description          string `json:"description" validate:"required,min=1"`
	Responsible          string `json:"responsible" validate:"required,oneof=hr it supervisor finance employee legal other"`
	ResponsibleAccountID *int64 `json:"responsible_account_id" validate:"omitempty,min=1"`
	DueDate              string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Priority             string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	State                string `json:"state" validate:"omitempty,oneof=pending in_progress completed blocked cancelled"`
	Notes                string `json:"notes" validate:"max=5000"`
	OrderIndex           int    `json:"order_index" validate:"min=0"`
}

// UpdateTaskRequest - запрос на изменение задачи.
// Статус и заметки доступны исполнителям, остальные поля - только отделу кадров.
type UpdateTaskRequest struct {
	State                *string `json:"state" validate:"omitempty,oneof=pending in_progress completed blocked cancelled"`
	Notes                *string `json:"notes" validate:"omitempty,max=5000"`
	Title                *string `json:"title" validate:"omitnil,notblank,singleline,max=200"`
	Description          *string `json:"description" validate:"omitempty,min=1"`
	Responsible          *string `json:"responsible" validate:"omitempty,oneof=hr it supervisor finance employee legal other"`
	ResponsibleAccountID *int64  `json:"responsible_account_id" validate:"omitempty,min=1"`
	DueDate              *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority             *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	OrderIndex           *int    `json:"order_index" validate:"omitempty,min=0"`
}

// HasManagedFields сообщает, меняет ли запрос поля, доступные только отделу кадров
func (r *UpdateTaskRequest) HasManagedFields() bool {
	return r.Title != nil || r.Description != nil || r.Responsible != nil ||
		r.ResponsibleAccountID != nil || r.DueDate != nil || r.Priority != nil || r.OrderIndex != nil
}

// BulkTaskStateRequest - массовая смена статуса задач
type BulkTaskStateRequest struct {
	IDs   []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
	State string  `json:"state" validate:"required,oneof=pending in_progress completed blocked cancelled"`
}

// UploadDocumentRequest - поля формы загрузки документа
type UploadDocumentRequest struct {
	Type      string `validate:"required,oneof=contract identity nda degree medical_certificate recommendation_letter photo background_check other"`
	Name      string `validate:"required,notblank,singleline,max=200"`
	Mandatory bool
}

// ReviewDocumentRequest - решение по документу
type ReviewDocumentRequest struct {
	State    string  `json:"state" validate:"required,oneof=approved rejected in_review"`
	Comments *string `json:"comments" validate:"omitempty,max=5000"`
}

// BulkReviewRequest - массовая проверка документов
type BulkReviewRequest struct {
	IDs   []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
	State string  `json:"state" validate:"required,oneof=approved rejected in_review"`
}

// AccountResponse - краткие данные учётной записи
type AccountResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	ID             int64            `json:"id"`
	Account        AccountResponse  `json:"account"`
	IdentityNumber string           `json:"identity_number"`
	Phone          string           `json:"phone"`
	EmergencyPhone string           `json:"emergency_phone,omitempty"`
	BirthDate      string           `json:"birth_date"`
	Address        string           `json:"address,omitempty"`
	BloodType      *string          `json:"blood_type,omitempty"`
	PositionID     *int64           `json:"position_id"`
	PositionTitle  string           `json:"position_title,omitempty"`
	DepartmentName string           `json:"department_name,omitempty"`
	HireDate       string           `json:"hire_date"`
	Salary         *decimal.Decimal `json:"salary,omitempty"`
	Supervisor     *AccountResponse `json:"supervisor,omitempty"`
	State          string           `json:"state"`
	Progress       int              `json:"progress"`
	Notes          string           `json:"notes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// RegisterEmployeeResponse - ответ на регистрацию сотрудника
type RegisterEmployeeResponse struct {
	Employee EmployeeResponse `json:"employee"`
	Warning  string           `json:"warning,omitempty"`
}

// EmployeeDetailResponse - карточка сотрудника с задачами и документами
type EmployeeDetailResponse struct {
	EmployeeResponse
	Tasks            any              `json:"tasks"`
	Documents        any              `json:"documents"`
	TasksByState     map[string]int64 `json:"tasks_by_state"`
	DocumentsByState map[string]int64 `json:"documents_by_state"`
}

// ListResponse - страница списка
type ListResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// BulkResponse - результат массового действия
type BulkResponse struct {
	Updated int64 `json:"updated"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
