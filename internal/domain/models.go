package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Department представляет отдел компании
type Department struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Positions []Position `json:"positions,omitempty" gorm:"foreignKey:DepartmentID"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return "departments"
}

// Validate проверяет название отдела
func (d *Department) Validate() error {
	return RequireLine("name", d.Name)
}

// Position представляет должность внутри отдела
type Position struct {
	ID           int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string           `json:"title" gorm:"type:varchar(150);not null;uniqueIndex:idx_position_title_department"`
	DepartmentID int64            `json:"department_id" gorm:"not null;index;uniqueIndex:idx_position_title_department"`
	Level        Level            `json:"level" gorm:"type:varchar(20);not null;default:junior"`
	Description  string           `json:"description" gorm:"type:text"`
	SalaryMin    *decimal.Decimal `json:"salary_min" gorm:"type:numeric(10,2)"`
	SalaryMax    *decimal.Decimal `json:"salary_max" gorm:"type:numeric(10,2)"`
	Active       bool             `json:"active" gorm:"not null"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`

	Department *Department `json:"-" gorm:"foreignKey:DepartmentID"`
}

// TableName задаёт имя таблицы для GORM
func (Position) TableName() string {
	return "positions"
}

// Validate проверяет название должности и что вилка зарплат не перевёрнута
func (p *Position) Validate() error {
	if err := RequireLine("title", p.Title); err != nil {
		return err
	}
	if p.SalaryMin != nil && p.SalaryMax != nil && p.SalaryMin.GreaterThan(*p.SalaryMax) {
		return ErrSalaryRange
	}
	return nil
}

// Account - учётная запись, через которую сотрудник входит в систему
type Account struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150);not null"`
	LastName     string    `json:"last_name" gorm:"type:varchar(150);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:employee"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Account) TableName() string {
	return "accounts"
}

// Validate проверяет обязательные поля учётной записи
func (a *Account) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"username", a.Username},
		{"email", a.Email},
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
	} {
		if err := RequireLine(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// FullName возвращает имя и фамилию, либо логин, если они пустые
func (a *Account) FullName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	}
	return a.Username
}

// Employee представляет сотрудника в процессе онбординга
type Employee struct {
	ID             int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID      int64            `json:"account_id" gorm:"not null;uniqueIndex"`
	IdentityNumber string           `json:"identity_number" gorm:"type:varchar(20);not null;uniqueIndex"`
	Phone          string           `json:"phone" gorm:"type:varchar(20);not null"`
	EmergencyPhone string           `json:"emergency_phone" gorm:"type:varchar(20)"`
	BirthDate      time.Time        `json:"birth_date" gorm:"type:date;not null"`
	Address        string           `json:"address" gorm:"type:text"`
	BloodType      *BloodType       `json:"blood_type" gorm:"type:varchar(3)"`
	PositionID     *int64           `json:"position_id" gorm:"index"`
	HireDate       time.Time        `json:"hire_date" gorm:"type:date;not null"`
	Salary         *decimal.Decimal `json:"salary" gorm:"type:numeric(10,2)"`
	SupervisorID   *int64           `json:"supervisor_id" gorm:"index"`
	State          EmployeeState    `json:"state" gorm:"type:varchar(20);not null;default:pre_entry;index"`
	Progress       int              `json:"progress" gorm:"not null;default:0"`
	Notes          string           `json:"notes" gorm:"type:text"`
	CreatedByID    *int64           `json:"created_by_id"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"autoUpdateTime"`

	Account    *Account   `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Position   *Position  `json:"position,omitempty" gorm:"foreignKey:PositionID"`
	Supervisor *Account   `json:"supervisor,omitempty" gorm:"foreignKey:SupervisorID"`
	Tasks      []Task     `json:"tasks,omitempty" gorm:"foreignKey:EmployeeID"`
	Documents  []Document `json:"documents,omitempty" gorm:"foreignKey:EmployeeID"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// Validate проверяет поля сотрудника, не требующие обращения к базе
func (e *Employee) Validate() error {
	if err := RequireLine("identity_number", e.IdentityNumber); err != nil {
		return err
	}
	if err := RequireLine("phone", e.Phone); err != nil {
		return err
	}
	if err := CheckLine("emergency_phone", e.EmergencyPhone); err != nil {
		return err
	}
	if !e.State.Valid() {
		return ErrInvalidState
	}
	if e.BloodType != nil && !e.BloodType.Valid() {
		return fmt.Errorf("%w: unknown blood type %q", ErrValidation, *e.BloodType)
	}
	if e.Salary != nil && e.Salary.IsNegative() {
		return fmt.Errorf("%w: salary cannot be negative", ErrValidation)
	}
	return nil
}

// Document - документ сотрудника, загруженный для проверки
type Document struct {
	ID         int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID int64         `json:"employee_id" gorm:"not null;index"`
	Type       DocumentType  `json:"type" gorm:"type:varchar(30);not null"`
	Name       string        `json:"name" gorm:"type:varchar(200);not null"`
	FileRef    string        `json:"file_ref" gorm:"type:varchar(300);not null"`
	State      DocumentState `json:"state" gorm:"type:varchar(20);not null;default:pending;index"`
	Mandatory  bool          `json:"mandatory" gorm:"not null;default:false"`
	ReviewerID *int64        `json:"reviewer_id"`
	ReviewedAt *time.Time    `json:"reviewed_at"`
	Comments   string        `json:"comments" gorm:"type:text"`
	UploadedAt time.Time     `json:"uploaded_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Employee *Employee `json:"-" gorm:"foreignKey:EmployeeID"`
}

// TableName задаёт имя таблицы для GORM
func (Document) TableName() string {
	return "documents"
}

// Task - задача чек-листа онбординга
type Task struct {
	ID                   int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID           int64       `json:"employee_id" gorm:"not null;index"`
	Title                string      `json:"title" gorm:"type:varchar(200);not null"`
	Description          string      `json:"description" gorm:"type:text;not null"`
	Responsible          Responsible `json:"responsible" gorm:"type:varchar(20);not null;index"`
	ResponsibleAccountID *int64      `json:"responsible_account_id"`
	DueDate              time.Time   `json:"due_date" gorm:"type:date;not null"`
	StartDate            *time.Time  `json:"start_date" gorm:"type:date"`
	CompletionDate       *time.Time  `json:"completion_date" gorm:"type:date"`
	State                TaskState   `json:"state" gorm:"type:varchar(20);not null;default:pending;index"`
	Priority             Priority    `json:"priority" gorm:"type:varchar(10);not null;default:medium"`
	AutoGenerated        bool        `json:"auto_generated" gorm:"not null;default:false"`
	OrderIndex           int         `json:"order_index" gorm:"not null;default:0"`
	Notes                string      `json:"notes" gorm:"type:text"`
	CompletedByID        *int64      `json:"completed_by_id"`
	CreatedAt            time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time   `json:"updated_at" gorm:"autoUpdateTime"`

	Employee *Employee `json:"-" gorm:"foreignKey:EmployeeID"`
}

// TableName задаёт имя таблицы для GORM
func (Task) TableName() string {
	return "tasks"
}
