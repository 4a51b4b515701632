package domain

// Level - уровень должности
type Level string

const (
	LevelJunior     Level = "junior"
	LevelSemiSenior Level = "semi_senior"
	LevelSenior     Level = "senior"
	LevelManager    Level = "manager"
	LevelDirector   Level = "director"
	LevelExecutive  Level = "executive"
)

func (l Level) Valid() bool {
	switch l {
	case LevelJunior, LevelSemiSenior, LevelSenior, LevelManager, LevelDirector, LevelExecutive:
		return true
	}
	return false
}

// BloodType - группа крови сотрудника
type BloodType string

const (
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
)

func (b BloodType) Valid() bool {
	switch b {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}

// EmployeeState - стадия онбординга сотрудника
type EmployeeState string

const (
	EmployeePreEntry   EmployeeState = "pre_entry"
	EmployeeInProgress EmployeeState = "in_progress"
	EmployeeCompleted  EmployeeState = "completed"
	EmployeeCancelled  EmployeeState = "cancelled"
)

// EmployeeStates перечисляет стадии в порядке отображения
var EmployeeStates = []EmployeeState{EmployeePreEntry, EmployeeInProgress, EmployeeCompleted, EmployeeCancelled}

func (s EmployeeState) Valid() bool {
	switch s {
	case EmployeePreEntry, EmployeeInProgress, EmployeeCompleted, EmployeeCancelled:
		return true
	}
	return false
}

// DocumentType - вид документа
type DocumentType string

const (
	DocumentContract        DocumentType = "contract"
	DocumentIdentity        DocumentType = "identity"
	DocumentNDA             DocumentType = "nda"
	DocumentDegree          DocumentType = "degree"
	DocumentMedical         DocumentType = "medical_certificate"
	DocumentRecommendation  DocumentType = "recommendation_letter"
	DocumentPhoto           DocumentType = "photo"
	DocumentBackgroundCheck DocumentType = "background_check"
	DocumentOther           DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentContract, DocumentIdentity, DocumentNDA, DocumentDegree, DocumentMedical,
		DocumentRecommendation, DocumentPhoto, DocumentBackgroundCheck, DocumentOther:
		return true
	}
	return false
}

// DocumentState - статус проверки документа
type DocumentState string

const (
	DocumentPending  DocumentState = "pending"
	DocumentInReview DocumentState = "in_review"
	DocumentApproved DocumentState = "approved"
	DocumentRejected DocumentState = "rejected"
)

func (s DocumentState) Valid() bool {
	switch s {
	case DocumentPending, DocumentInReview, DocumentApproved, DocumentRejected:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус решением проверяющего
func (s DocumentState) Terminal() bool {
	return s == DocumentApproved || s == DocumentRejected
}

// Responsible - отдел или роль, отвечающие за задачу
type Responsible string

const (
	ResponsibleHR         Responsible = "hr"
	ResponsibleIT         Responsible = "it"
	ResponsibleSupervisor Responsible = "supervisor"
	ResponsibleFinance    Responsible = "finance"
	ResponsibleEmployee   Responsible = "employee"
	ResponsibleLegal      Responsible = "legal"
	ResponsibleOther      Responsible = "other"
)

func (r Responsible) Valid() bool {
	switch r {
	case ResponsibleHR, ResponsibleIT, ResponsibleSupervisor, ResponsibleFinance,
		ResponsibleEmployee, ResponsibleLegal, ResponsibleOther:
		return true
	}
	return false
}

// TaskState - статус задачи
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskInProgress TaskState = "in_progress"
	TaskCompleted  TaskState = "completed"
	TaskBlocked    TaskState = "blocked"
	TaskCancelled  TaskState = "cancelled"
)

func (s TaskState) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskBlocked, TaskCancelled:
		return true
	}
	return false
}

// Open сообщает, что по задаче ещё ожидается работа
func (s TaskState) Open() bool {
	return s == TaskPending || s == TaskInProgress
}

// Priority - приоритет задачи
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
