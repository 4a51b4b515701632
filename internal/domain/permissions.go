package domain

// Role - группа прав учётной записи
type Role string

const (
	RoleHR         Role = "hr"
	RoleSupervisor Role = "supervisor"
	RoleIT         Role = "it"
	RoleEmployee   Role = "employee"
)

func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permission - отдельное право
type Permission string

const (
	PermManageOrg        Permission = "manage_org"
	PermManageEmployees  Permission = "manage_employees"
	PermManageTasks      Permission = "manage_tasks"
	PermChangeTasks      Permission = "change_tasks"
	PermUploadDocuments  Permission = "upload_documents"
	PermApproveDocuments Permission = "approve_documents"
	PermViewDashboard    Permission = "view_dashboard"
)

var rolePermissions = map[Role][]Permission{
	RoleHR: {
		PermManageOrg,
		PermManageEmployees,
		PermManageTasks,
		PermChangeTasks,
		PermUploadDocuments,
		PermApproveDocuments,
		PermViewDashboard,
	},
	RoleSupervisor: {
		PermChangeTasks,
		PermUploadDocuments,
		PermViewDashboard,
	},
	RoleIT: {
		PermChangeTasks,
		PermUploadDocuments,
	},
	RoleEmployee: {
		PermUploadDocuments,
	},
}

// Actor - пользователь, от имени которого выполняется операция
type Actor struct {
	AccountID int64
	Role      Role
}

// IsHR сообщает, относится ли пользователь к отделу кадров
func (a Actor) IsHR() bool {
	return a.Role == RoleHR
}

// Can проверяет наличие права у роли пользователя
func (a Actor) Can(p Permission) bool {
	for _, granted := range rolePermissions[a.Role] {
		if granted == p {
			return true
		}
	}
	return false
}

// Require возвращает ErrForbidden, если права нет
func (a Actor) Require(p Permission) error {
	if !a.Can(p) {
		return &PermissionError{Permission: p, Role: a.Role}
	}
	return nil
}

// PermissionError описывает отказ в доступе
type PermissionError struct {
	Permission Permission
	Role       Role
}

func (e *PermissionError) Error() string {
	return "role " + string(e.Role) + " lacks permission " + string(e.Permission)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}
