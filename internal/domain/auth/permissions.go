package auth

import "context"

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleHR         = "hr"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
)

const (
	PermHelpdeskRead      = "helpdesk.read"
	PermHelpdeskWrite     = "helpdesk.write"
	PermHelpdeskManage    = "helpdesk.manage"
	PermPerformanceRead   = "performance.read"
	PermPerformanceWrite  = "performance.write"
	PermPerformanceReview = "performance.review"
	PermPerformanceAdmin  = "performance.admin"
	PermDirectoryRead     = "directory.read"
	PermNotificationsRead = "notifications.read"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermHelpdeskRead,
	PermHelpdeskWrite,
	PermHelpdeskManage,
	PermPerformanceRead,
	PermPerformanceWrite,
	PermPerformanceReview,
	PermPerformanceAdmin,
	PermDirectoryRead,
	PermNotificationsRead,
	PermAuditRead,
}

var adminPermissions = []string{
	PermHelpdeskRead,
	PermHelpdeskWrite,
	PermHelpdeskManage,
	PermPerformanceRead,
	PermPerformanceWrite,
	PermPerformanceReview,
	PermPerformanceAdmin,
	PermDirectoryRead,
	PermNotificationsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermHelpdeskRead,
		PermHelpdeskWrite,
		PermPerformanceRead,
		PermPerformanceWrite,
		PermDirectoryRead,
		PermNotificationsRead,
	},
	RoleManager: {
		PermHelpdeskRead,
		PermHelpdeskWrite,
		PermPerformanceRead,
		PermPerformanceWrite,
		PermPerformanceReview,
		PermDirectoryRead,
		PermNotificationsRead,
	},
	RoleHR:         adminPermissions,
	RoleAdmin:      adminPermissions,
	RoleSuperAdmin: adminPermissions,
}

// StaticPermissions resolves permissions from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, candidate := range RolePermissions[role] {
		if candidate == permission {
			return true, nil
		}
	}
	return false, nil
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
