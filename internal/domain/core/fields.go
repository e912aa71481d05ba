package core

import (
	"strings"

	"hrdesk/internal/domain/auth"
)

// FullName joins the name parts, tolerating either being blank.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// FilterEmployeeFields strips contact details the caller may not see.
// Admins, the employee and their manager keep the email.
func FilterEmployeeFields(emp *Employee, session auth.Session, isSelf, isManager bool) {
	if auth.IsAdmin(session.Role) || isSelf || isManager {
		return
	}
	emp.Email = ""
}
