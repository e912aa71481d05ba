package auth

// IsAdmin reports whether role may administer helpdesk and performance data
// for the whole organization.
func IsAdmin(role string) bool {
	switch role {
	case RoleAdmin, RoleSuperAdmin, RoleHR:
		return true
	}
	return false
}

// IsReviewer reports whether the session acts as reviewer of a review owned by
// reviewerID. Only admin and super_admin override; hr does not.
func IsReviewer(session Session, reviewerID string) bool {
	if session.EmployeeID != "" && session.EmployeeID == reviewerID {
		return true
	}
	return session.Role == RoleAdmin || session.Role == RoleSuperAdmin
}

// IsReviewee reports whether the session belongs to the reviewed employee.
func IsReviewee(session Session, employeeID string) bool {
	return session.EmployeeID != "" && session.EmployeeID == employeeID
}

// IsEditable gates reviewer edits: closed reviews are read-only.
func IsEditable(isReviewer bool, reviewStatus string) bool {
	return isReviewer && reviewStatus != "Completed" && reviewStatus != "Approved"
}

// CanRespond gates the employee response on a completed review.
func CanRespond(isEmployee bool, reviewStatus string) bool {
	return isEmployee && reviewStatus == "Completed"
}
