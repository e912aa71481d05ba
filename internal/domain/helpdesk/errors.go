package helpdesk

import "errors"

var (
	ErrInvalidStatus          = errors.New("invalid ticket status")
	ErrInvalidPriority        = errors.New("invalid ticket priority")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryExists         = errors.New("category already exists")
	ErrEmployeeProfileMissing = errors.New("employee profile not found")
	ErrAssigneeNotFound       = errors.New("assignee is not an active employee")
	ErrForbidden              = errors.New("not allowed to access ticket")
	ErrEmptyComment           = errors.New("comment text is required")
	ErrSubjectRequired        = errors.New("ticket subject is required")
)
