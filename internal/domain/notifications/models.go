package notifications

import "time"

// Notification is an in-app message for one employee. RelatedID points at the
// ticket, goal or review that triggered it.
type Notification struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	EmployeeID     string    `json:"employeeId"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Type           string    `json:"type"`
	RelatedID      string    `json:"relatedId,omitempty"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}
