package helpdesk

import (
	"time"

	"github.com/oapi-codegen/runtime/types"
)

type Ticket struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organizationId"`
	TicketNumber   string      `json:"ticketNumber"`
	Subject        string      `json:"subject"`
	Description    string      `json:"description"`
	CategoryID     string      `json:"categoryId,omitempty"`
	CategoryName   string      `json:"categoryName,omitempty"`
	CategoryIcon   string      `json:"categoryIcon,omitempty"`
	Priority       string      `json:"priority"`
	Status         string      `json:"status"`
	CreatedBy      string      `json:"createdBy,omitempty"`
	CreatedByName  string      `json:"createdByName,omitempty"`
	AssignedTo     *string     `json:"assignedTo"`
	AssignedToName string      `json:"assignedToName,omitempty"`
	DueDate        *types.Date `json:"dueDate,omitempty"`
	Overdue        bool        `json:"overdue"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type Comment struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	EmployeeID string    `json:"employeeId,omitempty"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

type HistoryEntry struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	ActorID   string    `json:"actorId,omitempty"`
	ActorName string    `json:"actorName,omitempty"`
	Action    string    `json:"action"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Icon           string    `json:"icon"`
	CreatedAt      time.Time `json:"createdAt"`
}

type NewTicket struct {
	Subject     string
	Description string
	CategoryID  string
	Priority    string
	DueDate     *types.Date
}

// TicketFilter narrows ticket listings. Zero values mean "any"; Limit 0 means
// no limit, which export relies on.
type TicketFilter struct {
	Status      string
	Priority    string
	Query       string
	CreatedBy   string
	AssignedTo  string
	Participant string // created by or assigned to
	Limit       int
	Offset      int
}

type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Overdue    int `json:"overdue"`
}
