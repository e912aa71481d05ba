package helpdesk

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateTicket(ctx context.Context, orgID, createdBy string, in NewTicket) (Ticket, error)
	GetTicket(ctx context.Context, orgID, ticketID string) (Ticket, error)
	ListTickets(ctx context.Context, orgID string, filter TicketFilter) ([]Ticket, error)
	CountTickets(ctx context.Context, orgID string, filter TicketFilter) (int, error)
	UpdateStatus(ctx context.Context, orgID, ticketID, status string, updatedAt time.Time) error
	UpdateAssignee(ctx context.Context, orgID, ticketID string, assigneeID *string, updatedAt time.Time) error
	InsertHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, ticketID string) ([]HistoryEntry, error)
	InsertComment(ctx context.Context, ticketID, employeeID, body string) (Comment, error)
	ListComments(ctx context.Context, ticketID string) ([]Comment, error)
	ListCategories(ctx context.Context, orgID string) ([]Category, error)
	CreateCategory(ctx context.Context, orgID, name, icon string) (Category, error)
	DeleteCategory(ctx context.Context, orgID, categoryID string) error
	CategoryExists(ctx context.Context, orgID, categoryID string) (bool, error)
	EmployeeActive(ctx context.Context, orgID, employeeID string) (bool, error)
	Stats(ctx context.Context, orgID string, filter TicketFilter, today time.Time) (Stats, error)
}
