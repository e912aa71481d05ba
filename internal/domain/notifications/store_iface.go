package notifications

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, n Notification) (string, error)
	EmployeeEmail(ctx context.Context, orgID, employeeID string) (string, error)
	List(ctx context.Context, orgID, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, orgID, employeeID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, orgID, employeeID, id string) (bool, error)
}
