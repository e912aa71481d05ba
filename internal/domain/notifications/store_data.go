package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, n Notification) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_notifications (organization_id, employee_id, title, message, type, related_id)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, n.OrganizationID, n.EmployeeID, n.Title, n.Message, n.Type, nullIfEmpty(n.RelatedID)).Scan(&id)
	return id, err
}

func (s *Store) EmployeeEmail(ctx context.Context, orgID, employeeID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM employees WHERE organization_id = $1 AND id = $2", orgID, employeeID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (s *Store) List(ctx context.Context, orgID, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, organization_id, employee_id, title, message, type, COALESCE(related_id::text, ''), is_read, created_at
    FROM employee_notifications
    WHERE organization_id = $1 AND employee_id = $2 AND ($3 = false OR is_read = false)
    ORDER BY created_at DESC
    LIMIT $4 OFFSET $5
  `, orgID, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.OrganizationID, &n.EmployeeID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, orgID, employeeID string, unreadOnly bool) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employee_notifications
    WHERE organization_id = $1 AND employee_id = $2 AND ($3 = false OR is_read = false)
  `, orgID, employeeID, unreadOnly).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, orgID, employeeID, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_notifications SET is_read = true
    WHERE organization_id = $1 AND employee_id = $2 AND id = $3
  `, orgID, employeeID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
