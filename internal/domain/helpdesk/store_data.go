package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oapi-codegen/runtime/types"

	"hrdesk/internal/platform/querier"
)

const uniqueViolation = "23505"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const ticketSelect = `
  SELECT t.id, t.organization_id, t.ticket_number, t.subject, t.description,
         COALESCE(t.category_id::text, ''), COALESCE(c.name, ''), COALESCE(c.icon, ''),
         t.priority, t.status,
         COALESCE(t.created_by::text, ''), COALESCE(cb.first_name || ' ' || cb.last_name, ''),
         t.assigned_to::text, COALESCE(ab.first_name || ' ' || ab.last_name, ''),
         t.due_date, t.created_at, t.updated_at
  FROM tickets t
  LEFT JOIN helpdesk_categories c ON c.id = t.category_id
  LEFT JOIN employees cb ON cb.id = t.created_by
  LEFT JOIN employees ab ON ab.id = t.assigned_to`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	var due *time.Time
	err := row.Scan(&t.ID, &t.OrganizationID, &t.TicketNumber, &t.Subject, &t.Description,
		&t.CategoryID, &t.CategoryName, &t.CategoryIcon, &t.Priority, &t.Status,
		&t.CreatedBy, &t.CreatedByName, &t.AssignedTo, &t.AssignedToName,
		&due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Ticket{}, err
	}
	t.DueDate = toDate(due)
	return t, nil
}

func (s *Store) CreateTicket(ctx context.Context, orgID, createdBy string, in NewTicket) (Ticket, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tickets (organization_id, subject, description, category_id, priority, status, created_by, due_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, orgID, in.Subject, in.Description, nullIfEmpty(in.CategoryID), in.Priority, StatusOpen, createdBy, fromDate(in.DueDate)).Scan(&id)
	if err != nil {
		return Ticket{}, err
	}
	return s.GetTicket(ctx, orgID, id)
}

func (s *Store) GetTicket(ctx context.Context, orgID, ticketID string) (Ticket, error) {
	t, err := scanTicket(s.DB.QueryRow(ctx, ticketSelect+" WHERE t.organization_id = $1 AND t.id = $2", orgID, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, ErrTicketNotFound
	}
	return t, err
}

func (s *Store) ListTickets(ctx context.Context, orgID string, filter TicketFilter) ([]Ticket, error) {
	where, args := buildTicketWhere(orgID, filter)
	query := ticketSelect + where + " ORDER BY t.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CountTickets(ctx context.Context, orgID string, filter TicketFilter) (int, error) {
	where, args := buildTicketWhere(orgID, filter)
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tickets t
    LEFT JOIN employees cb ON cb.id = t.created_by`+where, args...).Scan(&total)
	return total, err
}

// buildTicketWhere expects the tickets table aliased t and the creator joined
// as cb; free text matches subject, number and creator name.
func buildTicketWhere(orgID string, filter TicketFilter) (string, []any) {
	where := " WHERE t.organization_id = $1"
	args := []any{orgID}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND t.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		where += fmt.Sprintf(" AND t.priority = $%d", len(args)+1)
		args = append(args, filter.Priority)
	}
	if filter.CreatedBy != "" {
		where += fmt.Sprintf(" AND t.created_by = $%d", len(args)+1)
		args = append(args, filter.CreatedBy)
	}
	if filter.AssignedTo != "" {
		where += fmt.Sprintf(" AND t.assigned_to = $%d", len(args)+1)
		args = append(args, filter.AssignedTo)
	}
	if filter.Participant != "" {
		pos := len(args) + 1
		where += fmt.Sprintf(" AND (t.created_by = $%d OR t.assigned_to = $%d)", pos, pos)
		args = append(args, filter.Participant)
	}
	if filter.Query != "" {
		pos := len(args) + 1
		where += fmt.Sprintf(" AND (t.subject ILIKE $%d OR t.ticket_number ILIKE $%d OR cb.first_name ILIKE $%d OR cb.last_name ILIKE $%d)", pos, pos, pos, pos)
		args = append(args, "%"+filter.Query+"%")
	}
	return where, args
}

func (s *Store) UpdateStatus(ctx context.Context, orgID, ticketID, status string, updatedAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tickets SET status = $1, updated_at = $2
    WHERE organization_id = $3 AND id = $4
  `, status, updatedAt, orgID, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) UpdateAssignee(ctx context.Context, orgID, ticketID string, assigneeID *string, updatedAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tickets SET assigned_to = $1, updated_at = $2
    WHERE organization_id = $3 AND id = $4
  `, assigneeID, updatedAt, orgID, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO ticket_history (ticket_id, user_id, action, old_value, new_value, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, entry.TicketID, nullIfEmpty(entry.ActorID), entry.Action, nullIfEmpty(entry.OldValue), nullIfEmpty(entry.NewValue), entry.CreatedAt)
	return err
}

func (s *Store) ListHistory(ctx context.Context, ticketID string) ([]HistoryEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT h.id, h.ticket_id, COALESCE(h.user_id::text, ''), COALESCE(e.first_name || ' ' || e.last_name, ''),
           h.action, COALESCE(h.old_value, ''), COALESCE(h.new_value, ''), h.created_at
    FROM ticket_history h
    LEFT JOIN employees e ON e.id = h.user_id
    WHERE h.ticket_id = $1
    ORDER BY h.created_at ASC
  `, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.TicketID, &h.ActorID, &h.ActorName, &h.Action, &h.OldValue, &h.NewValue, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) InsertComment(ctx context.Context, ticketID, employeeID, body string) (Comment, error) {
	c := Comment{TicketID: ticketID, EmployeeID: employeeID, Body: body}
	err := s.DB.QueryRow(ctx, `
    WITH inserted AS (
      INSERT INTO ticket_comments (ticket_id, user_id, comment_text)
      VALUES ($1,$2,$3)
      RETURNING id, user_id, created_at
    )
    SELECT i.id, COALESCE(e.first_name || ' ' || e.last_name, ''), i.created_at
    FROM inserted i
    LEFT JOIN employees e ON e.id = i.user_id
  `, ticketID, nullIfEmpty(employeeID), body).Scan(&c.ID, &c.AuthorName, &c.CreatedAt)
	return c, err
}

func (s *Store) ListComments(ctx context.Context, ticketID string) ([]Comment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.id, c.ticket_id, COALESCE(c.user_id::text, ''), COALESCE(e.first_name || ' ' || e.last_name, ''),
           c.comment_text, c.created_at
    FROM ticket_comments c
    LEFT JOIN employees e ON e.id = c.user_id
    WHERE c.ticket_id = $1
    ORDER BY c.created_at ASC
  `, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.EmployeeID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context, orgID string) ([]Category, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, organization_id, name, icon, created_at
    FROM helpdesk_categories
    WHERE organization_id = $1
    ORDER BY name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, orgID, name, icon string) (Category, error) {
	c := Category{OrganizationID: orgID, Name: name, Icon: icon}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO helpdesk_categories (organization_id, name, icon)
    VALUES ($1,$2,$3)
    RETURNING id, created_at
  `, orgID, name, icon).Scan(&c.ID, &c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return Category{}, ErrCategoryExists
	}
	return c, err
}

func (s *Store) DeleteCategory(ctx context.Context, orgID, categoryID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM helpdesk_categories WHERE organization_id = $1 AND id = $2", orgID, categoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Store) CategoryExists(ctx context.Context, orgID, categoryID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM helpdesk_categories WHERE organization_id = $1 AND id = $2", orgID, categoryID).Scan(&count)
	return count > 0, err
}

func (s *Store) EmployeeActive(ctx context.Context, orgID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE organization_id = $1 AND id = $2 AND is_active = true", orgID, employeeID).Scan(&count)
	return count > 0, err
}

func (s *Store) Stats(ctx context.Context, orgID string, filter TicketFilter, today time.Time) (Stats, error) {
	where, args := buildTicketWhere(orgID, TicketFilter{CreatedBy: filter.CreatedBy, AssignedTo: filter.AssignedTo, Participant: filter.Participant})
	args = append(args, today)
	var st Stats
	err := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE t.status = 'Open'),
           COUNT(1) FILTER (WHERE t.status = 'In Progress'),
           COUNT(1) FILTER (WHERE t.status = 'Resolved'),
           COUNT(1) FILTER (WHERE t.due_date < $%d::date AND t.status NOT IN ('Resolved', 'Closed'))
    FROM tickets t
    LEFT JOIN employees cb ON cb.id = t.created_by`+where, len(args)), args...).
		Scan(&st.Total, &st.Open, &st.InProgress, &st.Resolved, &st.Overdue)
	return st, err
}

func toDate(value *time.Time) *types.Date {
	if value == nil {
		return nil
	}
	return &types.Date{Time: *value}
}

func fromDate(value *types.Date) any {
	if value == nil {
		return nil
	}
	return value.Time
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
