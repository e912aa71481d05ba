package helpdesk

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/requestctx"
)

type Notifier interface {
	Create(ctx context.Context, n notifications.Notification) error
}

type Service struct {
	store    StoreAPI
	notifier Notifier
	now      func() time.Time
	Location *time.Location
}

func NewService(store StoreAPI, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier, now: time.Now, Location: time.UTC}
}

// CreateTicket opens a ticket on behalf of the session's employee.
func (s *Service) CreateTicket(ctx context.Context, session auth.Session, in NewTicket) (Ticket, error) {
	if session.EmployeeID == "" {
		return Ticket{}, ErrEmployeeProfileMissing
	}
	priority, err := NormalizePriority(in.Priority)
	if err != nil {
		return Ticket{}, err
	}
	in.Priority = priority
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	if in.Subject == "" {
		return Ticket{}, ErrSubjectRequired
	}

	if in.CategoryID != "" {
		ok, err := s.store.CategoryExists(ctx, session.OrganizationID, in.CategoryID)
		if err != nil {
			return Ticket{}, err
		}
		if !ok {
			return Ticket{}, ErrCategoryNotFound
		}
	}

	ticket, err := s.store.CreateTicket(ctx, session.OrganizationID, session.EmployeeID, in)
	if err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	s.recordHistory(ctx, HistoryEntry{
		TicketID:  ticket.ID,
		ActorID:   session.EmployeeID,
		Action:    ActionCreated,
		NewValue:  ticket.Status,
		CreatedAt: ticket.CreatedAt,
	})
	return s.decorate(ticket), nil
}

// ListTickets returns a page of tickets. Non-admin callers only see the
// tickets they raised.
func (s *Service) ListTickets(ctx context.Context, session auth.Session, filter TicketFilter) ([]Ticket, int, error) {
	filter, err := s.scopeFilter(session, filter)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := s.store.ListTickets(ctx, session.OrganizationID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountTickets(ctx, session.OrganizationID, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range tickets {
		tickets[i] = s.decorate(tickets[i])
	}
	return tickets, total, nil
}

func (s *Service) GetTicket(ctx context.Context, session auth.Session, ticketID string) (Ticket, error) {
	ticket, err := s.store.GetTicket(ctx, session.OrganizationID, ticketID)
	if err != nil {
		return Ticket{}, err
	}
	if !session.IsAdmin() && !CanView(ticket, session.EmployeeID) {
		return Ticket{}, ErrForbidden
	}
	return s.decorate(ticket), nil
}

// ChangeStatus moves a ticket to newStatus. The status update is the only
// write that can fail the call; history and notification failures are logged.
func (s *Service) ChangeStatus(ctx context.Context, session auth.Session, ticketID, newStatus string) (Ticket, error) {
	if !ValidStatus(newStatus) {
		return Ticket{}, ErrInvalidStatus
	}
	ticket, err := s.store.GetTicket(ctx, session.OrganizationID, ticketID)
	if err != nil {
		return Ticket{}, err
	}

	change, err := PlanStatusChange(ticket, newStatus, session.EmployeeID, s.now())
	if err != nil {
		return Ticket{}, err
	}
	if err := s.store.UpdateStatus(ctx, session.OrganizationID, ticketID, newStatus, change.Ticket.UpdatedAt); err != nil {
		return Ticket{}, err
	}
	s.apply(ctx, change)
	return s.decorate(change.Ticket), nil
}

// Assign sets or clears the assignee. A new assignee must be an active
// employee of the organization.
func (s *Service) Assign(ctx context.Context, session auth.Session, ticketID, assigneeID string) (Ticket, error) {
	assigneeID = strings.TrimSpace(assigneeID)
	ticket, err := s.store.GetTicket(ctx, session.OrganizationID, ticketID)
	if err != nil {
		return Ticket{}, err
	}
	if assigneeID != "" {
		ok, err := s.store.EmployeeActive(ctx, session.OrganizationID, assigneeID)
		if err != nil {
			return Ticket{}, err
		}
		if !ok {
			return Ticket{}, ErrAssigneeNotFound
		}
	}

	change := PlanAssignment(ticket, assigneeID, session.EmployeeID, s.now())
	if err := s.store.UpdateAssignee(ctx, session.OrganizationID, ticketID, change.Ticket.AssignedTo, change.Ticket.UpdatedAt); err != nil {
		return Ticket{}, err
	}
	s.apply(ctx, change)

	if refreshed, err := s.store.GetTicket(ctx, session.OrganizationID, ticketID); err == nil {
		return s.decorate(refreshed), nil
	}
	return s.decorate(change.Ticket), nil
}

func (s *Service) AddComment(ctx context.Context, session auth.Session, ticketID, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, ErrEmptyComment
	}
	if session.EmployeeID == "" {
		return Comment{}, ErrEmployeeProfileMissing
	}
	if _, err := s.GetTicket(ctx, session, ticketID); err != nil {
		return Comment{}, err
	}
	return s.store.InsertComment(ctx, ticketID, session.EmployeeID, body)
}

func (s *Service) ListComments(ctx context.Context, session auth.Session, ticketID string) ([]Comment, error) {
	if _, err := s.GetTicket(ctx, session, ticketID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, ticketID)
}

func (s *Service) ListHistory(ctx context.Context, session auth.Session, ticketID string) ([]HistoryEntry, error) {
	if _, err := s.GetTicket(ctx, session, ticketID); err != nil {
		return nil, err
	}
	return s.store.ListHistory(ctx, ticketID)
}

func (s *Service) ListCategories(ctx context.Context, orgID string) ([]Category, error) {
	return s.store.ListCategories(ctx, orgID)
}

func (s *Service) CreateCategory(ctx context.Context, orgID, name, icon string) (Category, error) {
	name = strings.TrimSpace(name)
	icon = strings.TrimSpace(icon)
	if icon == "" {
		icon = DefaultCategoryIcon
	}
	return s.store.CreateCategory(ctx, orgID, name, icon)
}

func (s *Service) DeleteCategory(ctx context.Context, orgID, categoryID string) error {
	return s.store.DeleteCategory(ctx, orgID, categoryID)
}

func (s *Service) Stats(ctx context.Context, session auth.Session) (Stats, error) {
	filter, err := s.scopeFilter(session, TicketFilter{})
	if err != nil {
		return Stats{}, err
	}
	return s.store.Stats(ctx, session.OrganizationID, filter, s.today())
}

// Export renders every ticket matching filter, ignoring paging.
func (s *Service) Export(ctx context.Context, session auth.Session, filter TicketFilter) ([]byte, string, error) {
	filter.Limit = 0
	filter.Offset = 0
	filter, err := s.scopeFilter(session, filter)
	if err != nil {
		return nil, "", err
	}
	tickets, err := s.store.ListTickets(ctx, session.OrganizationID, filter)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tickets, s.Location); err != nil {
		return nil, "", fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), ExportFilename(s.now().In(s.Location)), nil
}

func (s *Service) scopeFilter(session auth.Session, filter TicketFilter) (TicketFilter, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return filter, ErrInvalidStatus
	}
	if filter.Priority != "" && !ValidPriority(filter.Priority) {
		return filter, ErrInvalidPriority
	}
	if session.IsAdmin() {
		return filter, nil
	}
	if session.EmployeeID == "" {
		return filter, ErrEmployeeProfileMissing
	}
	filter.Participant = session.EmployeeID
	return filter, nil
}

func (s *Service) apply(ctx context.Context, change Change) {
	s.recordHistory(ctx, change.History)
	if change.Notification == nil || s.notifier == nil {
		return
	}
	if err := s.notifier.Create(ctx, *change.Notification); err != nil {
		requestctx.Logger(ctx).Warn("ticket notification failed", "ticketId", change.Ticket.ID, "employeeId", change.Notification.EmployeeID, "err", err)
	}
}

func (s *Service) recordHistory(ctx context.Context, entry HistoryEntry) {
	if err := s.store.InsertHistory(ctx, entry); err != nil {
		requestctx.Logger(ctx).Warn("ticket history insert failed", "ticketId", entry.TicketID, "action", entry.Action, "err", err)
	}
}

func (s *Service) decorate(t Ticket) Ticket {
	t.Overdue = IsOverdue(t, s.now().In(s.Location))
	return t
}

func (s *Service) today() time.Time {
	now := s.now().In(s.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.Location)
}
