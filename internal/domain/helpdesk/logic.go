package helpdesk

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"hrdesk/internal/domain/notifications"
)

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}

func ValidPriority(priority string) bool {
	return slices.Contains(Priorities, priority)
}

// NormalizePriority defaults a blank priority to Medium.
func NormalizePriority(priority string) (string, error) {
	priority = strings.TrimSpace(priority)
	if priority == "" {
		return PriorityMedium, nil
	}
	if !ValidPriority(priority) {
		return "", ErrInvalidPriority
	}
	return priority, nil
}

// Change is the set of writes a ticket mutation produces: the updated ticket,
// exactly one history entry and at most one notification.
type Change struct {
	Ticket       Ticket
	History      HistoryEntry
	Notification *notifications.Notification
}

// PlanStatusChange computes a status transition. Every status may move to
// every status, the same one included, and each call yields one history entry.
// The creator is notified when the ticket has one.
func PlanStatusChange(t Ticket, newStatus, actorID string, now time.Time) (Change, error) {
	if !ValidStatus(newStatus) {
		return Change{}, ErrInvalidStatus
	}

	updated := t
	updated.Status = newStatus
	updated.UpdatedAt = now

	change := Change{
		Ticket: updated,
		History: HistoryEntry{
			TicketID:  t.ID,
			ActorID:   actorID,
			Action:    ActionStatusChange,
			OldValue:  t.Status,
			NewValue:  newStatus,
			CreatedAt: now,
		},
	}
	if t.CreatedBy != "" {
		change.Notification = &notifications.Notification{
			OrganizationID: t.OrganizationID,
			EmployeeID:     t.CreatedBy,
			Title:          notifications.TitleTicketUpdated,
			Message:        fmt.Sprintf("Your ticket #%s status has been changed to %s", t.TicketNumber, newStatus),
			Type:           notifications.TypeInfo,
			RelatedID:      t.ID,
		}
	}
	return change, nil
}

// PlanAssignment computes an assignee change. An empty assigneeID unassigns
// the ticket and notifies nobody.
func PlanAssignment(t Ticket, assigneeID, actorID string, now time.Time) Change {
	updated := t
	updated.UpdatedAt = now
	updated.AssignedToName = ""
	if assigneeID == "" {
		updated.AssignedTo = nil
	} else {
		id := assigneeID
		updated.AssignedTo = &id
	}

	change := Change{
		Ticket: updated,
		History: HistoryEntry{
			TicketID:  t.ID,
			ActorID:   actorID,
			Action:    ActionAssignment,
			OldValue:  derefString(t.AssignedTo),
			NewValue:  assigneeID,
			CreatedAt: now,
		},
	}
	if assigneeID != "" {
		change.Notification = &notifications.Notification{
			OrganizationID: t.OrganizationID,
			EmployeeID:     assigneeID,
			Title:          notifications.TitleTicketAssigned,
			Message:        fmt.Sprintf("You have been assigned ticket #%s", t.TicketNumber),
			Type:           notifications.TypeInfo,
			RelatedID:      t.ID,
		}
	}
	return change
}

// IsOverdue reports a ticket past its due date that is still being worked.
// The due date counts as a whole day.
func IsOverdue(t Ticket, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == StatusResolved || t.Status == StatusClosed {
		return false
	}
	today := now.Format(time.DateOnly)
	return t.DueDate.Format(time.DateOnly) < today
}

// CanView reports whether a non-admin employee is a party to the ticket.
func CanView(t Ticket, employeeID string) bool {
	if employeeID == "" {
		return false
	}
	return t.CreatedBy == employeeID || derefString(t.AssignedTo) == employeeID
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
