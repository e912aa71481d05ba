package notifications

import (
	"context"
	"errors"
	"strings"

	"hrdesk/internal/requestctx"
)

var ErrNotFound = errors.New("notification not found")

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Create stores the in-app notification and, when a mailer is configured,
// mirrors it by email. Email failures are logged only; delivery is best effort.
func (s *Service) Create(ctx context.Context, n Notification) error {
	if strings.TrimSpace(n.EmployeeID) == "" {
		return nil
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if _, err := s.store.Insert(ctx, n); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.EmployeeEmail(ctx, n.OrganizationID, n.EmployeeID)
	if err != nil {
		requestctx.Logger(ctx).Warn("notification email lookup failed", "employeeId", n.EmployeeID, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, n.Title, n.Message); err != nil {
		requestctx.Logger(ctx).Warn("notification email send failed", "employeeId", n.EmployeeID, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, orgID, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	items, err := s.store.List(ctx, orgID, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx, orgID, employeeID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) MarkRead(ctx context.Context, orgID, employeeID, id string) error {
	ok, err := s.store.MarkRead(ctx, orgID, employeeID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
