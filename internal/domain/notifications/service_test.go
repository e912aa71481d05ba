package notifications

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	items  []Notification
	emails map[string]string
}

func (f *fakeStore) Insert(_ context.Context, n Notification) (string, error) {
	f.items = append(f.items, n)
	return "n-1", nil
}

func (f *fakeStore) EmployeeEmail(_ context.Context, _, employeeID string) (string, error) {
	return f.emails[employeeID], nil
}

func (f *fakeStore) List(_ context.Context, _, _ string, _ bool, _, _ int) ([]Notification, error) {
	return f.items, nil
}

func (f *fakeStore) Count(_ context.Context, _, _ string, _ bool) (int, error) {
	return len(f.items), nil
}

func (f *fakeStore) MarkRead(_ context.Context, _, _, id string) (bool, error) {
	return id == "n-1", nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(_ context.Context, _, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func TestCreateDefaultsTypeAndMails(t *testing.T) {
	store := &fakeStore{emails: map[string]string{"e1": "e1@example.com"}}
	mailer := &recordingMailer{}
	svc := New(store, mailer)

	err := svc.Create(context.Background(), Notification{OrganizationID: "o1", EmployeeID: "e1", Title: "T", Message: "M"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(store.items) != 1 || store.items[0].Type != TypeInfo {
		t.Fatalf("unexpected stored notifications: %+v", store.items)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "e1@example.com" {
		t.Fatalf("expected one email, got %v", mailer.sent)
	}
}

func TestCreateIgnoresMailerFailure(t *testing.T) {
	store := &fakeStore{emails: map[string]string{"e1": "e1@example.com"}}
	svc := New(store, &recordingMailer{err: errors.New("smtp down")})

	if err := svc.Create(context.Background(), Notification{OrganizationID: "o1", EmployeeID: "e1", Title: "T"}); err != nil {
		t.Fatalf("mailer failure must not surface: %v", err)
	}
}

func TestCreateSkipsMissingRecipient(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, nil)
	if err := svc.Create(context.Background(), Notification{OrganizationID: "o1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.items) != 0 {
		t.Fatal("notification without recipient must not be stored")
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc := New(&fakeStore{}, nil)
	if err := svc.MarkRead(context.Background(), "o1", "e1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), "o1", "e1", "n-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
