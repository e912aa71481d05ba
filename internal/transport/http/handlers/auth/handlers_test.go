package authhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/transport/http/api"
)

type fakeSessions struct {
	loggedOut []auth.Session
	loginErr  error
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (auth.LoginResult, error) {
	if f.loginErr != nil {
		return auth.LoginResult{}, f.loginErr
	}
	if email != "hr@example.com" || password != "Secret123" {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	return auth.LoginResult{Token: "tok", Session: auth.Session{UserID: "u1", OrganizationID: "o1", Role: auth.RoleHR}}, nil
}

func (f *fakeSessions) Logout(_ context.Context, session auth.Session) error {
	f.loggedOut = append(f.loggedOut, session)
	return nil
}

type fakeProfiles struct{}

func (fakeProfiles) GetEmployee(_ context.Context, _, employeeID string) (core.Employee, error) {
	return core.Employee{ID: employeeID, FirstName: "Ada", LastName: "Lovelace"}, nil
}

type recordedEvent struct{ action string }

type fakeAudit struct{ events []recordedEvent }

func (f *fakeAudit) Record(_ context.Context, _, _, action, _, _, _, _ string, _, _ any) error {
	f.events = append(f.events, recordedEvent{action: action})
	return nil
}

func router(h *Handler, session *auth.Session) http.Handler {
	r := chi.NewRouter()
	if session != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithSession(req.Context(), *session)))
			})
		})
	}
	h.RegisterPublicRoutes(r)
	h.RegisterRoutes(r)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		loginErr error
		wantCode int
		wantErr  string
	}{
		{name: "valid", body: `{"email":"hr@example.com","password":"Secret123"}`, wantCode: http.StatusOK},
		{name: "wrong password", body: `{"email":"hr@example.com","password":"nope"}`, wantCode: http.StatusUnauthorized, wantErr: "invalid_credentials"},
		{name: "missing fields", body: `{"email":""}`, wantCode: http.StatusBadRequest, wantErr: "validation_error"},
		{name: "malformed", body: `{`, wantCode: http.StatusBadRequest, wantErr: "invalid_payload"},
		{name: "store failure", body: `{"email":"hr@example.com","password":"Secret123"}`, loginErr: errors.New("db down"), wantCode: http.StatusInternalServerError, wantErr: "session_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auditLog := &fakeAudit{}
			h := NewHandler(&fakeSessions{loginErr: tc.loginErr}, fakeProfiles{}, auditLog)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			router(h, nil).ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			env := decode(t, rec)
			if tc.wantErr != "" && (env.Error == nil || env.Error.Code != tc.wantErr) {
				t.Fatalf("expected error %q, got %+v", tc.wantErr, env.Error)
			}
			if tc.wantCode == http.StatusOK && len(auditLog.events) != 1 {
				t.Fatalf("expected login audit event, got %+v", auditLog.events)
			}
		})
	}
}

func TestHandleLogoutAndMe(t *testing.T) {
	sessions := &fakeSessions{}
	session := auth.Session{UserID: "u1", OrganizationID: "o1", EmployeeID: "e1", Role: auth.RoleEmployee, SessionID: "s1"}
	h := NewHandler(sessions, fakeProfiles{}, nil)

	rec := httptest.NewRecorder()
	router(h, &session).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := decode(t, rec).Data.(map[string]any)
	if data["isAdmin"] != false || data["employee"] == nil {
		t.Fatalf("unexpected me payload %+v", data)
	}

	rec = httptest.NewRecorder()
	router(h, &session).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if rec.Code != http.StatusOK || len(sessions.loggedOut) != 1 {
		t.Fatalf("expected logout, got %d %+v", rec.Code, sessions.loggedOut)
	}

	rec = httptest.NewRecorder()
	router(h, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}
