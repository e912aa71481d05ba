package authhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type SessionService interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Logout(ctx context.Context, session auth.Session) error
}

type ProfileReader interface {
	GetEmployee(ctx context.Context, orgID, employeeID string) (core.Employee, error)
}

type Handler struct {
	Service  SessionService
	Profiles ProfileReader
	Audit    audit.Recorder
}

func NewHandler(service SessionService, profiles ProfileReader, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Profiles: profiles, Audit: auditSvc}
}

// RegisterPublicRoutes mounts the routes reachable without a session.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/me", h.HandleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		requestctx.Logger(r.Context()).Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), result.Session.OrganizationID, result.Session.UserID, "auth.login", audit.EntitySession, result.Session.UserID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
			requestctx.Logger(r.Context()).Warn("audit auth.login failed", "err", err)
		}
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.Logout(r.Context(), session); err != nil {
		requestctx.Logger(r.Context()).Warn("logout session revoke failed", "userId", session.UserID, "err", err)
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	payload := map[string]any{
		"session":     session,
		"isAdmin":     session.IsAdmin(),
		"permissions": auth.RolePermissions[session.Role],
	}
	if session.EmployeeID != "" && h.Profiles != nil {
		employee, err := h.Profiles.GetEmployee(r.Context(), session.OrganizationID, session.EmployeeID)
		if err != nil {
			requestctx.Logger(r.Context()).Warn("profile lookup failed", "employeeId", session.EmployeeID, "err", err)
		} else {
			payload["employee"] = employee
		}
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}
