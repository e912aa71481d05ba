package corehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
)

type Directory interface {
	GetEmployee(ctx context.Context, orgID, employeeID string) (core.Employee, error)
	ListActiveEmployees(ctx context.Context, orgID string, filter core.EmployeeFilter) ([]core.Employee, error)
	ListDepartments(ctx context.Context, orgID string) ([]core.Department, error)
}

type Handler struct {
	Service Directory
	Perms   middleware.PermissionStore
}

func NewHandler(service Directory, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/directory", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDirectoryRead, h.Perms)).Get("/employees", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermDirectoryRead, h.Perms)).Get("/employees/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequirePermission(auth.PermDirectoryRead, h.Perms)).Get("/departments", h.handleListDepartments)
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter := core.EmployeeFilter{
		Query:        strings.TrimSpace(r.URL.Query().Get("q")),
		DepartmentID: strings.TrimSpace(r.URL.Query().Get("departmentId")),
	}
	employees, err := h.Service.ListActiveEmployees(r.Context(), session.OrganizationID, filter)
	if err != nil {
		requestctx.Logger(r.Context()).Error("employee list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}

	for i := range employees {
		isSelf := employees[i].ID == session.EmployeeID
		isManager := session.EmployeeID != "" && employees[i].ManagerID == session.EmployeeID
		core.FilterEmployeeFields(&employees[i], session, isSelf, isManager)
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Service.GetEmployee(r.Context(), session.OrganizationID, chi.URLParam(r, "employeeID"))
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		requestctx.Logger(r.Context()).Error("employee lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}

	isSelf := emp.ID == session.EmployeeID
	isManager := session.EmployeeID != "" && emp.ManagerID == session.EmployeeID
	core.FilterEmployeeFields(&emp, session, isSelf, isManager)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	departments, err := h.Service.ListDepartments(r.Context(), session.OrganizationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}
